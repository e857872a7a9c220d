package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/my2lite/my2lite/internal/typemap"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTypeMapModel_Construction(t *testing.T) {
	tm := typemap.New()
	m := NewTypeMapModel(tm, []string{"JSON", "int", ""})

	if len(m.types) != len(tm.SortedTypes())+1 {
		t.Errorf("expected defaults plus json, got %d: %v", len(m.types), m.types)
	}
	for i := 1; i < len(m.types); i++ {
		if m.types[i] < m.types[i-1] {
			t.Errorf("types not sorted: %s before %s", m.types[i-1], m.types[i])
		}
	}
	if !strings.Contains(m.View(), "unmapped") {
		t.Error("json should be shown as unmapped")
	}
}

func TestTypeMapModel_Navigation(t *testing.T) {
	m := NewTypeMapModel(typemap.New(), nil)

	result, _ := m.Update(key("down"))
	m = result.(TypeMapModel)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	result, _ = m.Update(key("up"))
	result, _ = result.(TypeMapModel).Update(key("up"))
	m = result.(TypeMapModel)
	if m.cursor != 0 {
		t.Errorf("cursor = %d, should stop at 0", m.cursor)
	}
}

func TestTypeMapModel_EditAndRestore(t *testing.T) {
	tm := typemap.New()
	m := NewTypeMapModel(tm, nil)
	// types[0] is "bigint"
	if m.types[0] != "bigint" {
		t.Fatalf("types[0] = %q", m.types[0])
	}

	result, _ := m.Update(key("e"))
	m = result.(TypeMapModel)
	if tm.Resolve("bigint") != typemap.SQLiteReal {
		t.Errorf("bigint = %s after edit, want REAL", tm.Resolve("bigint"))
	}
	if !strings.Contains(m.View(), "override") {
		t.Error("view should mark the override")
	}

	result, _ = m.Update(key("d"))
	m = result.(TypeMapModel)
	if tm.IsOverridden("bigint") {
		t.Error("d should restore the default")
	}
}

func TestTypeMapModel_SaveAndCancel(t *testing.T) {
	m := NewTypeMapModel(typemap.New(), nil)
	result, cmd := m.Update(key("enter"))
	saved := result.(TypeMapModel)
	if !saved.Done() || saved.Cancelled() || saved.Result() == nil {
		t.Error("enter should finish with a result")
	}
	if cmd == nil {
		t.Error("enter should quit")
	}

	result, _ = m.Update(key("q"))
	cancelled := result.(TypeMapModel)
	if !cancelled.Cancelled() || cancelled.Result() != nil {
		t.Error("q should cancel without a result")
	}
}

func TestNextSQLiteType(t *testing.T) {
	if got := nextSQLiteType(typemap.SQLiteInteger); got != typemap.SQLiteReal {
		t.Errorf("after INTEGER got %s", got)
	}
	if got := nextSQLiteType(typemap.SQLiteText); got != typemap.SQLiteInteger {
		t.Errorf("after TEXT got %s", got)
	}
}
