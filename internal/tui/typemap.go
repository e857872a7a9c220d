package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/my2lite/my2lite/internal/typemap"
)

// TypeMapModel lets the user review and override the MySQL to SQLite type mapping.
type TypeMapModel struct {
	typeMap   *typemap.TypeMap
	types     []string
	cursor    int
	done      bool
	cancelled bool
	height    int
}

// NewTypeMapModel lists every mapped type plus extra, the types found in a
// discovered schema, so unmapped ones can be given an explicit mapping.
func NewTypeMapModel(tm *typemap.TypeMap, extra []string) TypeMapModel {
	seen := make(map[string]bool)
	var types []string
	for _, t := range append(tm.SortedTypes(), extra...) {
		t = strings.ToLower(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	sort.Strings(types)

	return TypeMapModel{typeMap: tm, types: types, height: 24}
}

func (m TypeMapModel) Init() tea.Cmd {
	return nil
}

func (m TypeMapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			m.cancelled = true
			return m, tea.Quit

		case "j", "down":
			if m.cursor < len(m.types)-1 {
				m.cursor++
			}

		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}

		case "e", " ":
			if m.cursor < len(m.types) {
				src := m.types[m.cursor]
				m.typeMap.Override(src, nextSQLiteType(m.typeMap.Resolve(src)))
			}

		case "d":
			if m.cursor < len(m.types) {
				m.typeMap.RestoreDefault(m.types[m.cursor])
			}

		case "enter", "s":
			m.done = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m TypeMapModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Type Mapping"))
	b.WriteString("\n\n")

	if len(m.types) == 0 {
		b.WriteString("  No types to map.\n\n")
		b.WriteString(dimStyle.Render("  enter save • q cancel"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-20s %-10s %s\n", "MySQL Type", "SQLite", "Status"))
	b.WriteString("  " + strings.Repeat("─", 44) + "\n")

	visible := max(m.height-10, 5)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.types))

	for i := start; i < end; i++ {
		src := m.types[i]

		cursor := "  "
		if i == m.cursor {
			cursor = highlightStyle.Render("> ")
		}

		status := dimStyle.Render("default")
		switch {
		case m.typeMap.IsOverridden(src):
			status = successStyle.Render("override")
		case !m.typeMap.Known(src):
			status = errStyle.Render("unmapped")
		}

		b.WriteString(fmt.Sprintf("%s%-20s %-10s %s\n", cursor, src, m.typeMap.Resolve(src), status))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  e change • d restore default • enter save • q cancel"))
	b.WriteString("\n")
	return b.String()
}

// Result returns the edited mapping, or nil if the user cancelled.
func (m TypeMapModel) Result() *typemap.TypeMap {
	if m.cancelled {
		return nil
	}
	return m.typeMap
}

// Done returns true if the model has finished.
func (m TypeMapModel) Done() bool {
	return m.done
}

// Cancelled returns true if the user cancelled.
func (m TypeMapModel) Cancelled() bool {
	return m.done && m.cancelled
}

// EditTypeMap runs the editor and returns the edited mapping, or nil on cancel.
func EditTypeMap(tm *typemap.TypeMap, extra []string) (*typemap.TypeMap, error) {
	final, err := tea.NewProgram(NewTypeMapModel(tm, extra), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, fmt.Errorf("running type mapping editor: %w", err)
	}
	return final.(TypeMapModel).Result(), nil
}

func nextSQLiteType(current typemap.SQLiteType) typemap.SQLiteType {
	types := typemap.AllSQLiteTypes
	for i, t := range types {
		if t == current {
			return types[(i+1)%len(types)]
		}
	}
	return types[0]
}
