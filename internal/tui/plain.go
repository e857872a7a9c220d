package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/my2lite/my2lite/internal/migration"
)

// Plain prints one line per table state change. It is used when stdout is
// not a terminal or the progress view is disabled.
type Plain struct {
	mu    sync.Mutex
	w     io.Writer
	phase string
	seen  map[string]string
}

// NewPlain creates a line-oriented progress reporter.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w, seen: make(map[string]string)}
}

// Update is a migration.StatusCallback.
func (p *Plain) Update(s *migration.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s.Phase != p.phase {
		p.phase = s.Phase
		switch s.Phase {
		case "discovering":
			fmt.Fprintln(p.w, "Discovering tables...")
		case "running":
			fmt.Fprintf(p.w, "Migrating %d tables (~%d rows)\n", s.Overall.TablesTotal, s.Overall.RowsTotal)
		}
	}

	for i, t := range s.Tables {
		if p.seen[t.Name] == t.State {
			continue
		}
		p.seen[t.Name] = t.State

		prefix := fmt.Sprintf("[%d/%d] %s", i+1, len(s.Tables), t.Name)
		switch t.State {
		case "translating", "copying", "validating":
			fmt.Fprintf(p.w, "%s: %s\n", prefix, t.State)
		case "completed":
			fmt.Fprintf(p.w, "%s: %s (%d rows)\n", prefix, successStyle.Render("done"), t.RowsWritten)
		case "failed":
			fmt.Fprintf(p.w, "%s: %s %s\n", prefix, errStyle.Render("FAILED"), t.Error)
		}
	}
}
