package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/my2lite/my2lite/internal/migration"
)

// RunFunc executes a migration and reports status through cb.
type RunFunc func(cb migration.StatusCallback) (*migration.Result, error)

// Run shows the progress view while run executes on its own goroutine.
// cancel is called when the user quits; the view then waits for run to
// return so the partial result is not lost. The returned flag reports
// whether the user cancelled.
func Run(title string, cancel func(), run RunFunc, opts ...tea.ProgramOption) (*migration.Result, bool, error) {
	p := tea.NewProgram(NewModel(title, cancel), opts...)

	finished := make(chan DoneMsg, 1)
	go func() {
		res, err := run(func(s *migration.Status) {
			p.Send(StatusMsg{Status: s.Clone()})
		})
		msg := DoneMsg{Result: res, Err: err}
		finished <- msg
		p.Send(msg)
	}()

	final, viewErr := p.Run()
	if viewErr != nil && cancel != nil {
		cancel()
	}

	msg := <-finished
	if m, ok := final.(Model); ok && m.Done() {
		res, err := m.Result()
		return res, m.Cancelled(), err
	}
	if viewErr != nil && msg.Err == nil {
		return msg.Result, false, fmt.Errorf("running progress view: %w", viewErr)
	}
	return msg.Result, false, msg.Err
}
