package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/my2lite/my2lite/internal/migration"
)

// StatusMsg carries a snapshot of the run status.
type StatusMsg struct {
	Status *migration.Status
}

// DoneMsg is sent once the run returns.
type DoneMsg struct {
	Result *migration.Result
	Err    error
}

// Model is the bubbletea model for the migration progress view.
type Model struct {
	title     string
	status    *migration.Status
	result    *migration.Result
	err       error
	bar       progress.Model
	spinner   spinner.Model
	cancel    func()
	done      bool
	cancelled bool
	width     int
}

// NewModel creates a progress model. cancel is invoked when the user quits.
func NewModel(title string, cancel func()) Model {
	return Model{
		title:   title,
		status:  &migration.Status{Phase: "pending"},
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(highlightStyle)),
		cancel:  cancel,
		width:   100,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(msg.Width-20, 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.done {
				return m, tea.Quit
			}
			if !m.cancelled {
				m.cancelled = true
				if m.cancel != nil {
					m.cancel()
				}
			}
			// Keep running until DoneMsg so the partial result is shown.
			return m, nil
		}

	case StatusMsg:
		if msg.Status != nil {
			m.status = msg.Status
		}
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	phaseStyle := dimStyle
	switch m.status.Phase {
	case "running", "discovering":
		phaseStyle = highlightStyle
	case "completed":
		phaseStyle = successStyle
	case "failed", "partial_failure":
		phaseStyle = errStyle
	}
	phase := phaseStyle.Render(m.status.Phase)
	if !m.done {
		phase = m.spinner.View() + " " + phase
	}
	b.WriteString(fmt.Sprintf("  Phase: %s\n", phase))

	o := m.status.Overall
	if o.TablesTotal > 0 {
		b.WriteString(fmt.Sprintf("  %s %.1f%%\n", m.bar.ViewAs(o.PercentComplete/100), o.PercentComplete))
		b.WriteString(fmt.Sprintf("  %d / %d tables, %d rows", o.TablesDone, o.TablesTotal, o.RowsWritten))
		if o.RowsPerSecond > 0 {
			b.WriteString(fmt.Sprintf("  (%.0f rows/s)", o.RowsPerSecond))
		}
		b.WriteString("\n")
	}

	if m.status.ElapsedTime > 0 {
		b.WriteString(fmt.Sprintf("  Elapsed: %s\n", FormatDuration(m.status.ElapsedTime)))
	}

	if len(m.status.Tables) > 0 {
		b.WriteString("\n")
		b.WriteString(highlightStyle.Render("  Tables:"))
		b.WriteString("\n")
		for _, t := range visibleTables(m.status.Tables, 15) {
			b.WriteString(tableLine(t) + "\n")
		}
	}

	if len(m.status.Errors) > 0 {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("  Errors:"))
		b.WriteString("\n")
		for _, e := range m.status.Errors {
			b.WriteString(fmt.Sprintf("  - %s\n", e))
		}
	}

	b.WriteString("\n")
	switch {
	case m.done && m.err != nil:
		b.WriteString(errStyle.Render("  Migration stopped: " + m.err.Error()))
	case m.done && m.result != nil && m.result.OK():
		b.WriteString(successStyle.Render("  Migration completed successfully!"))
	case m.done:
		b.WriteString(errStyle.Render("  Migration finished with failed tables"))
	case m.cancelled:
		b.WriteString(dimStyle.Render("  Cancelling after the current page..."))
	default:
		b.WriteString(dimStyle.Render("  q: cancel migration"))
	}
	b.WriteString("\n")

	return b.String()
}

// Done returns true once the run has returned.
func (m Model) Done() bool {
	return m.done
}

// Cancelled returns true if the user cancelled.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Result returns the final run result and error.
func (m Model) Result() (*migration.Result, error) {
	return m.result, m.err
}

func tableLine(t migration.TableStatus) string {
	icon := dimStyle.Render("..")
	switch t.State {
	case "completed":
		icon = successStyle.Render("OK")
	case "translating", "copying", "validating":
		icon = highlightStyle.Render(">>")
	case "failed":
		icon = errStyle.Render("XX")
	}

	line := fmt.Sprintf("  %s %-30s", icon, t.Name)
	switch t.State {
	case "copying":
		line += fmt.Sprintf(" %10d rows %5.1f%%", t.RowsWritten, t.PercentComplete)
	case "translating", "validating":
		line += " " + dimStyle.Render(t.State)
	case "completed":
		line += fmt.Sprintf(" %10d rows", t.RowsWritten)
	case "failed":
		line += " " + errStyle.Render(t.Error)
	}
	return line
}

// visibleTables returns at most limit tables around the one being processed.
func visibleTables(tables []migration.TableStatus, limit int) []migration.TableStatus {
	if len(tables) <= limit {
		return tables
	}
	active := -1
	for i, t := range tables {
		if t.State != "pending" && t.State != "completed" && t.State != "failed" {
			active = i
			break
		}
	}
	if active < 0 {
		active = len(tables) - 1
	}
	start := max(active-limit/2, 0)
	end := min(start+limit, len(tables))
	start = max(end-limit, 0)
	return tables[start:end]
}
