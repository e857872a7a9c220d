package migration

import (
	"time"

	"github.com/my2lite/my2lite/internal/source"
)

// monitor owns the Status of a run and fires the callback on every change.
type monitor struct {
	status   *Status
	callback StatusCallback
	started  time.Time
	index    map[string]int
}

func newMonitor(callback StatusCallback) *monitor {
	return &monitor{
		status:   &Status{},
		callback: callback,
		started:  time.Now(),
		index:    make(map[string]int),
	}
}

func (m *monitor) phase(p string) {
	m.status.Phase = p
	m.notify()
}

func (m *monitor) start(tables []source.TableInfo) {
	m.status.Phase = "running"
	m.status.Tables = make([]TableStatus, len(tables))
	m.status.Overall.TablesTotal = len(tables)
	for i, t := range tables {
		m.status.Tables[i] = TableStatus{Name: t.Name, State: "pending", RowsTotal: t.RowCount}
		m.status.Overall.RowsTotal += t.RowCount
		m.index[t.Name] = i
	}
	m.notify()
}

func (m *monitor) table(name string) *TableStatus {
	i, ok := m.index[name]
	if !ok {
		return nil
	}
	return &m.status.Tables[i]
}

func (m *monitor) tableState(name, state string) {
	if ts := m.table(name); ts != nil {
		ts.State = state
	}
	m.notify()
}

func (m *monitor) progress(name string, rows int64) {
	ts := m.table(name)
	if ts == nil {
		return
	}
	m.status.Overall.RowsWritten += rows - ts.RowsWritten
	ts.RowsWritten = rows
	ts.PercentComplete = percent(rows, ts.RowsTotal)
	m.notify()
}

func (m *monitor) tableDone(name string, rows int64) {
	if ts := m.table(name); ts != nil {
		m.status.Overall.RowsWritten += rows - ts.RowsWritten
		ts.RowsWritten = rows
		ts.State = "completed"
		ts.PercentComplete = 100
	}
	m.status.Overall.TablesDone++
	m.notify()
}

func (m *monitor) tableFailed(name string, err error) {
	if ts := m.table(name); ts != nil {
		ts.State = "failed"
		ts.Error = err.Error()
	}
	m.status.Overall.TablesDone++
	m.status.Errors = append(m.status.Errors, name+": "+err.Error())
	m.notify()
}

func (m *monitor) fail(err error) {
	m.status.Phase = "failed"
	m.status.Errors = append(m.status.Errors, err.Error())
	m.notify()
}

func (m *monitor) finish() {
	failed, completed := 0, 0
	for _, t := range m.status.Tables {
		switch t.State {
		case "failed":
			failed++
		case "completed":
			completed++
		}
	}
	switch {
	case failed == 0:
		m.status.Phase = "completed"
		m.status.Overall.PercentComplete = 100
	case completed > 0:
		m.status.Phase = "partial_failure"
	default:
		m.status.Phase = "failed"
	}
	m.notify()
}

func (m *monitor) notify() {
	m.status.ElapsedTime = time.Since(m.started)
	o := &m.status.Overall
	if o.TablesTotal > 0 {
		o.PercentComplete = 100 * float64(o.TablesDone) / float64(o.TablesTotal)
		if o.RowsTotal > 0 && o.TablesDone < o.TablesTotal {
			// Rows give a finer view while tables are still running.
			o.PercentComplete = percent(o.RowsWritten, o.RowsTotal)
		}
	}
	if secs := m.status.ElapsedTime.Seconds(); secs > 0 {
		o.RowsPerSecond = float64(o.RowsWritten) / secs
	}
	if m.callback != nil {
		m.callback(m.status)
	}
}

// percent stays below 100; tableDone marks completion.
func percent(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	p := 100 * float64(done) / float64(total)
	if p > 99 {
		p = 99
	}
	return p
}
