package copier

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/my2lite/my2lite/internal/ddl"
	"github.com/my2lite/my2lite/internal/source"
	"github.com/my2lite/my2lite/internal/target"
)

const usersDDL = "CREATE TABLE `users` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `name` varchar(50) NOT NULL,\n" +
	"  `age` int DEFAULT '0',\n" +
	"  PRIMARY KEY (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

var usersColumns = []string{"id", "name", "age"}

func translateUsers(t *testing.T) *ddl.Result {
	t.Helper()
	res, err := ddl.NewTranslator(nil).Translate(usersDDL)
	require.NoError(t, err)
	return res
}

func userRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{int64(i + 1), []byte(fmt.Sprintf("user%d", i+1)), int64(20 + i%50)}
	}
	return rows
}

func openTarget(t *testing.T) *target.SQLiteWriter {
	t.Helper()
	w, err := target.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "out.db"))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestCopy_EmptyTable(t *testing.T) {
	ctx := context.Background()
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": nil},
	}
	dst := openTarget(t)

	stats, err := New(src, dst, 1000, nil).Copy(ctx, translateUsers(t))
	require.NoError(t, err)

	assert.Equal(t, Stats{}, stats)
	n, err := dst.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, src.Cursors["users"].FetchCalls)
	assert.True(t, src.Cursors["users"].Closed)
}

func TestCopy_PageBoundaryPlusOne(t *testing.T) {
	ctx := context.Background()
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": userRows(1001)},
	}
	dst := openTarget(t)

	stats, err := New(src, dst, 1000, nil).Copy(ctx, translateUsers(t))
	require.NoError(t, err)

	assert.Equal(t, 2, src.Cursors["users"].FetchCalls)
	assert.Equal(t, Stats{Rows: 1001, Pages: 2}, stats)

	n, err := dst.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.EqualValues(t, 1001, n)
}

func TestCopy_ExactPageMultiple(t *testing.T) {
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": userRows(10)},
	}
	dst := &target.MockWriter{}

	stats, err := New(src, dst, 5, nil).Copy(context.Background(), translateUsers(t))
	require.NoError(t, err)

	// The third fetch comes back empty and ends the stream.
	assert.Equal(t, 3, src.Cursors["users"].FetchCalls)
	assert.Equal(t, Stats{Rows: 10, Pages: 2}, stats)
	assert.Len(t, dst.Inserted["users"], 10)
}

func TestCopy_BinaryValuesBecomeText(t *testing.T) {
	ctx := context.Background()
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": {{[]byte("7"), []byte("zoë"), nil}}},
	}
	dst := openTarget(t)

	_, err := New(src, dst, 0, nil).Copy(ctx, translateUsers(t))
	require.NoError(t, err)

	var name, kind string
	err = dst.DB().QueryRowContext(ctx, `SELECT name, typeof(name) FROM users`).Scan(&name, &kind)
	require.NoError(t, err)
	assert.Equal(t, "zoë", name)
	assert.Equal(t, "text", kind)
}

func TestCopy_EncodingErrorOnFirstPage(t *testing.T) {
	ctx := context.Background()
	rows := userRows(3)
	rows[1][1] = []byte{0xff, 0xfe, 'x'}

	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": rows},
	}
	dst := openTarget(t)

	stats, err := New(src, dst, 1000, nil).Copy(ctx, translateUsers(t))
	require.Error(t, err)

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "users", encErr.Table)
	assert.Equal(t, "name", encErr.Column)
	assert.EqualValues(t, 2, encErr.Row)
	assert.Zero(t, stats.Rows)

	// The table exists with its schema but no rows.
	n, err := dst.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCopy_EncodingErrorKeepsCommittedPages(t *testing.T) {
	ctx := context.Background()
	rows := userRows(5)
	rows[2][1] = []byte{0xc3, 0x28}

	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": rows},
	}
	dst := openTarget(t)

	stats, err := New(src, dst, 2, nil).Copy(ctx, translateUsers(t))

	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.EqualValues(t, 3, encErr.Row)
	assert.Equal(t, Stats{Rows: 2, Pages: 1}, stats)

	n, err := dst.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestCopy_ColumnCountMismatch(t *testing.T) {
	ctx := context.Background()
	src := &source.MockReader{
		Columns: map[string][]string{"users": {"id", "name"}},
		Rows:    map[string][][]any{"users": {{int64(1), "a"}}},
	}
	dst := openTarget(t)

	_, err := New(src, dst, 1000, nil).Copy(ctx, translateUsers(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnCountMismatch))

	n, err := dst.RowCount(ctx, "users")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCopy_ShortRowIsMismatch(t *testing.T) {
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": {{int64(1), "a"}}},
	}

	_, err := New(src, &target.MockWriter{}, 10, nil).Copy(context.Background(), translateUsers(t))
	assert.ErrorIs(t, err, ErrColumnCountMismatch)
}

func TestCopy_InsertFailureStopsTable(t *testing.T) {
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": userRows(7)},
	}
	dst := &target.MockWriter{InsertErr: errors.New("database is locked"), FailOnBatch: 2}

	stats, err := New(src, dst, 3, nil).Copy(context.Background(), translateUsers(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, Stats{Rows: 3, Pages: 1}, stats)
	assert.Len(t, dst.Inserted["users"], 3)
	assert.Equal(t, 2, src.Cursors["users"].FetchCalls)
}

func TestCopy_FetchError(t *testing.T) {
	src := &source.MockReader{
		Columns:   map[string][]string{"users": usersColumns},
		FetchErrs: map[string]error{"users": errors.New("connection reset")},
	}

	_, err := New(src, &target.MockWriter{}, 10, nil).Copy(context.Background(), translateUsers(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching from users")
}

func TestCopy_RecreateError(t *testing.T) {
	src := &source.MockReader{}
	dst := &target.MockWriter{RecreateErr: errors.New("read-only database")}

	_, err := New(src, dst, 10, nil).Copy(context.Background(), translateUsers(t))
	require.Error(t, err)
	assert.Nil(t, src.Cursors, "no cursor should be opened when the table cannot be created")
}

func TestCopy_RejectsFailedTranslation(t *testing.T) {
	res := &ddl.Result{Table: "broken", Status: ddl.StatusFailed}
	_, err := New(&source.MockReader{}, &target.MockWriter{}, 10, nil).Copy(context.Background(), res)
	assert.Error(t, err)
}

func TestCopy_ReportsProgress(t *testing.T) {
	src := &source.MockReader{
		Columns: map[string][]string{"users": usersColumns},
		Rows:    map[string][][]any{"users": userRows(25)},
	}
	c := New(src, &target.MockWriter{}, 10, nil)

	var seen []Progress
	c.OnProgress = func(p Progress) { seen = append(seen, p) }

	_, err := c.Copy(context.Background(), translateUsers(t))
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.Equal(t, Progress{Table: "users", Rows: 10, Pages: 1, Estimate: 25}, seen[0])
	assert.Equal(t, Progress{Table: "users", Rows: 25, Pages: 3, Estimate: 25}, seen[2])
}

func TestEncodingError_Message(t *testing.T) {
	err := &EncodingError{Table: "files", Column: "payload", Row: 12}
	assert.Equal(t, "table files, row 12, column payload: value is not valid UTF-8", err.Error())
}
