package search

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sweet.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE talk_art (id INTEGER PRIMARY KEY AUTOINCREMENT, pasterCatName TEXT, title TEXT, content TEXT)`,
		`CREATE TABLE nothings (id INTEGER PRIMARY KEY AUTOINCREMENT, sentence TEXT)`,
		`INSERT INTO talk_art (pasterCatName, title, content) VALUES
			('greeting', 'morning hello', 'good morning'),
			('greeting', 'evening', 'good evening\nsleep well'),
			('farewell', 'bye', 'see you tomorrow morning'),
			('advice', 'tea', NULL)`,
		`INSERT INTO nothings (sentence) VALUES ('you are the moon'), ('the sun<br>rises'), ('moonlight'), ('stars')`,
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
	return path
}

func openSeeded(t *testing.T) *Searcher {
	t.Helper()
	s, err := OpenSQLite(context.Background(), seedDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, b)

	b, err = ParseBackend("mysql")
	require.NoError(t, err)
	assert.Equal(t, BackendMySQL, b)

	_, err = ParseBackend("oracle")
	var ude *UnsupportedDriverError
	require.True(t, errors.As(err, &ude))
	assert.Equal(t, "oracle", ude.Backend)
}

func TestRandomFunc(t *testing.T) {
	s, err := New(nil, BackendMySQL)
	require.NoError(t, err)
	assert.Equal(t, "RAND()", s.randomFunc())

	s, err = New(nil, BackendSQLite)
	require.NoError(t, err)
	assert.Equal(t, "RANDOM()", s.randomFunc())
}

func TestOpenSQLite_Missing(t *testing.T) {
	_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestMenu(t *testing.T) {
	s := openSeeded(t)
	menu, err := s.Menu(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"advice", "farewell", "greeting"}, menu)
}

func TestTalks(t *testing.T) {
	s := openSeeded(t)
	ctx := context.Background()

	all, err := s.Talks(ctx, TalkQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	fuzzy, err := s.Talks(ctx, TalkQuery{Key: "morning"})
	require.NoError(t, err)
	assert.Len(t, fuzzy, 2)

	accurate, err := s.Talks(ctx, TalkQuery{Key: "morning", Mode: ModeAccurate})
	require.NoError(t, err)
	require.Len(t, accurate, 1)
	assert.Equal(t, "morning hello", accurate[0].Title)

	// menu 3 is "greeting"
	greeting, err := s.Talks(ctx, TalkQuery{Menu: 3})
	require.NoError(t, err)
	assert.Len(t, greeting, 2)

	withKey, err := s.Talks(ctx, TalkQuery{Menu: 3, Key: "evening"})
	require.NoError(t, err)
	assert.Len(t, withKey, 1)

	_, err = s.Talks(ctx, TalkQuery{Menu: 9})
	assert.Error(t, err)
}

func TestTalks_NullContent(t *testing.T) {
	s := openSeeded(t)
	talks, err := s.Talks(context.Background(), TalkQuery{Key: "tea"})
	require.NoError(t, err)
	require.Len(t, talks, 1)
	assert.Empty(t, talks[0].Content)
}

func TestTalks_KeyIsBound(t *testing.T) {
	s := openSeeded(t)
	talks, err := s.Talks(context.Background(), TalkQuery{Key: "' OR '1'='1"})
	require.NoError(t, err)
	assert.Empty(t, talks)
}

func TestNothings(t *testing.T) {
	s := openSeeded(t)
	got, err := s.Nothings(context.Background(), "moon")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"you are the moon", "moonlight"}, got)

	all, err := s.Nothings(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestRandom(t *testing.T) {
	s := openSeeded(t)
	got, err := s.Random(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Random(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestCheckReadOnly(t *testing.T) {
	tests := []struct {
		query string
		ok    bool
	}{
		{"SELECT * FROM nothings", true},
		{"select sentence from nothings where id > 2 order by id limit 5", true},
		{"SELECT 1 UNION SELECT 2", true},
		{"DELETE FROM nothings", false},
		{"DROP TABLE nothings", false},
		{"INSERT INTO nothings (sentence) VALUES ('x')", false},
		{"UPDATE nothings SET sentence = 'x'", false},
		{"SELECT 1; DROP TABLE nothings", false},
		{"not sql at all", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			err := CheckReadOnly(tt.query)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCheckReadOnly_Sentinel(t *testing.T) {
	err := CheckReadOnly("DELETE FROM nothings")
	assert.True(t, errors.Is(err, ErrNotReadOnly))
}

func TestQuery(t *testing.T) {
	s := openSeeded(t)
	rs, err := s.Query(context.Background(), "SELECT id, content FROM talk_art WHERE title = 'tea'")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "content"}, rs.Columns)
	require.Len(t, rs.Rows, 1)
	assert.Equal(t, []string{"4", "NULL"}, rs.Rows[0])

	_, err = s.Query(context.Background(), "DELETE FROM talk_art")
	assert.Error(t, err)

	// read-only handle, nothing was deleted
	rs, err = s.Query(context.Background(), "SELECT count(*) FROM talk_art")
	require.NoError(t, err)
	assert.Equal(t, "4", rs.Rows[0][0])
}

func TestParseSlice(t *testing.T) {
	tests := []struct {
		in      string
		want    Slice
		wantErr bool
	}{
		{"", All, false},
		{"0,", All, false},
		{"2,5", Slice{Start: 2, End: 5}, false},
		{",3", Slice{Start: 0, End: 3}, false},
		{"5", Slice{}, true},
		{"a,b", Slice{}, true},
		{"-1,2", Slice{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSliceBounds(t *testing.T) {
	start, end := Slice{Start: 2, End: 100}.Bounds(5)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)

	start, end = Slice{Start: 10, End: -1}.Bounds(3)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)

	start, end = All.Bounds(0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, "moon")

	p.Menu([]string{"advice", "greeting"})
	p.Sentences([]string{"you are the moon", "the sun<br>rises", "moonlight"}, Slice{Start: 1, End: -1})
	p.Talks([]Talk{{Category: "greeting", Title: "evening", Content: `good\nnight`}}, All)

	out := buf.String()
	assert.Contains(t, out, "1. advice")
	assert.Contains(t, out, "2. greeting")
	assert.NotContains(t, out, "you are the")
	assert.Contains(t, out, "the sun\nrises")
	assert.Contains(t, out, "Total: 3")
	assert.Contains(t, out, "good\nnight")
	assert.Contains(t, out, "Total: 1")
}

func TestPrinter_ResultSet(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, "").ResultSet(&ResultSet{
		Columns: []string{"id", "sentence"},
		Rows:    [][]string{{"1", "stars"}},
	})
	out := buf.String()
	assert.Contains(t, out, "sentence")
	assert.Contains(t, out, "stars")
	assert.True(t, strings.Contains(out, "(1 rows)"))
}
