package search

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Talk is one row of talk_art.
type Talk struct {
	Category string
	Title    string
	Content  string
}

// Mode selects which talk_art columns the key is matched against.
type Mode string

const (
	// ModeFuzzy matches the key against category, title and content.
	ModeFuzzy Mode = "fuzzy"
	// ModeAccurate matches the key against the title only.
	ModeAccurate Mode = "accurate"
)

// TalkQuery filters talk_art.
type TalkQuery struct {
	Key  string
	Menu int // 1-based index into Menu(); 0 means every category
	Mode Mode
}

// Slice selects a window [Start, End) of a result list. End < 0 means to the end.
type Slice struct {
	Start int
	End   int
}

// All selects every row.
var All = Slice{Start: 0, End: -1}

// ParseSlice parses "start,end". Either side may be empty; "0," selects everything.
func ParseSlice(s string) (Slice, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}

	startStr, endStr, ok := strings.Cut(s, ",")
	if !ok {
		return Slice{}, fmt.Errorf("invalid range %q: expected start,end", s)
	}

	sl := All
	if v := strings.TrimSpace(startStr); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Slice{}, fmt.Errorf("invalid range start %q", v)
		}
		sl.Start = n
	}
	if v := strings.TrimSpace(endStr); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Slice{}, fmt.Errorf("invalid range end %q", v)
		}
		sl.End = n
	}
	return sl, nil
}

// Bounds clamps the slice to a list of n items.
func (sl Slice) Bounds(n int) (int, int) {
	end := sl.End
	if end < 0 || end > n {
		end = n
	}
	start := min(sl.Start, end)
	return start, end
}

// Menu lists the distinct talk_art categories in sorted order.
func (s *Searcher) Menu(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT pasterCatName FROM talk_art GROUP BY pasterCatName ORDER BY pasterCatName")
	if err != nil {
		return nil, fmt.Errorf("querying menu: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning menu: %w", err)
		}
		names = append(names, name.String)
	}
	return names, rows.Err()
}

// Talks returns the talk_art rows matching q.
func (s *Searcher) Talks(ctx context.Context, q TalkQuery) ([]Talk, error) {
	var where []string
	var args []any

	if q.Menu > 0 {
		menu, err := s.Menu(ctx)
		if err != nil {
			return nil, err
		}
		if q.Menu > len(menu) {
			return nil, fmt.Errorf("menu index %d out of range (1-%d)", q.Menu, len(menu))
		}
		where = append(where, "pasterCatName = ?")
		args = append(args, menu[q.Menu-1])
	}

	if q.Key != "" {
		pattern := "%" + q.Key + "%"
		if q.Mode == ModeAccurate {
			where = append(where, "title LIKE ?")
			args = append(args, pattern)
		} else {
			where = append(where, "(pasterCatName LIKE ? OR title LIKE ? OR content LIKE ?)")
			args = append(args, pattern, pattern, pattern)
		}
	}

	query := "SELECT pasterCatName, title, content FROM talk_art"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying talks: %w", err)
	}
	defer rows.Close()

	var talks []Talk
	for rows.Next() {
		var cat, title, content sql.NullString
		if err := rows.Scan(&cat, &title, &content); err != nil {
			return nil, fmt.Errorf("scanning talk: %w", err)
		}
		talks = append(talks, Talk{Category: cat.String, Title: title.String, Content: content.String})
	}
	return talks, rows.Err()
}

// Nothings returns sentences containing key.
func (s *Searcher) Nothings(ctx context.Context, key string) ([]string, error) {
	return s.sentences(ctx, "SELECT sentence FROM nothings WHERE sentence LIKE ?", "%"+key+"%")
}

// Random returns up to limit sentences in random order.
func (s *Searcher) Random(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultRandomLimit
	}
	return s.sentences(ctx, "SELECT sentence FROM nothings ORDER BY "+s.randomFunc()+" LIMIT ?", limit)
}

func (s *Searcher) sentences(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying nothings: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sentence sql.NullString
		if err := rows.Scan(&sentence); err != nil {
			return nil, fmt.Errorf("scanning sentence: %w", err)
		}
		out = append(out, sentence.String)
	}
	return out, rows.Err()
}
