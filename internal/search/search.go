// Package search queries the talk_art and nothings tables of a migrated
// database, either the SQLite file or the original MySQL schema.
package search

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// Backend names the database engine a Searcher talks to.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendMySQL  Backend = "mysql"
)

// DefaultRandomLimit is the number of sentences returned by Random.
const DefaultRandomLimit = 20

// UnsupportedDriverError is returned for a backend other than sqlite or mysql.
type UnsupportedDriverError struct {
	Backend string
}

func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf("unsupported search backend %q (expected sqlite or mysql)", e.Backend)
}

// ParseBackend validates a backend name.
func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendSQLite, "":
		return BackendSQLite, nil
	case BackendMySQL:
		return BackendMySQL, nil
	default:
		return "", &UnsupportedDriverError{Backend: name}
	}
}

// Searcher runs the search queries against one database handle.
type Searcher struct {
	db      *sql.DB
	backend Backend
	owned   bool
}

// New wraps an open handle. The caller keeps ownership of db.
func New(db *sql.DB, backend Backend) (*Searcher, error) {
	if _, err := ParseBackend(string(backend)); err != nil {
		return nil, err
	}
	if backend == "" {
		backend = BackendSQLite
	}
	return &Searcher{db: db, backend: backend}, nil
}

// OpenSQLite opens an existing SQLite file read-only.
func OpenSQLite(ctx context.Context, path string) (*Searcher, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening search database: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening search database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening search database %s: %w", path, err)
	}
	return &Searcher{db: db, backend: BackendSQLite, owned: true}, nil
}

// Backend reports which engine the searcher queries.
func (s *Searcher) Backend() Backend {
	return s.backend
}

// Close releases the handle when the searcher opened it itself.
func (s *Searcher) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

func (s *Searcher) randomFunc() string {
	if s.backend == BackendMySQL {
		return "RAND()"
	}
	return "RANDOM()"
}
