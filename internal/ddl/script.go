package ddl

import (
	"fmt"
	"strings"

	"github.com/xwb1989/sqlparser"
)

// CreateStatements extracts the CREATE TABLE statements from a SQL script
// such as a mysqldump file. Comments around a statement and every other
// statement are dropped.
func CreateStatements(script string) ([]string, error) {
	pieces, err := sqlparser.SplitStatementToPieces(script)
	if err != nil {
		return nil, fmt.Errorf("splitting script: %w", err)
	}

	var stmts []string
	for _, piece := range pieces {
		toks, _ := lex(piece)
		if !isCreateTable(toks) {
			continue
		}
		stmts = append(stmts, strings.TrimSpace(piece[toks[0].start:]))
	}
	return stmts, nil
}

func isCreateTable(toks []token) bool {
	if len(toks) < 3 || toks[0].upper() != "CREATE" {
		return false
	}
	kw := toks[1].upper()
	if kw == "TEMPORARY" {
		kw = toks[2].upper()
	}
	return kw == "TABLE"
}
