package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/my2lite/my2lite/internal/schema"
)

// Parse reads one MySQL CREATE TABLE statement into a TableDefinition.
// Clauses that have no SQLite counterpart are dropped and reported as warnings.
func Parse(createSQL string) (*schema.TableDefinition, []string, error) {
	toks, lexErr := lex(createSQL)

	open := -1
	for i, t := range toks {
		if t.is('(') {
			open = i
			break
		}
	}
	if open < 0 {
		if lexErr != nil {
			return nil, nil, &ParseError{Reason: lexErr.Error()}
		}
		return nil, nil, &ParseError{Reason: "no column list found"}
	}

	name, err := tableName(toks[:open])
	if err != nil {
		return nil, nil, err
	}

	end := closing(toks, open)
	if end < 0 {
		if lexErr != nil {
			return nil, nil, &ParseError{Table: name, Reason: lexErr.Error()}
		}
		return nil, nil, &ParseError{Table: name, Reason: "unbalanced parentheses in column list"}
	}

	p := &parser{src: createSQL, def: &schema.TableDefinition{Name: name}}
	if lexErr != nil {
		p.warnf("table options not read: %v", lexErr)
	}
	if end > open+1 {
		for _, clause := range splitTopLevel(toks[open+1 : end]) {
			p.clause(clause)
		}
	}

	if len(p.def.Columns) == 0 {
		return nil, p.warnings, &ParseError{Table: name, Reason: "no column definitions"}
	}

	p.resolvePrimaryKey()
	return p.def, p.warnings, nil
}

// tableName extracts the table name from the tokens preceding the column list.
func tableName(toks []token) (string, error) {
	i := 0
	expect := func(word string) bool {
		if i < len(toks) && toks[i].upper() == word {
			i++
			return true
		}
		return false
	}

	if !expect("CREATE") {
		return "", &ParseError{Reason: "statement does not start with CREATE"}
	}
	expect("TEMPORARY")
	if !expect("TABLE") {
		return "", &ParseError{Reason: "not a CREATE TABLE statement"}
	}
	if expect("IF") {
		expect("NOT")
		expect("EXISTS")
	}

	// A schema-qualified name keeps only its last part.
	var name string
	for _, t := range toks[i:] {
		if !t.is('.') {
			name = t.text
		}
	}
	if name == "" {
		return "", &ParseError{Reason: "missing table name"}
	}
	return name, nil
}

// isPunct reports whether t is a single-character token such as '(' or ','.
func isPunct(t token) bool {
	return t.typ > 0 && t.typ < 256
}

type parser struct {
	src       string
	def       *schema.TableDefinition
	warnings  []string
	tableKey  []string
	inlineKey []string
}

func (p *parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *parser) clause(toks []token) {
	if len(toks) == 0 {
		p.warnf("empty clause skipped")
		return
	}
	text := span(p.src, toks)

	switch toks[0].upper() {
	case "PRIMARY":
		p.primaryKey(toks[1:])
		return
	case "CONSTRAINT":
		rest := toks[1:]
		// The constraint name is optional.
		if len(rest) > 0 && !isConstraintKind(rest[0].upper()) {
			rest = rest[1:]
		}
		if len(rest) > 0 && rest[0].upper() == "PRIMARY" {
			p.primaryKey(rest[1:])
			return
		}
		p.warnf("constraint %q skipped", text)
		return
	case "KEY", "INDEX", "UNIQUE", "FULLTEXT", "SPATIAL", "FOREIGN", "CHECK":
		p.warnf("%s clause skipped: %s", strings.ToLower(toks[0].text), text)
		return
	}

	if len(toks) < 2 || isPunct(toks[0]) || isPunct(toks[1]) {
		p.warnf("malformed column definition %q skipped", text)
		return
	}
	p.column(toks)
}

func isConstraintKind(word string) bool {
	switch word {
	case "PRIMARY", "UNIQUE", "FOREIGN", "CHECK":
		return true
	}
	return false
}

// primaryKey handles the tokens following PRIMARY in a table-level key clause.
func (p *parser) primaryKey(toks []token) {
	for i, t := range toks {
		if !t.is('(') {
			continue
		}
		cols := columnList(toks, i)
		if len(cols) == 0 {
			p.warnf("primary key with no columns skipped")
			return
		}
		if len(p.tableKey) > 0 {
			p.warnf("duplicate primary key (%s) ignored", strings.Join(cols, ", "))
			return
		}
		p.tableKey = cols
		return
	}
	p.warnf("primary key clause without column list skipped")
}

func (p *parser) column(toks []token) {
	length, i := typeSuffix(p.src, toks, 2)
	col := schema.Column{
		Name:       toks[0].text,
		SourceType: strings.ToLower(toks[1].text),
		Length:     length,
	}

	peek := func(word string) bool {
		return i < len(toks) && toks[i].upper() == word
	}

	for i < len(toks) {
		t := toks[i]
		i++

		switch t.upper() {
		case "UNSIGNED", "SIGNED", "ZEROFILL", "NULL", "BINARY", "ASCII", "UNICODE", "PRECISION",
			"VISIBLE", "INVISIBLE", "VIRTUAL", "STORED", "ALWAYS":
		case "NOT":
			if peek("NULL") {
				i++
				col.NotNull = true
			}
		case "AUTO_INCREMENT":
			col.AutoIncrement = true
		case "PRIMARY":
			if peek("KEY") {
				i++
			}
			p.inlineKey = append(p.inlineKey, col.Name)
		case "KEY":
			p.inlineKey = append(p.inlineKey, col.Name)
		case "UNIQUE":
			if peek("KEY") {
				i++
			}
			p.warnf("unique constraint on column %s dropped", col.Name)
		case "DEFAULT":
			end := valueEnd(toks, i)
			if end > i {
				d := defaultExpr(span(p.src, toks[i:end]))
				col.Default = &d
			}
			i = end
		case "COMMENT", "COLLATE", "CHARSET", "COLUMN_FORMAT", "STORAGE", "SRID":
			i = valueEnd(toks, i)
		case "CHARACTER":
			if peek("SET") {
				i++
			}
			i = valueEnd(toks, i)
		case "ON":
			if peek("UPDATE") {
				i = valueEnd(toks, i+1)
				p.warnf("ON UPDATE clause on column %s dropped", col.Name)
			}
		case "GENERATED":
			col.Generated = true
		case "AS":
			col.Generated = true
			i = valueEnd(toks, i)
		case "CHECK":
			i = valueEnd(toks, i)
			p.warnf("check constraint on column %s dropped", col.Name)
		case "REFERENCES":
			p.warnf("inline reference on column %s dropped", col.Name)
			i = len(toks)
		default:
			p.warnf("unrecognized %q on column %s ignored", t.text, col.Name)
		}
	}

	if col.Generated {
		p.warnf("generated expression on column %s dropped, values are copied as stored data", col.Name)
	}
	p.def.Columns = append(p.def.Columns, col)
}

// defaultExpr normalizes a MySQL default value into its SQLite spelling.
// Anything not recognized is copied verbatim.
func defaultExpr(v string) string {
	upper := strings.ToUpper(v)
	switch {
	case strings.HasPrefix(upper, "CURRENT_TIMESTAMP"), upper == "NOW()":
		return "CURRENT_TIMESTAMP"
	case strings.HasPrefix(upper, "B'") && strings.HasSuffix(v, "'"):
		if n, err := strconv.ParseUint(v[2:len(v)-1], 2, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
	case strings.HasPrefix(v, "_"):
		// Charset introducer, e.g. _utf8mb4'abc'.
		if q := strings.IndexByte(v, '\''); q > 0 {
			return v[q:]
		}
	}
	return v
}

// resolvePrimaryKey settles the key columns and checks that they exist.
func (p *parser) resolvePrimaryKey() {
	key := p.tableKey
	if len(key) == 0 {
		key = p.inlineKey
	} else if len(p.inlineKey) > 0 {
		p.warnf("inline primary key on %s ignored in favour of table-level key", strings.Join(p.inlineKey, ", "))
	}

	for _, name := range key {
		if p.def.Column(name) == nil {
			p.warnf("primary key column %s not found, key dropped", name)
			return
		}
	}
	p.def.PrimaryKey = key
}
