package ddl

import (
	"fmt"
	"strings"

	"github.com/my2lite/my2lite/internal/schema"
	"github.com/my2lite/my2lite/internal/typemap"
)

// Render builds the SQLite CREATE TABLE statement for def. Each column's
// TargetType is set from tm as a side effect.
func Render(def *schema.TableDefinition, tm *typemap.TypeMap) (string, []string) {
	var warnings []string
	pk, single := def.SinglePrimaryKey()

	lines := make([]string, 0, len(def.Columns)+1)
	for i := range def.Columns {
		col := &def.Columns[i]
		target := tm.Resolve(col.SourceType)
		col.TargetType = string(target)

		if !tm.Known(col.SourceType) {
			warnings = append(warnings, fmt.Sprintf("unknown type %s on column %s mapped to %s", col.SourceType, col.Name, target))
		}

		var b strings.Builder
		b.WriteString(QuoteIdent(col.Name))
		b.WriteByte(' ')
		b.WriteString(string(target))

		switch {
		case single && col.Name == pk && target == typemap.SQLiteInteger:
			b.WriteString(" PRIMARY KEY AUTOINCREMENT")
		case single && col.Name == pk:
			b.WriteString(" PRIMARY KEY")
			if col.AutoIncrement {
				warnings = append(warnings, fmt.Sprintf("AUTOINCREMENT dropped on %s column %s", target, col.Name))
			}
		case col.AutoIncrement:
			warnings = append(warnings, fmt.Sprintf("AUTO_INCREMENT on non-key column %s dropped", col.Name))
		}

		if col.NotNull {
			b.WriteString(" NOT NULL")
		}
		if col.Default != nil {
			b.WriteString(" DEFAULT ")
			b.WriteString(*col.Default)
		}
		lines = append(lines, b.String())
	}

	if def.CompositeKey() {
		quoted := make([]string, len(def.PrimaryKey))
		for i, c := range def.PrimaryKey {
			quoted[i] = QuoteIdent(c)
		}
		lines = append(lines, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
		warnings = append(warnings, fmt.Sprintf("composite primary key (%s) emitted as a table constraint without AUTOINCREMENT",
			strings.Join(def.PrimaryKey, ", ")))
	}

	sql := "CREATE TABLE " + QuoteIdent(def.Name) + " (\n  " + strings.Join(lines, ",\n  ") + "\n);"
	return sql, warnings
}

// QuoteIdent returns name as-is when it is a plain identifier and double-quotes it otherwise.
func QuoteIdent(name string) string {
	if isPlainIdent(name) && !sqliteKeywords[strings.ToUpper(name)] {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isPlainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

var sqliteKeywords = map[string]bool{}

func init() {
	for _, kw := range strings.Fields(`ABORT ACTION ADD AFTER ALL ALTER ALWAYS ANALYZE AND AS ASC ATTACH
		AUTOINCREMENT BEFORE BEGIN BETWEEN BY CASCADE CASE CAST CHECK COLLATE COLUMN COMMIT CONFLICT
		CONSTRAINT CREATE CROSS CURRENT CURRENT_DATE CURRENT_TIME CURRENT_TIMESTAMP DATABASE DEFAULT
		DEFERRABLE DEFERRED DELETE DESC DETACH DISTINCT DO DROP EACH ELSE END ESCAPE EXCEPT EXCLUDE
		EXCLUSIVE EXISTS EXPLAIN FAIL FILTER FIRST FOLLOWING FOR FOREIGN FROM FULL GENERATED GLOB GROUP
		GROUPS HAVING IF IGNORE IMMEDIATE IN INDEX INDEXED INITIALLY INNER INSERT INSTEAD INTERSECT INTO
		IS ISNULL JOIN KEY LAST LEFT LIKE LIMIT MATCH MATERIALIZED NATURAL NO NOT NOTHING NOTNULL NULL
		NULLS OF OFFSET ON OR ORDER OTHERS OUTER OVER PARTITION PLAN PRAGMA PRECEDING PRIMARY QUERY
		RAISE RANGE RECURSIVE REFERENCES REGEXP REINDEX RELEASE RENAME REPLACE RESTRICT RETURNING
		RIGHT ROLLBACK ROW ROWS SAVEPOINT SELECT SET TABLE TEMP TEMPORARY THEN TIES TO TRANSACTION
		TRIGGER UNBOUNDED UNION UNIQUE UPDATE USING VACUUM VALUES VIEW VIRTUAL WHEN WHERE WINDOW WITH
		WITHOUT`) {
		sqliteKeywords[kw] = true
	}
}
