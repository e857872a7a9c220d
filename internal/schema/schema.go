package schema

// Schema represents the discovered base tables of a source database.
type Schema struct {
	Host     string  `yaml:"host"`
	Database string  `yaml:"database"`
	Tables   []Table `yaml:"tables"`
}

// Table is one discovered base table together with its translation.
type Table struct {
	Name       string          `yaml:"name"`
	RowCount   int64           `yaml:"row_count"` // information_schema estimate
	SizeBytes  int64           `yaml:"size_bytes"`
	Status     string          `yaml:"status,omitempty"`
	Warnings   []string        `yaml:"warnings,omitempty"`
	Definition TableDefinition `yaml:"definition"`
}

// TableDefinition is the structured form of one CREATE TABLE statement.
type TableDefinition struct {
	Name       string   `yaml:"name"`
	Columns    []Column `yaml:"columns"`
	PrimaryKey []string `yaml:"primary_key,omitempty"`
}

// Column is a single column specification.
type Column struct {
	Name          string  `yaml:"name"`
	SourceType    string  `yaml:"source_type"`          // lower-cased keyword, e.g. varchar
	Length        string  `yaml:"length,omitempty"`     // parenthesized suffix without parens, e.g. 10,2
	TargetType    string  `yaml:"target_type,omitempty"` // filled in by the translator
	NotNull       bool    `yaml:"not_null,omitempty"`
	Default       *string `yaml:"default,omitempty"`
	AutoIncrement bool    `yaml:"auto_increment,omitempty"`
	Generated     bool    `yaml:"generated,omitempty"`
}

// ColumnNames returns the column names in declared order.
func (d *TableDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil.
func (d *TableDefinition) Column(name string) *Column {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i]
		}
	}
	return nil
}

// SinglePrimaryKey returns the key column name when the primary key has exactly one column.
func (d *TableDefinition) SinglePrimaryKey() (string, bool) {
	if len(d.PrimaryKey) != 1 {
		return "", false
	}
	return d.PrimaryKey[0], true
}

// CompositeKey reports whether the primary key spans more than one column.
func (d *TableDefinition) CompositeKey() bool {
	return len(d.PrimaryKey) > 1
}

// Find returns the named table, or nil.
func (s *Schema) Find(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
