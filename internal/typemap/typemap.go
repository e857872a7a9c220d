package typemap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SQLiteType is a target column type category.
type SQLiteType string

const (
	SQLiteInteger SQLiteType = "INTEGER"
	SQLiteReal    SQLiteType = "REAL"
	SQLiteText    SQLiteType = "TEXT"
)

// AllSQLiteTypes lists every target category a mapping may name.
var AllSQLiteTypes = []SQLiteType{
	SQLiteInteger,
	SQLiteReal,
	SQLiteText,
}

// Fallback is the category used for source types with no mapping.
const Fallback = SQLiteText

// TypeMap holds the mapping from MySQL type keywords to SQLite types.
type TypeMap struct {
	Mappings  map[string]SQLiteType `yaml:"mappings"`
	Overrides map[string]SQLiteType `yaml:"overrides,omitempty"`
	defaults  map[string]SQLiteType // not serialized; populated by New
}

// DefaultMySQL returns the default MySQL to SQLite mapping.
func DefaultMySQL() *TypeMap {
	m := map[string]SQLiteType{
		"int":        SQLiteInteger,
		"tinyint":    SQLiteInteger,
		"smallint":   SQLiteInteger,
		"mediumint":  SQLiteInteger,
		"bigint":     SQLiteInteger,
		"float":      SQLiteReal,
		"double":     SQLiteReal,
		"decimal":    SQLiteReal,
		"char":       SQLiteText,
		"varchar":    SQLiteText,
		"text":       SQLiteText,
		"mediumtext": SQLiteText,
		"longtext":   SQLiteText,
		"date":       SQLiteText,
		"datetime":   SQLiteText,
		"timestamp":  SQLiteText,
		"enum":       SQLiteText,
	}
	return &TypeMap{Mappings: m}
}

// New returns the MySQL defaults with override tracking enabled.
func New() *TypeMap {
	tm := DefaultMySQL()
	tm.defaults = make(map[string]SQLiteType, len(tm.Mappings))
	for k, v := range tm.Mappings {
		tm.defaults[k] = v
	}
	tm.Overrides = make(map[string]SQLiteType)
	return tm
}

// Resolve returns the SQLite type for the given source type keyword.
// The lookup is case-insensitive; unknown keywords fall back to TEXT.
func (tm *TypeMap) Resolve(sourceType string) SQLiteType {
	if t, ok := tm.Mappings[strings.ToLower(sourceType)]; ok {
		return t
	}
	return Fallback
}

// Known reports whether sourceType has an explicit mapping.
func (tm *TypeMap) Known(sourceType string) bool {
	_, ok := tm.Mappings[strings.ToLower(sourceType)]
	return ok
}

// Override applies a user override for a source type.
func (tm *TypeMap) Override(sourceType string, target SQLiteType) {
	sourceType = strings.ToLower(sourceType)
	tm.Mappings[sourceType] = target
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]SQLiteType)
	}
	// An override equal to the default is not tracked.
	if tm.defaults != nil {
		if def, ok := tm.defaults[sourceType]; ok && def == target {
			delete(tm.Overrides, sourceType)
			return
		}
	}
	tm.Overrides[sourceType] = target
}

// RestoreDefault restores the default mapping for a source type. A type with
// no default goes back to resolving to Fallback.
func (tm *TypeMap) RestoreDefault(sourceType string) {
	sourceType = strings.ToLower(sourceType)
	if tm.defaults == nil {
		return
	}
	if def, ok := tm.defaults[sourceType]; ok {
		tm.Mappings[sourceType] = def
	} else {
		delete(tm.Mappings, sourceType)
	}
	delete(tm.Overrides, sourceType)
}

// IsOverridden returns true if the source type has been overridden from its default.
func (tm *TypeMap) IsOverridden(sourceType string) bool {
	if tm.Overrides == nil {
		return false
	}
	_, ok := tm.Overrides[strings.ToLower(sourceType)]
	return ok
}

// Merge applies other on top of tm. Entries of other.Mappings that differ
// from tm become overrides, so an exported file edited in either section
// takes effect. other.Overrides win over other.Mappings.
func (tm *TypeMap) Merge(other *TypeMap) error {
	for src, target := range other.Mappings {
		if cur, ok := tm.Mappings[strings.ToLower(src)]; ok && cur == target {
			continue
		}
		if err := tm.mergeOne(src, target); err != nil {
			return err
		}
	}
	for src, target := range other.Overrides {
		if err := tm.mergeOne(src, target); err != nil {
			return err
		}
	}
	return nil
}

func (tm *TypeMap) mergeOne(src string, target SQLiteType) error {
	if !validType(target) {
		return fmt.Errorf("type mapping for %q: unknown SQLite type %q", src, target)
	}
	tm.Override(src, target)
	return nil
}

// SortedTypes returns the source type names sorted alphabetically.
func (tm *TypeMap) SortedTypes() []string {
	types := make([]string, 0, len(tm.Mappings))
	for k := range tm.Mappings {
		types = append(types, k)
	}
	sort.Strings(types)
	return types
}

// WriteYAML writes the type mapping to a YAML file.
func (tm *TypeMap) WriteYAML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := yaml.Marshal(tm)
	if err != nil {
		return fmt.Errorf("marshaling type map: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// LoadYAML reads a type mapping from a YAML file.
func LoadYAML(path string) (*TypeMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading type map file: %w", err)
	}
	tm := &TypeMap{}
	if err := yaml.Unmarshal(data, tm); err != nil {
		return nil, fmt.Errorf("parsing type map: %w", err)
	}
	if tm.Mappings == nil {
		tm.Mappings = make(map[string]SQLiteType)
	}
	if tm.Overrides == nil {
		tm.Overrides = make(map[string]SQLiteType)
	}
	return tm, nil
}

// Load returns the defaults with the overrides stored at path applied.
// An empty path yields the defaults.
func Load(path string) (*TypeMap, error) {
	tm := New()
	if path == "" {
		return tm, nil
	}
	stored, err := LoadYAML(path)
	if err != nil {
		return nil, err
	}
	if err := tm.Merge(stored); err != nil {
		return nil, err
	}
	return tm, nil
}

func validType(t SQLiteType) bool {
	for _, known := range AllSQLiteTypes {
		if t == known {
			return true
		}
	}
	return false
}
