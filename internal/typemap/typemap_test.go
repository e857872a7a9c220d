package typemap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMySQLMapping(t *testing.T) {
	tm := DefaultMySQL()

	tests := []struct {
		sourceType string
		want       SQLiteType
	}{
		{"int", SQLiteInteger},
		{"tinyint", SQLiteInteger},
		{"smallint", SQLiteInteger},
		{"mediumint", SQLiteInteger},
		{"bigint", SQLiteInteger},
		{"float", SQLiteReal},
		{"double", SQLiteReal},
		{"decimal", SQLiteReal},
		{"char", SQLiteText},
		{"varchar", SQLiteText},
		{"text", SQLiteText},
		{"mediumtext", SQLiteText},
		{"longtext", SQLiteText},
		{"date", SQLiteText},
		{"datetime", SQLiteText},
		{"timestamp", SQLiteText},
		{"enum", SQLiteText},
	}

	if len(tests) != len(tm.Mappings) {
		t.Fatalf("table covers %d types, default map has %d", len(tests), len(tm.Mappings))
	}

	for _, tt := range tests {
		t.Run(tt.sourceType, func(t *testing.T) {
			got := tm.Resolve(tt.sourceType)
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.sourceType, got, tt.want)
			}
		})
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	tm := DefaultMySQL()
	if got := tm.Resolve("BIGINT"); got != SQLiteInteger {
		t.Errorf("Resolve(BIGINT) = %s, want INTEGER", got)
	}
}

func TestUnknownTypeFallsBackToText(t *testing.T) {
	tm := DefaultMySQL()
	for _, typ := range []string{"json", "blob", "geometry", "set", "bit", ""} {
		if got := tm.Resolve(typ); got != SQLiteText {
			t.Errorf("Resolve(%q) = %s, want TEXT fallback", typ, got)
		}
		if tm.Known(typ) {
			t.Errorf("Known(%q) should be false", typ)
		}
	}
}

func TestOverride(t *testing.T) {
	tm := New()

	tm.Override("decimal", SQLiteText)
	if tm.Resolve("decimal") != SQLiteText {
		t.Errorf("expected TEXT after override, got %s", tm.Resolve("decimal"))
	}
	if !tm.IsOverridden("decimal") {
		t.Error("decimal should be marked as overridden")
	}

	tm.RestoreDefault("decimal")
	if tm.Resolve("decimal") != SQLiteReal {
		t.Errorf("expected REAL after restore, got %s", tm.Resolve("decimal"))
	}
	if tm.IsOverridden("decimal") {
		t.Error("decimal should not be overridden after restore")
	}
}

func TestOverride_SameAsDefault(t *testing.T) {
	tm := New()
	tm.Override("int", SQLiteInteger)
	if tm.IsOverridden("int") {
		t.Error("overriding to default value should not be tracked as override")
	}
}

func TestOverride_NewType(t *testing.T) {
	tm := New()
	tm.Override("JSON", SQLiteText)
	tm.Override("year", SQLiteInteger)
	if tm.Resolve("year") != SQLiteInteger {
		t.Errorf("expected INTEGER for year, got %s", tm.Resolve("year"))
	}
	if !tm.IsOverridden("json") {
		t.Error("json override should be tracked under its lower-cased name")
	}
}

func TestWriteAndLoad(t *testing.T) {
	tm := New()
	tm.Override("year", SQLiteInteger)

	path := filepath.Join(t.TempDir(), "typemap.yaml")
	if err := tm.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Resolve("year") != SQLiteInteger {
		t.Errorf("loaded mapping: expected INTEGER for year, got %s", loaded.Resolve("year"))
	}
	if loaded.Resolve("varchar") != SQLiteText {
		t.Errorf("loaded mapping: expected TEXT for varchar, got %s", loaded.Resolve("varchar"))
	}
}

func TestLoad_AppliesEditedMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typemap.yaml")
	content := `mappings:
  decimal: TEXT
  int: INTEGER
  year: INTEGER
overrides:
  year: REAL
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tm, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tm.Resolve("decimal") != SQLiteText || !tm.IsOverridden("decimal") {
		t.Errorf("edited mapping for decimal not applied: %s", tm.Resolve("decimal"))
	}
	if tm.IsOverridden("int") {
		t.Error("a mapping equal to the default is not an override")
	}
	if tm.Resolve("year") != SQLiteReal {
		t.Errorf("overrides should win over mappings, got %s for year", tm.Resolve("year"))
	}
}

func TestLoad_RejectsUnknownTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typemap.yaml")
	content := "mappings: {}\noverrides:\n  json: JSONB\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown SQLite type")
	}
}

func TestLoad_EmptyPathGivesDefaults(t *testing.T) {
	tm, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tm.Resolve("int") != SQLiteInteger {
		t.Error("expected defaults")
	}
}

func TestLoadYAML_NotFound(t *testing.T) {
	if _, err := LoadYAML("/nonexistent/typemap.yaml"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestSortedTypes(t *testing.T) {
	types := DefaultMySQL().SortedTypes()
	if len(types) == 0 {
		t.Fatal("expected non-empty sorted types")
	}
	for i := 1; i < len(types); i++ {
		if types[i] < types[i-1] {
			t.Errorf("types not sorted: %s before %s", types[i-1], types[i])
		}
	}
}

func TestRestoreDefault_AddedType(t *testing.T) {
	tm := New()
	tm.Override("json", SQLiteText)
	if !tm.Known("json") || !tm.IsOverridden("json") {
		t.Fatal("json should be mapped and overridden")
	}

	tm.RestoreDefault("json")
	if tm.Known("json") {
		t.Error("json should no longer be mapped")
	}
	if tm.IsOverridden("json") {
		t.Error("json should not be overridden after restore")
	}
	if tm.Resolve("json") != Fallback {
		t.Errorf("Resolve(json) = %s, want %s", tm.Resolve("json"), Fallback)
	}
}
