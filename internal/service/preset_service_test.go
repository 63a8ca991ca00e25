package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPresetLoad(t *testing.T) {
	dir := t.TempDir()
	data := `{
		"family_name": "Demo",
		"members": [
			{"original_id": "a", "source_family_id": "src", "name": "Anna", "gender": "female"}
		]
	}`
	if err := os.WriteFile(filepath.Join(dir, "demo_data.json"), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write preset file: %v", err)
	}

	presets := NewPresetService(dir)

	keys := presets.Keys()
	if len(keys) != 1 || keys[0] != "demo" {
		t.Errorf("Keys() = %v, want [demo]", keys)
	}

	doc, err := presets.Load("demo")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.FamilyName != "Demo" {
		t.Errorf("FamilyName = %q, want Demo", doc.FamilyName)
	}
	if len(doc.Members) != 1 || doc.Members[0].OriginalID != "a" {
		t.Errorf("Members = %+v, want one record with original id a", doc.Members)
	}

	if _, err := presets.Load("atlantis"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("Expected ErrPresetNotFound, got %v", err)
	}
	// Known key whose file is absent is also not found
	if _, err := presets.Load("han_dynasty"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("Expected ErrPresetNotFound for missing file, got %v", err)
	}
}
