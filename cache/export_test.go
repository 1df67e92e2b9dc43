package cache

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExporter_Export(t *testing.T) {
	c := NewMemory(3600)
	c.Set("fr", "Hello", "Bonjour")
	c.Set("de", "Hello", "Hallo")

	exporter := NewExporter(c)
	var buf bytes.Buffer

	n, err := exporter.Export(&buf, map[string]string{"source": "test"})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Export wrote %d entries, want 2", n)
	}

	var snap Snapshot
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("Failed to parse export: %v", err)
	}

	if snap.Version != SnapshotVersion {
		t.Errorf("Expected version %s, got %s", SnapshotVersion, snap.Version)
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(snap.Entries))
	}
	if snap.Entries[0].Lang != "de" || snap.Entries[0].Value != "Hallo" {
		t.Errorf("unexpected first entry %+v", snap.Entries[0])
	}
	if snap.Metadata["source"] != "test" {
		t.Errorf("Expected metadata source=test, got %v", snap.Metadata)
	}
}

func TestExporter_EmptyCache(t *testing.T) {
	var buf bytes.Buffer
	if _, err := NewExporter(NewMemory(0)).Export(&buf, nil); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Errorf("empty cache should export an empty array, got %s", buf.String())
	}
}

func TestImporter_Import(t *testing.T) {
	jsonData := `{
		"version": "2.0",
		"exported_at": "2026-01-01T00:00:00Z",
		"entries": [
			{"lang": "fr", "text": "Hello", "value": "Bonjour"},
			{"lang": "ar", "text": "Hello", "value": "مرحبا"},
			{"lang": "", "text": "orphan", "value": "x"}
		],
		"metadata": {"source": "test"}
	}`

	c := NewMemory(0)
	result, err := NewImporter(c).Import(strings.NewReader(jsonData))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", result.Skipped)
	}
	if result.Version != "2.0" {
		t.Errorf("Expected version 2.0, got %s", result.Version)
	}
	if val, ok := c.Get("ar", "Hello"); !ok || val != "مرحبا" {
		t.Errorf("imported entry missing, got (%q, %v)", val, ok)
	}
}

func TestImporter_InvalidJSON(t *testing.T) {
	if _, err := NewImporter(NewMemory(0)).Import(strings.NewReader("not json")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestExportImport_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "cache.json")

	src := NewMemory(0)
	src.Set("es", "Our doctors", "Nuestros médicos")
	if _, err := NewExporter(src).ExportToFile(path, nil); err != nil {
		t.Fatalf("ExportToFile failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	dst := NewMemory(0)
	result, err := NewImporter(dst).ImportFromFile(path)
	if err != nil {
		t.Fatalf("ImportFromFile failed: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Expected 1 imported, got %d", result.Imported)
	}
	if val, _ := dst.Get("es", "Our doctors"); val != "Nuestros médicos" {
		t.Errorf("round trip lost value, got %q", val)
	}
}

func TestImporter_MissingFile(t *testing.T) {
	if _, err := NewImporter(NewMemory(0)).ImportFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
