package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SnapshotVersion is the format version written by Exporter.
const SnapshotVersion = "2.0"

// Snapshot is the JSON document written by Export and read by Import.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []Entry           `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Exporter writes the contents of an enumerable cache as a snapshot.
type Exporter struct {
	cache Enumerable
}

// NewExporter creates a cache exporter.
func NewExporter(cache Enumerable) *Exporter {
	return &Exporter{cache: cache}
}

// Export writes the cache contents to w. It returns the number of entries written.
func (e *Exporter) Export(w io.Writer, metadata map[string]string) (int, error) {
	entries := e.cache.Entries()
	if entries == nil {
		entries = []Entry{}
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return 0, fmt.Errorf("encoding JSON: %w", err)
	}
	return len(entries), nil
}

// ExportToFile writes the snapshot to path atomically via a temp file in the
// same directory.
func (e *Exporter) ExportToFile(path string, metadata map[string]string) (int, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := e.Export(tmp, metadata)
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("renaming snapshot: %w", err)
	}
	return n, nil
}

// Importer loads snapshot entries into any cache.
type Importer struct {
	cache Cache
}

// NewImporter creates a cache importer.
func NewImporter(cache Cache) *Importer {
	return &Importer{cache: cache}
}

// ImportResult contains statistics about an import.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Skipped  int
	Failed   int
}

// Import reads a snapshot from r. Entries with an empty language or text are skipped.
func (i *Importer) Import(r io.Reader) (*ImportResult, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  snap.Version,
		Metadata: snap.Metadata,
	}

	for _, entry := range snap.Entries {
		if entry.Lang == "" || entry.Text == "" {
			result.Skipped++
			continue
		}
		if err := i.cache.Set(entry.Lang, entry.Text, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Imported++
	}

	return result, nil
}

// ImportFromFile imports a snapshot file.
func (i *Importer) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is operator-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return i.Import(f)
}
