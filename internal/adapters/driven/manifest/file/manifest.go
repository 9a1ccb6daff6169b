// Package file provides the JSON file-backed ingestion manifest.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// Ensure Manifest implements the interface.
var _ driven.ManifestStore = (*Manifest)(nil)

// DefaultFileName is the manifest file name within the data root.
const DefaultFileName = ".ingestion_manifest.json"

// Manifest is a JSON file-backed idempotency ledger. A single mutex
// guards the whole load/modify/save region, which serializes manifest
// access across concurrent ingestion runs.
type Manifest struct {
	mu      sync.Mutex
	path    string
	entries map[string]domain.ManifestEntry
	log     *zap.Logger
}

// New creates a manifest ledger backed by DefaultFileName under dataRoot.
func New(dataRoot string, log *zap.Logger) *Manifest {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manifest{
		path:    filepath.Join(dataRoot, DefaultFileName),
		entries: make(map[string]domain.ManifestEntry),
		log:     log,
	}
}

// Load reads the full ledger into memory. An absent file starts an
// empty ledger; a malformed file logs a warning and also starts empty
// so ingestion can proceed.
func (m *Manifest) Load(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.entries = make(map[string]domain.ManifestEntry)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}

	entries := make(map[string]domain.ManifestEntry)
	if err := json.Unmarshal(data, &entries); err != nil {
		m.log.Warn("manifest file is malformed, starting with empty ledger",
			zap.String("path", m.path),
			zap.Error(err))
		m.entries = make(map[string]domain.ManifestEntry)
		return nil
	}

	m.entries = entries
	return nil
}

// Has reports whether the key is present.
func (m *Manifest) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

// Record inserts or overwrites an entry.
func (m *Manifest) Record(key string, entry domain.ManifestEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry
}

// RemoveByCase deletes every entry belonging to the case and returns
// the number removed.
func (m *Manifest) RemoveByCase(caseID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key := range m.entries {
		if domain.KeyBelongsToCase(key, caseID) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of ledger entries.
func (m *Manifest) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Save persists the full ledger with write-to-temp-then-rename so an
// interrupted write never corrupts the previous ledger.
func (m *Manifest) Save(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp manifest: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing manifest: %w", err)
	}
	return nil
}

// Clear removes the persisted ledger and empties the in-memory map.
func (m *Manifest) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]domain.ManifestEntry)

	err := os.Remove(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing manifest: %w", err)
	}
	return nil
}
