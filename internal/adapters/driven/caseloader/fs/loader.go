// Package fs loads case documents from the local filesystem.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/meridian-labs/casefind/internal/chunker"
	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// MetadataFileName is the case descriptor file, never ingested as content.
const MetadataFileName = "metadata.json"

// contentExtensions is the allow-list of ingestable file extensions.
// PDF and DOCX parsing is out of scope; such files are skipped.
var contentExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// Loader reads a case directory and splits each content file into
// fragments using a fixed-size overlap splitter.
type Loader struct {
	splitter *chunker.Splitter
}

// NewLoader creates a loader that splits with the given splitter.
func NewLoader(splitter *chunker.Splitter) *Loader {
	if splitter == nil {
		splitter = chunker.New()
	}
	return &Loader{splitter: splitter}
}

// LoadCaseDirectory loads every allow-listed file directly inside dir
// and splits each into fragments. Files are visited in lexical order so
// ingestion output is deterministic.
func (l *Loader) LoadCaseDirectory(ctx context.Context, dir string) ([]domain.SourceDocument, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("case directory %s: %w", dir, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading case directory: %w", err)
	}

	var names []string //nolint:prealloc // filtered size unknown
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == MetadataFileName {
			continue
		}
		if !contentExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var docs []domain.SourceDocument //nolint:prealloc // empty files produce no documents
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}

		pieces := l.splitter.Split(strings.TrimSpace(string(data)))
		if len(pieces) == 0 {
			continue
		}

		fragments := make([]domain.Fragment, len(pieces))
		for i, piece := range pieces {
			fragments[i] = domain.Fragment{
				FileName: name,
				Content:  piece,
			}
		}
		docs = append(docs, domain.SourceDocument{FileName: name, Fragments: fragments})
	}

	return docs, nil
}
