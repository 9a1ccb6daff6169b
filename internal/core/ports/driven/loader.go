package driven

import (
	"context"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

// DocumentLoader reads the content files of a case directory and splits
// each into text fragments. Parsing and chunking internals are opaque
// to the engine core.
type DocumentLoader interface {
	// LoadCaseDirectory loads every file in dir matching the content
	// extension allow-list and splits each into fragments. A directory
	// with no matching files returns an empty slice, not an error; a
	// missing directory returns an error wrapping domain.ErrNotFound.
	LoadCaseDirectory(ctx context.Context, dir string) ([]domain.SourceDocument, error)
}
