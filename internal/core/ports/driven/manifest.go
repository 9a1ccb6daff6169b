package driven

import (
	"context"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

// ManifestStore is the idempotency ledger mapping (case, file) keys to
// ingestion records. Implementations must be safe for concurrent use;
// a process-wide lock around the load/modify/save region is acceptable.
type ManifestStore interface {
	// Load reads the full ledger into memory. An absent backing file
	// yields an empty ledger; a malformed file is logged as a warning
	// and also yields an empty ledger rather than failing ingestion.
	Load(ctx context.Context) error

	// Has reports whether the key is present in the ledger.
	Has(key string) bool

	// Record inserts or overwrites an entry.
	Record(key string, entry domain.ManifestEntry)

	// RemoveByCase deletes every entry belonging to the given case and
	// returns the number removed.
	RemoveByCase(caseID string) int

	// Save atomically persists the full ledger. Safe to call
	// repeatedly; an interrupted write must not corrupt the ledger.
	Save(ctx context.Context) error

	// Clear removes the persisted ledger entirely.
	Clear(ctx context.Context) error
}
