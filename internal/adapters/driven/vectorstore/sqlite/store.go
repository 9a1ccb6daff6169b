// Package sqlite provides a SQLite-backed vector store.
//
// Embeddings are stored as little-endian float32 blobs and searched
// with a brute-force L2 scan. The corpus is small enough (thousands of
// fragments) that an exact scan beats maintaining an ANN index.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/meridian-labs/casefind/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.VectorStore.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the vector store in the given data
// directory. An unreachable backend fails here, not on first query:
// the store is a cold-start dependency.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".casefind", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "fragments.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Insert adds a fragment, assigning a store-unique identifier.
// Duplicate content is accepted: suppression is the ingestion
// pipeline's responsibility.
func (s *Store) Insert(ctx context.Context, fragment *domain.Fragment) error {
	if fragment.ID == "" {
		fragment.ID = uuid.New().String()
	}

	metadataJSON, err := json.Marshal(fragment.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	embeddingBlob := float32SliceToBytes(fragment.Embedding)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO fragments (id, case_id, file_name, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`, fragment.ID, fragment.CaseID, fragment.FileName, fragment.Content,
		string(metadataJSON), embeddingBlob)

	if err != nil {
		return fmt.Errorf("inserting fragment: %w", err)
	}
	return nil
}

// Query returns up to k fragments by ascending L2 distance to the
// embedding, ties broken by insertion order. A non-nil filter restricts
// eligibility to fragments whose metadata matches exactly.
func (s *Store) Query(
	ctx context.Context, embedding []float32, k int, filter *driven.MetadataFilter,
) ([]driven.FragmentHit, error) {
	if k <= 0 {
		return []driven.FragmentHit{}, nil
	}

	query := `
		SELECT seq, id, case_id, file_name, content, metadata, embedding
		FROM fragments
	`
	var args []any
	// case_id has its own column; other keys are matched against the
	// metadata JSON after scanning.
	if filter != nil && filter.Key == domain.MetaCaseID {
		query += " WHERE case_id = ?"
		args = append(args, filter.Value)
	}
	query += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying fragments: %w", err)
	}
	defer rows.Close()

	type scored struct {
		hit driven.FragmentHit
		seq int64
	}

	var candidates []scored //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			seq           int64
			fragment      domain.Fragment
			metadataJSON  string
			embeddingBlob []byte
		)
		if err := rows.Scan(&seq, &fragment.ID, &fragment.CaseID, &fragment.FileName,
			&fragment.Content, &metadataJSON, &embeddingBlob); err != nil {
			return nil, fmt.Errorf("scanning fragment: %w", err)
		}

		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &fragment.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling fragment metadata: %w", err)
			}
		}

		if filter != nil && filter.Key != domain.MetaCaseID {
			if fragment.Metadata[filter.Key] != filter.Value {
				continue
			}
		}

		fragment.Embedding = bytesToFloat32Slice(embeddingBlob)

		distance, err := l2Distance(embedding, fragment.Embedding)
		if err != nil {
			return nil, fmt.Errorf("fragment %s: %w", fragment.ID, err)
		}

		candidates = append(candidates, scored{
			hit: driven.FragmentHit{Fragment: fragment, Distance: distance},
			seq: seq,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fragments: %w", err)
	}

	// Ascending distance; equal distances keep insertion order.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].hit.Distance != candidates[j].hit.Distance {
			return candidates[i].hit.Distance < candidates[j].hit.Distance
		}
		return candidates[i].seq < candidates[j].seq
	})

	if k > len(candidates) {
		k = len(candidates)
	}

	hits := make([]driven.FragmentHit, k)
	for i := range hits {
		hits[i] = candidates[i].hit
	}
	return hits, nil
}

// Count returns the total fragment count. A fresh store reports 0.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fragments").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting fragments: %w", err)
	}
	return count, nil
}

// DeleteAll resets the store to an empty, queryable state.
func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM fragments"); err != nil {
		return fmt.Errorf("clearing fragments: %w", err)
	}
	return nil
}

// l2Distance computes the Euclidean distance between two vectors.
func l2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
