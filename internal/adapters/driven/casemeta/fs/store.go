// Package fs reads case metadata descriptors from the case storage layout.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.CaseMetadataStore = (*Store)(nil)

// MetadataFileName is the descriptor file inside each case directory.
const MetadataFileName = "metadata.json"

// Cache TTLs for parsed descriptors. Ranking hits the same handful of
// case files on every request; descriptors change only on re-ingestion.
const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// caseMetadata mirrors the metadata.json descriptor schema.
type caseMetadata struct {
	CaseID      string             `json:"case_id"`
	Title       string             `json:"title"`
	Defendant   string             `json:"defendant"`
	Date        string             `json:"date"`
	Court       string             `json:"court"`
	Evaluator   string             `json:"evaluator"`
	Question    string             `json:"question"`
	Summary     string             `json:"summary"`
	Documents   []documentMetadata `json:"documents"`
	KeyFindings []string           `json:"key_findings"`
}

// documentMetadata describes one document within a case descriptor.
type documentMetadata struct {
	Filename    string `json:"filename"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// Store reads case metadata from one-directory-per-case storage, with
// a TTL cache in front of descriptor parsing.
type Store struct {
	dataRoot string
	cache    *cache.Cache
}

// NewStore creates a metadata store rooted at dataRoot.
func NewStore(dataRoot string) *Store {
	return &Store{
		dataRoot: dataRoot,
		cache:    cache.New(cacheTTL, cacheCleanup),
	}
}

// Lookup returns metadata for a case, or fallback values tagged with
// the reason when the descriptor is missing or malformed. Lookup never
// fails: aggregation must not abort on unavailable metadata.
func (s *Store) Lookup(_ context.Context, caseID string) driven.CaseLookup {
	if cached, ok := s.cache.Get(caseID); ok {
		return cached.(driven.CaseLookup)
	}

	lookup := s.lookup(caseID)
	s.cache.Set(caseID, lookup, cache.DefaultExpiration)
	return lookup
}

func (s *Store) lookup(caseID string) driven.CaseLookup {
	caseDir := filepath.Join(s.dataRoot, caseID)

	data, err := os.ReadFile(filepath.Join(caseDir, MetadataFileName))
	if err != nil {
		return driven.CaseLookup{
			FallbackReason: fmt.Sprintf("metadata descriptor unreadable: %v", err),
			Case:           s.fallbackCase(caseID, caseDir),
		}
	}

	var meta caseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return driven.CaseLookup{
			FallbackReason: fmt.Sprintf("metadata descriptor malformed: %v", err),
			Case:           s.fallbackCase(caseID, caseDir),
		}
	}

	c := domain.Case{
		ID:            caseID,
		Title:         meta.Title,
		Date:          meta.Date,
		Summary:       meta.Summary,
		KeyFindings:   meta.KeyFindings,
		DocumentCount: len(meta.Documents),
	}
	if c.Title == "" {
		c.Title = caseID
	}
	// Descriptors without a document list fall back to a directory
	// listing. The listing counts every non-descriptor file, so the
	// result is an approximation, not a guaranteed-exact count.
	if c.DocumentCount == 0 {
		c.DocumentCount = countContentFiles(caseDir)
	}

	return driven.CaseLookup{Found: true, Case: c}
}

// fallbackCase builds the default case info used when the descriptor
// cannot be read: title = case identifier, document count from a
// directory listing (0 if that also fails).
func (s *Store) fallbackCase(caseID, caseDir string) domain.Case {
	return domain.Case{
		ID:            caseID,
		Title:         caseID,
		Date:          "Unknown",
		DocumentCount: countContentFiles(caseDir),
	}
}

// ListCases enumerates all case directories under the data root,
// sorted by case identifier.
func (s *Store) ListCases(ctx context.Context) ([]domain.Case, error) {
	entries, err := os.ReadDir(s.dataRoot)
	if os.IsNotExist(err) {
		return []domain.Case{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading data root: %w", err)
	}

	var cases []domain.Case //nolint:prealloc // non-directories are skipped
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		lookup := s.Lookup(ctx, entry.Name())
		cases = append(cases, lookup.Case)
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].ID < cases[j].ID })
	return cases, nil
}

// countContentFiles counts non-descriptor files in a case directory.
func countContentFiles(caseDir string) int {
	entries, err := os.ReadDir(caseDir)
	if err != nil {
		return 0
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == MetadataFileName {
			continue
		}
		count++
	}
	return count
}
