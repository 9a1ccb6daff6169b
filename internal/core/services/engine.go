// Package services implements the retrieval engine behind the driving ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driven"
	"github.com/meridian-labs/casefind/internal/core/ports/driving"
)

// Ensure Engine implements the interface.
var _ driving.Engine = (*Engine)(nil)

// DefaultTopK is the retrieval depth used when none is configured.
const DefaultTopK = 5

// Engine is the long-lived retrieval engine. A single instance is
// shared by every request handler.
//
// Locking: read operations take the read side of mu, destructive
// operations (ClearAll) take the write side. Ingestion takes the read
// side plus a per-case mutex, so different cases ingest concurrently
// while the same case is serialized.
type Engine struct {
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	completer driven.CompletionService
	manifest  driven.ManifestStore
	loader    driven.DocumentLoader
	caseMeta  driven.CaseMetadataStore
	log       *zap.Logger
	topK      int

	mu sync.RWMutex

	initMu      sync.Mutex
	initialized bool

	caseMu    sync.Mutex
	caseLocks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithTopK sets the retrieval depth for document queries.
func WithTopK(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.topK = k
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates a retrieval engine wired to the given adapters.
// The engine is unusable until Initialize completes.
func NewEngine(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	completer driven.CompletionService,
	manifest driven.ManifestStore,
	loader driven.DocumentLoader,
	caseMeta driven.CaseMetadataStore,
	opts ...Option,
) *Engine {
	e := &Engine{
		store:     store,
		embedder:  embedder,
		completer: completer,
		manifest:  manifest,
		loader:    loader,
		caseMeta:  caseMeta,
		log:       zap.NewNop(),
		topK:      DefaultTopK,
		caseLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize verifies provider reachability, loads the ingestion
// manifest and marks the engine ready. Idempotent: a second call is a
// no-op. A failed call leaves the engine uninitialized so the caller
// can retry.
func (e *Engine) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	if e.initialized {
		return nil
	}

	if err := e.embedder.Ping(ctx); err != nil {
		return fmt.Errorf("%w: embedding service unreachable: %w", domain.ErrProvider, err)
	}
	if err := e.completer.Ping(ctx); err != nil {
		return fmt.Errorf("%w: completion service unreachable: %w", domain.ErrProvider, err)
	}

	if err := e.manifest.Load(ctx); err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	count, err := e.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: count fragments: %w", domain.ErrStore, err)
	}

	e.log.Info("engine initialized",
		zap.Int("fragments", count),
		zap.String("embedding_model", e.embedder.ModelName()),
		zap.String("completion_model", e.completer.ModelName()))

	e.initialized = true
	return nil
}

// ready reports whether Initialize has completed.
func (e *Engine) ready() error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if !e.initialized {
		return domain.ErrNotInitialized
	}
	return nil
}

// DocumentCount returns the total fragment count in the store.
func (e *Engine) DocumentCount(ctx context.Context) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	count, err := e.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count fragments: %w", domain.ErrStore, err)
	}
	return count, nil
}

// ListCases enumerates all known cases.
func (e *Engine) ListCases(ctx context.Context) ([]domain.Case, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.caseMeta.ListCases(ctx)
}

// ClearAll removes every fragment and the ingestion manifest. The
// store remains queryable and returns empty results afterwards.
func (e *Engine) ClearAll(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: delete fragments: %w", domain.ErrStore, err)
	}
	if err := e.manifest.Clear(ctx); err != nil {
		return fmt.Errorf("clear manifest: %w", err)
	}

	e.log.Info("cleared vector store and manifest")
	return nil
}

// ClearCase removes a case's manifest entries so its files can be
// re-ingested, returning the number of entries removed. Stored
// fragments are untouched; a following forced ingestion replaces them
// in retrieval relevance but does not delete the old rows.
func (e *Engine) ClearCase(ctx context.Context, caseID string) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if caseID == "" {
		return 0, fmt.Errorf("%w: case ID is required", domain.ErrInvalidInput)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	unlock := e.lockCase(caseID)
	defer unlock()

	removed := e.manifest.RemoveByCase(caseID)
	if removed > 0 {
		if err := e.manifest.Save(ctx); err != nil {
			return 0, fmt.Errorf("save manifest: %w", err)
		}
	}

	e.log.Info("cleared case manifest entries",
		zap.String("case_id", caseID),
		zap.Int("removed", removed))
	return removed, nil
}

// Shutdown releases engine resources.
func (e *Engine) Shutdown() error {
	return errors.Join(
		e.store.Close(),
		e.embedder.Close(),
		e.completer.Close(),
	)
}

// lockCase acquires the per-case ingestion mutex and returns its
// unlock function.
func (e *Engine) lockCase(caseID string) func() {
	e.caseMu.Lock()
	lock, ok := e.caseLocks[caseID]
	if !ok {
		lock = &sync.Mutex{}
		e.caseLocks[caseID] = lock
	}
	e.caseMu.Unlock()

	lock.Lock()
	return lock.Unlock
}
