package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/domain"
	"github.com/meridian-labs/casefind/internal/core/ports/driving"
)

// Ingest loads a case directory into the vector store. Files already
// recorded in the manifest are skipped unless the request forces
// re-ingestion. Duplicate detection operates per file; the returned
// counts are per fragment.
func (e *Engine) Ingest(ctx context.Context, req driving.IngestRequest) (*domain.IngestStats, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if req.CaseID == "" {
		return nil, fmt.Errorf("%w: case ID is required", domain.ErrInvalidInput)
	}
	if req.CaseDir == "" {
		return nil, fmt.Errorf("%w: case directory is required", domain.ErrInvalidInput)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	unlock := e.lockCase(req.CaseID)
	defer unlock()

	docs, err := e.loader.LoadCaseDirectory(ctx, req.CaseDir)
	if err != nil {
		return nil, fmt.Errorf("load case directory: %w", err)
	}

	stats := &domain.IngestStats{}
	for _, doc := range docs {
		key := domain.ManifestKey(req.CaseID, doc.FileName)

		// The manifest check runs once per file, before any of its
		// fragments are touched.
		if !req.Force && e.manifest.Has(key) {
			stats.Skipped += len(doc.Fragments)
			e.log.Debug("skipping already ingested file",
				zap.String("case_id", req.CaseID),
				zap.String("file", doc.FileName),
				zap.Int("fragments", len(doc.Fragments)))
			continue
		}

		if err := e.ingestDocument(ctx, req, doc); err != nil {
			return nil, err
		}

		e.manifest.Record(key, domain.ManifestEntry{
			CaseID:     req.CaseID,
			FileName:   doc.FileName,
			IngestedAt: time.Now().UTC().Format(time.RFC3339),
		})
		stats.Ingested += len(doc.Fragments)
	}

	if stats.Ingested > 0 {
		if err := e.manifest.Save(ctx); err != nil {
			return nil, fmt.Errorf("save manifest: %w", err)
		}
	}

	e.log.Info("ingestion finished",
		zap.String("case_id", req.CaseID),
		zap.Int("ingested", stats.Ingested),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}

// ingestDocument embeds and stores every fragment of one document.
func (e *Engine) ingestDocument(ctx context.Context, req driving.IngestRequest, doc domain.SourceDocument) error {
	texts := make([]string, len(doc.Fragments))
	for i, frag := range doc.Fragments {
		texts[i] = frag.Content
	}

	embeddings, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed file %s: %w", doc.FileName, err)
	}
	if len(embeddings) != len(doc.Fragments) {
		return fmt.Errorf("%w: embed file %s: got %d embeddings for %d fragments",
			domain.ErrProvider, doc.FileName, len(embeddings), len(doc.Fragments))
	}

	for i := range doc.Fragments {
		frag := doc.Fragments[i]
		frag.CaseID = req.CaseID
		frag.FileName = doc.FileName
		frag.Embedding = embeddings[i]

		metadata := make(map[string]string, len(req.Metadata)+2)
		for k, v := range req.Metadata {
			metadata[k] = v
		}
		// Reserved keys always reflect the request, never caller metadata.
		metadata[domain.MetaCaseID] = req.CaseID
		metadata[domain.MetaFileName] = doc.FileName
		frag.Metadata = metadata

		if err := e.store.Insert(ctx, &frag); err != nil {
			return fmt.Errorf("%w: insert fragment from %s: %w", domain.ErrStore, doc.FileName, err)
		}
	}
	return nil
}
