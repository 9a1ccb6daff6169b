package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-labs/casefind/internal/core/ports/driving"
)

var (
	ingestCase     string
	ingestForce    bool
	ingestClear    bool
	ingestValidate bool
	ingestWatch    bool
)

// watchDebounce batches rapid file events before re-ingesting a case.
const watchDebounce = 2 * time.Second

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest case documents into the vector store",
	Long: `Loads case documents from the data directory, splits them into
fragments and stores their embeddings. Files already recorded in the
ingestion manifest are skipped unless --force is given.

Without --case, every case directory under the data directory is
ingested.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCase, "case", "", "ingest a single case by identifier")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "re-ingest files already in the manifest")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear the vector store and manifest first")
	ingestCmd.Flags().BoolVar(&ingestValidate, "validate-only", false, "validate case metadata without ingesting")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and re-ingest cases when files change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := ensureEngine(ctx); err != nil {
		return err
	}

	if ingestValidate {
		return runValidation(cmd)
	}

	if ingestClear {
		if err := engine.ClearAll(ctx); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
		cmd.Println("Cleared vector store and manifest.")
	}

	caseIDs, err := targetCases(ctx)
	if err != nil {
		return err
	}
	if len(caseIDs) == 0 {
		cmd.Println("No cases found to ingest.")
		return nil
	}

	for _, caseID := range caseIDs {
		if err := ingestOne(ctx, cmd, caseID, ingestForce); err != nil {
			return err
		}
	}

	if ingestWatch {
		return watchCases(ctx, cmd)
	}
	return nil
}

// targetCases resolves the case identifiers to ingest.
func targetCases(ctx context.Context) ([]string, error) {
	if ingestCase != "" {
		return []string{ingestCase}, nil
	}

	cases, err := engine.ListCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	ids := make([]string, len(cases))
	for i, c := range cases {
		ids[i] = c.ID
	}
	return ids, nil
}

func ingestOne(ctx context.Context, cmd *cobra.Command, caseID string, force bool) error {
	stats, err := engine.Ingest(ctx, driving.IngestRequest{
		CaseDir: filepath.Join(cfg.DataDir, caseID),
		CaseID:  caseID,
		Force:   force,
	})
	if err != nil {
		return fmt.Errorf("ingest %s: %w", caseID, err)
	}

	cmd.Printf("%s: %d fragments ingested, %d skipped\n", caseID, stats.Ingested, stats.Skipped)
	return nil
}

// runValidation checks every case's metadata descriptor and reports
// errors and warnings. Returns an error when any case fails.
func runValidation(cmd *cobra.Command) error {
	results, err := caseMeta.ValidateAll()
	if err != nil {
		return fmt.Errorf("validate cases: %w", err)
	}

	invalid := 0
	for _, result := range results {
		switch {
		case !result.Valid():
			invalid++
			cmd.Printf("FAIL %s\n", result.CaseID)
			for _, msg := range result.Errors {
				cmd.Printf("     error: %s\n", msg)
			}
		case len(result.Warnings) > 0:
			cmd.Printf("WARN %s\n", result.CaseID)
		default:
			cmd.Printf("OK   %s\n", result.CaseID)
		}
		for _, msg := range result.Warnings {
			cmd.Printf("     warning: %s\n", msg)
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d cases failed validation", invalid, len(results))
	}
	cmd.Printf("All %d cases valid.\n", len(results))
	return nil
}

// watchCases re-ingests a case whenever files under its directory
// change. Events are debounced per case so bulk copies trigger a
// single ingestion run.
func watchCases(ctx context.Context, cmd *cobra.Command) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.DataDir); err != nil {
		return fmt.Errorf("watch %s: %w", cfg.DataDir, err)
	}
	entries, err := os.ReadDir(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("read data dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			if err := watcher.Add(filepath.Join(cfg.DataDir, entry.Name())); err != nil {
				return fmt.Errorf("watch case dir: %w", err)
			}
		}
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)...\n", cfg.DataDir)

	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			// New case directory: start watching it.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						log.Warn("cannot watch new directory",
							zap.String("path", event.Name), zap.Error(err))
					}
					continue
				}
			}

			caseID := caseIDForPath(cfg.DataDir, event.Name)
			if caseID == "" {
				continue
			}

			mu.Lock()
			if timer, exists := timers[caseID]; exists {
				timer.Stop()
			}
			timers[caseID] = time.AfterFunc(watchDebounce, func() {
				if err := ingestOne(ctx, cmd, caseID, false); err != nil {
					log.Warn("watched ingestion failed",
						zap.String("case_id", caseID), zap.Error(err))
				}
			})
			mu.Unlock()

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(watchErr, fsnotify.ErrEventOverflow) {
				log.Warn("watcher event overflow")
				continue
			}
			return fmt.Errorf("watcher: %w", watchErr)
		}
	}
}

// caseIDForPath extracts the case identifier from a path inside the
// data directory, or "" when the path is not inside a case.
func caseIDForPath(dataDir, path string) string {
	rel, err := filepath.Rel(dataDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return parts[0]
}
