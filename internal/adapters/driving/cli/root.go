// Package cli implements the casefind command-line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meridian-labs/casefind/internal/adapters/driven/caseloader/fs"
	casemetafs "github.com/meridian-labs/casefind/internal/adapters/driven/casemeta/fs"
	promptfile "github.com/meridian-labs/casefind/internal/adapters/driven/config/file"
	"github.com/meridian-labs/casefind/internal/adapters/driven/embedding/openai"
	"github.com/meridian-labs/casefind/internal/adapters/driven/llm/anthropic"
	manifestfile "github.com/meridian-labs/casefind/internal/adapters/driven/manifest/file"
	"github.com/meridian-labs/casefind/internal/adapters/driven/vectorstore/sqlite"
	"github.com/meridian-labs/casefind/internal/chunker"
	"github.com/meridian-labs/casefind/internal/config"
	"github.com/meridian-labs/casefind/internal/core/ports/driving"
	"github.com/meridian-labs/casefind/internal/core/services"
)

// Shared command state, wired lazily by ensureEngine. Tests replace
// engine directly.
var (
	version = "dev"

	cfg      *config.Config
	log      *zap.Logger
	engine   driving.Engine
	caseMeta *casemetafs.Store
)

var rootCmd = &cobra.Command{
	Use:   "casefind",
	Short: "Semantic retrieval over forensic psychiatric case files",
	Long: `Casefind ingests case documents into a vector store and answers
natural-language questions over them, with citations back to the
source files. It also ranks whole cases against a free-text
description of a new matter.`,
	SilenceUsage: true,
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	version = v
	defer teardown()
	return rootCmd.Execute()
}

// ensureEngine wires the adapters and initializes the engine. A no-op
// when an engine is already configured.
func ensureEngine(ctx context.Context) error {
	if engine != nil {
		return nil
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err = newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	store, err := sqlite.NewStore(cfg.VectorDBDir)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}

	embedder, err := openai.NewEmbeddingService(openai.Config{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.EmbeddingModel,
		RateLimit: cfg.EmbedRateRPS,
	})
	if err != nil {
		return fmt.Errorf("build embedding service: %w", err)
	}

	completer, err := anthropic.NewCompletionService(anthropic.Config{
		APIKey:      cfg.AnthropicAPIKey,
		Model:       cfg.AnthropicModel,
		Temperature: &cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})
	if err != nil {
		return fmt.Errorf("build completion service: %w", err)
	}

	prompts, err := promptfile.NewPromptStore(cfg.PromptDir)
	if err != nil {
		return fmt.Errorf("build prompt store: %w", err)
	}
	completer.SetPromptStore(prompts)

	splitter := chunker.New(
		chunker.WithChunkSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)
	caseMeta = casemetafs.NewStore(cfg.DataDir)

	engine = services.NewEngine(
		store,
		embedder,
		completer,
		manifestfile.New(cfg.DataDir, log),
		fs.NewLoader(splitter),
		caseMeta,
		services.WithTopK(cfg.TopKRetrieve),
		services.WithLogger(log),
	)

	if err := engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	return nil
}

func teardown() {
	if engine != nil {
		if err := engine.Shutdown(); err != nil && log != nil {
			log.Warn("engine shutdown", zap.Error(err))
		}
	}
	if log != nil {
		_ = log.Sync()
	}
}

// newLogger builds a production zap logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}
