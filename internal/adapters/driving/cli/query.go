package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

var (
	queryCaseID string
	queryJSON   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question over the ingested documents",
	Long: `Retrieves the most relevant document fragments for the question and
generates a grounded answer with source citations. Use --case to
restrict retrieval to a single case.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryCaseID, "case", "", "restrict retrieval to one case")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureEngine(cmd.Context()); err != nil {
		return err
	}
	if engine == nil {
		return errors.New("engine not configured")
	}

	result, err := engine.Query(cmd.Context(), args[0], queryCaseID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, result)
	}
	return outputQueryText(cmd, result)
}

func outputQueryJSON(cmd *cobra.Command, result *domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, result *domain.QueryResult) error {
	cmd.Println(result.Answer)

	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s (%.3f)\n", i+1, src.DocID, src.Relevance)
			if src.Snippet != "" {
				cmd.Printf("      %s\n", src.Snippet)
			}
		}
	}

	cmd.Println()
	cmd.Printf("%d fragments retrieved in %dms\n", result.ChunksRetrieved, result.ProcessingTimeMS)
	return nil
}
