package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/casefind/internal/core/domain"
)

var (
	casesJSON bool
	casesTopN int
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List all known cases",
	RunE:  runCases,
}

var casesSearchCmd = &cobra.Command{
	Use:   "search [description]",
	Short: "Rank cases against a free-text description",
	Long: `Ranks distinct cases by semantic similarity to the description.
Each case scores by its single best-matching fragment, on a 0-100
scale.`,
	Args: cobra.ExactArgs(1),
	RunE: runCasesSearch,
}

func init() {
	casesCmd.Flags().BoolVar(&casesJSON, "json", false, "output as JSON")
	casesSearchCmd.Flags().IntVarP(&casesTopN, "top", "n", 5, "number of cases to return")
	casesSearchCmd.Flags().BoolVar(&casesJSON, "json", false, "output as JSON")
	casesCmd.AddCommand(casesSearchCmd)
	rootCmd.AddCommand(casesCmd)
}

func runCases(cmd *cobra.Command, _ []string) error {
	if err := ensureEngine(cmd.Context()); err != nil {
		return err
	}

	cases, err := engine.ListCases(cmd.Context())
	if err != nil {
		return fmt.Errorf("list cases: %w", err)
	}

	if casesJSON {
		data, err := json.MarshalIndent(cases, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal cases: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(cases) == 0 {
		cmd.Println("No cases found.")
		return nil
	}

	for _, c := range cases {
		cmd.Printf("  %s  %s (%s, %d documents)\n", c.ID, c.Title, c.Date, c.DocumentCount)
	}
	return nil
}

func runCasesSearch(cmd *cobra.Command, args []string) error {
	if err := ensureEngine(cmd.Context()); err != nil {
		return err
	}

	matches, err := engine.RankCases(cmd.Context(), args[0], casesTopN)
	if err != nil {
		return fmt.Errorf("case search failed: %w", err)
	}

	if casesJSON {
		data, err := json.MarshalIndent(matches, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal matches: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	return outputMatches(cmd, matches)
}

func outputMatches(cmd *cobra.Command, matches []domain.CaseMatch) error {
	if len(matches) == 0 {
		cmd.Println("No matching cases found.")
		return nil
	}

	for i, match := range matches {
		cmd.Printf("  [%d] %s - %s (%.1f)\n", i+1, match.CaseID, match.Title, match.Score)
		if match.Summary != "" {
			cmd.Printf("      %s\n", domain.Truncate(match.Summary, 120, "..."))
		}
		for _, finding := range match.KeyFindings {
			cmd.Printf("      - %s\n", finding)
		}
		cmd.Println()
	}
	return nil
}
