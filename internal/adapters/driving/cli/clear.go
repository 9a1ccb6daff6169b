package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	clearCaseID string
	clearAll    bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear ingested data",
	Long: `With --all, removes every stored fragment and the ingestion
manifest. With --case, removes only that case's manifest entries so
its files can be re-ingested; stored fragments are untouched.`,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().StringVar(&clearCaseID, "case", "", "clear one case's manifest entries")
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "clear the whole store and manifest")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	if clearAll == (clearCaseID != "") {
		return errors.New("specify exactly one of --all or --case")
	}

	if err := ensureEngine(cmd.Context()); err != nil {
		return err
	}

	if clearAll {
		if err := engine.ClearAll(cmd.Context()); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
		cmd.Println("Cleared vector store and manifest.")
		return nil
	}

	removed, err := engine.ClearCase(cmd.Context(), clearCaseID)
	if err != nil {
		return fmt.Errorf("clear case: %w", err)
	}
	cmd.Printf("Removed %d manifest entries for %s.\n", removed, clearCaseID)
	return nil
}
