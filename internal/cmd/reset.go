package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the stored fetch count and response code",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	if err := store.Reset(); err != nil {
		return fmt.Errorf("failed to reset %s: %w", store.Path(), err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", store.Path())
	return nil
}
