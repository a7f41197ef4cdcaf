package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored fetch count and response code",
	Long:  `Display the persisted record without contacting the server.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	rec, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", store.Path(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "State file: %s\n", store.Path())
	fmt.Fprintf(out, "ResponseCode: %s\n", rec.ResponseCode)
	fmt.Fprintf(out, "Times Fetched: %d\n", rec.FetchCount)
	return nil
}
