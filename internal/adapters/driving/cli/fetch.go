package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "List the statements the configured source offers",
	Long: `Scrapes the configured statement source and lists every PDF it
links to, with the period metadata parsed from each link and whether
the statement has already been ingested.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	if statementSource == nil {
		return errors.New("statement source not configured")
	}

	ctx := context.Background()
	refs, err := statementSource.List(ctx)
	if err != nil {
		return fmt.Errorf("listing statements: %w", err)
	}

	if len(refs) == 0 {
		cmd.Println("No statements found.")
		return nil
	}

	newCount := 0
	for _, ref := range refs {
		status := "new"
		if docStore != nil {
			if _, err := docStore.GetDocumentByName(ctx, ref.Name()); err == nil {
				status = "ingested"
			} else if !errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("checking %s: %w", ref.Name(), err)
			}
		}
		if status == "new" {
			newCount++
		}
		cmd.Printf("  %-40s %-9s %s\n", ref.Name(), status, ref.URL)
	}

	cmd.Println()
	cmd.Printf("%d statements, %d new\n", len(refs), newCount)
	return nil
}
