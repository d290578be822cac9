package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and service health",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if docStore == nil || vectorIndex == nil {
		return errors.New("storage not configured")
	}

	ctx := context.Background()

	docs, err := docStore.ListDocuments(ctx)
	if err != nil {
		return err
	}
	cmd.Printf("Documents: %d\n", len(docs))

	if count, err := vectorIndex.Count(ctx); err != nil {
		cmd.Printf("Vector index: unreachable (%v)\n", err)
	} else {
		cmd.Printf("Vector index: %d records\n", count)
	}

	if embeddingService != nil {
		if err := embeddingService.Ping(ctx); err != nil {
			cmd.Printf("Embedding model (%s): unreachable\n", embeddingService.ModelName())
		} else {
			cmd.Printf("Embedding model (%s): ok\n", embeddingService.ModelName())
		}
	}
	if llmService != nil {
		if err := llmService.Ping(ctx); err != nil {
			cmd.Printf("Chat model (%s): unreachable\n", llmService.ModelName())
		} else {
			cmd.Printf("Chat model (%s): ok\n", llmService.ModelName())
		}
	}

	return nil
}
