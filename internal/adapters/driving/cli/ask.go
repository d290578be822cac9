package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
)

var (
	askTopK     int
	askNoStream bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested statements",
	Long: `Retrieves the most relevant statement passages and answers the
question with the local LLM, streaming tokens as they are produced.
The sources used are listed after the answer.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "wait for the full answer instead of streaming")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	ctx := context.Background()
	opts := driving.AskOptions{TopK: askTopK}

	if askNoStream {
		answer, err := answerService.Ask(ctx, args[0], opts)
		if err != nil {
			return err
		}
		cmd.Println(answer.Text)
		printSources(cmd, answer.Sources)
		return nil
	}

	stream, err := answerService.AskStream(ctx, args[0], opts)
	if err != nil {
		return err
	}

	for tok := range stream.Tokens {
		cmd.Print(tok)
	}
	cmd.Println()

	if streamErr := <-stream.Errs; streamErr != nil {
		return fmt.Errorf("answer interrupted: %w", streamErr)
	}

	printSources(cmd, stream.Sources)
	return nil
}

func printSources(cmd *cobra.Command, sources []domain.RetrievedChunk) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, s := range sources {
		cmd.Printf("  %s (page %d, score %.2f)\n", s.Chunk.DocumentName, s.Chunk.Page, s.Score)
	}
}
