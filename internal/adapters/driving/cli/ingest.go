package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
)

var (
	ingestLanguage string
	ingestWatch    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [pdf...]",
	Short: "Ingest statements into the index",
	Long: `Runs the ingestion pipeline: download, classify pages, extract
text, chunk, embed and index.

With no arguments, every statement the configured source offers is
ingested. With paths, only the given local PDF files are. With --watch
the command then keeps running and ingests PDFs as they appear in the
source directory.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "en", "language tag for local PDF arguments")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and ingest newly appearing statements")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	var (
		report *driving.IngestReport
		err    error
	)
	if len(args) == 0 {
		report, err = ingestService.IngestAll(ctx)
	} else {
		report = &driving.IngestReport{}
		for _, path := range args {
			abs, absErr := filepath.Abs(path)
			if absErr != nil {
				return fmt.Errorf("resolving %s: %w", path, absErr)
			}
			ref := driven.StatementRef{
				URL:       abs,
				Statement: domain.ParseStatementURL(abs, ingestLanguage),
			}

			var one *driving.IngestReport
			one, err = ingestService.Ingest(ctx, ref)
			if one != nil {
				mergeReport(report, one)
			}
			if err != nil {
				break
			}
		}
	}

	if report != nil {
		printReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("ingestion aborted: %w", err)
	}
	if report != nil && len(report.Errors) > 0 {
		return fmt.Errorf("%d statements failed", len(report.Errors))
	}

	if ingestWatch {
		return watchIngest(ctx, cmd)
	}
	return nil
}

// watchIngest blocks and ingests each statement the source pushes.
func watchIngest(ctx context.Context, cmd *cobra.Command) error {
	watcher, ok := statementSource.(driven.Watcher)
	if !ok {
		return errors.New("the configured source does not support watching")
	}

	events, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("starting watch: %w", err)
	}

	cmd.Println("Watching for new statements. Ctrl-C to stop.")
	for ev := range events {
		cmd.Printf("New statement: %s\n", ev.Ref.Name())
		report, err := ingestService.Ingest(ctx, ev.Ref)
		if err != nil {
			return fmt.Errorf("ingestion aborted: %w", err)
		}
		printReport(cmd, report)
	}
	return nil
}

func mergeReport(dst, src *driving.IngestReport) {
	dst.Documents += src.Documents
	dst.Skipped += src.Skipped
	dst.TextPages += src.TextPages
	dst.ImagePages += src.ImagePages
	dst.FailedPages += src.FailedPages
	dst.Chunks += src.Chunks
	dst.Errors = append(dst.Errors, src.Errors...)
}

func printReport(cmd *cobra.Command, report *driving.IngestReport) {
	cmd.Printf("Documents ingested: %d\n", report.Documents)
	cmd.Printf("Skipped (already present): %d\n", report.Skipped)
	cmd.Printf("Pages: %d text, %d image, %d failed\n",
		report.TextPages, report.ImagePages, report.FailedPages)
	cmd.Printf("Chunks indexed: %d\n", report.Chunks)

	if len(report.Errors) > 0 {
		cmd.Println()
		cmd.Printf("Failures (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			cmd.Printf("  %v\n", e)
		}
	}
}
