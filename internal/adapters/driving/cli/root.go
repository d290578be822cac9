// Package cli implements the finsight command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/ports/driving"
	"github.com/finsight-labs/finsight/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by main before Execute. Commands check for nil so
// tests can run a partial wiring.
var (
	ingestService    driving.Ingestor
	answerService    driving.Answerer
	statementSource  driven.StatementSource
	docStore         driven.DocumentStore
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Ask questions about bank financial statements",
	Long: `finsight ingests published bank financial statement PDFs, indexes
them in a vector store, and answers questions about them with a local
LLM grounded in the retrieved passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Deps carries the wired services from main.
type Deps struct {
	Ingestor driving.Ingestor
	Answerer driving.Answerer
	Source   driven.StatementSource
	DocStore driven.DocumentStore
	Index    driven.VectorIndex
	Embedder driven.EmbeddingService
	LLM      driven.LLMService
	Version  string
}

// Configure injects the wired services.
func Configure(deps Deps) {
	ingestService = deps.Ingestor
	answerService = deps.Answerer
	statementSource = deps.Source
	docStore = deps.DocStore
	vectorIndex = deps.Index
	embeddingService = deps.Embedder
	llmService = deps.LLM
	if deps.Version != "" {
		version = deps.Version
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
