package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/finsight-labs/finsight/internal/adapters/driven/config/file"
	ollamaembed "github.com/finsight-labs/finsight/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/finsight-labs/finsight/internal/adapters/driven/llm/ollama"
	"github.com/finsight-labs/finsight/internal/adapters/driven/pdfpage"
	"github.com/finsight-labs/finsight/internal/adapters/driven/storage/sqlite"
	"github.com/finsight-labs/finsight/internal/adapters/driven/vector/qdrant"
	"github.com/finsight-labs/finsight/internal/adapters/driving/cli"
	"github.com/finsight-labs/finsight/internal/connectors/filesystem"
	"github.com/finsight-labs/finsight/internal/connectors/web"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/core/services"
	pdfnorm "github.com/finsight-labs/finsight/internal/normalisers/pdf"
	"github.com/finsight-labs/finsight/internal/postprocessors"
	"github.com/finsight-labs/finsight/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

// Listing pages used when the config file names no source.
const (
	defaultPageEN = "https://www.cibeg.com/en/investor-relations/ir-library/financial-statements"
	defaultPageAR = "https://www.cibeg.com/ar/investor-relations/ir-library/financial-statements"
)

func main() {
	// .env is optional and only used for local development.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore(os.Getenv("FINSIGHT_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	settings := file.LoadSettings(configStore)

	docStore, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	defer docStore.Close()

	source, err := buildSource(settings)
	if err != nil {
		return err
	}
	defer source.Close()

	embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.Ollama.BaseURL,
		Model:      settings.Ollama.EmbedModel,
		Dimensions: settings.Ollama.Dimensions,
	})
	defer embedder.Close()

	llm := ollamallm.NewLLMService(ollamallm.Config{
		BaseURL: settings.Ollama.BaseURL,
		Model:   settings.Ollama.ChatModel,
	})
	defer llm.Close()

	apiKey := settings.Qdrant.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("QDRANT_API_KEY")
	}
	index := qdrant.NewIndex(qdrant.Config{
		BaseURL:    settings.Qdrant.URL,
		APIKey:     apiKey,
		Collection: settings.Qdrant.Collection,
	})
	defer index.Close()

	normaliser := pdfnorm.New(pdfpage.NewOpener())
	pipeline := postprocessors.NewPipeline(chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	))

	ingestor := services.NewIngestService(source, normaliser, pipeline, embedder, index, docStore)
	answerer := services.NewAnswerService(embedder, index, llm,
		services.WithTopK(settings.Retrieval.TopK))

	cli.Configure(cli.Deps{
		Ingestor: ingestor,
		Answerer: answerer,
		Source:   source,
		DocStore: docStore,
		Index:    index,
		Embedder: embedder,
		LLM:      llm,
		Version:  version,
	})

	return cli.Execute()
}

// buildSource picks the statement source: a local directory when the
// config names one, otherwise the bank listing pages.
func buildSource(settings file.Settings) (driven.StatementSource, error) {
	if settings.Source.Dir != "" {
		src, err := filesystem.NewSource(filesystem.Config{Dir: settings.Source.Dir})
		if err != nil {
			return nil, fmt.Errorf("opening statement directory: %w", err)
		}
		return src, nil
	}

	pageURLs := settings.Source.PageURLs
	if len(pageURLs) == 0 {
		pageURLs = map[string]string{
			"en": defaultPageEN,
			"ar": defaultPageAR,
		}
	}

	return web.NewSource(web.Config{PageURLs: pageURLs}), nil
}
