package file

// Settings is the typed view of the config file, read once at startup.
type Settings struct {
	DataDir string

	Source struct {
		// PageURLs maps a language tag to the listing page holding
		// statement PDF links for that language.
		PageURLs map[string]string

		// Dir is a local directory of statement PDFs, used instead of
		// the web source when set.
		Dir string
	}

	Ollama struct {
		BaseURL    string
		EmbedModel string
		ChatModel  string
		Dimensions int
	}

	Qdrant struct {
		URL        string
		APIKey     string
		Collection string
	}

	Chunking struct {
		Size    int
		Overlap int
	}

	Retrieval struct {
		TopK int
	}
}

// Default values applied when the config file leaves a key unset.
const (
	DefaultTopK         = 3
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// LoadSettings reads the typed settings out of a config store,
// filling defaults for anything unset.
func LoadSettings(store *ConfigStore) Settings {
	var s Settings

	s.DataDir = store.GetString("data_dir")

	s.Source.PageURLs = map[string]string{}
	if url := store.GetString("source.en_url"); url != "" {
		s.Source.PageURLs["en"] = url
	}
	if url := store.GetString("source.ar_url"); url != "" {
		s.Source.PageURLs["ar"] = url
	}
	s.Source.Dir = store.GetString("source.dir")

	s.Ollama.BaseURL = store.GetString("ollama.base_url")
	s.Ollama.EmbedModel = store.GetString("ollama.embed_model")
	s.Ollama.ChatModel = store.GetString("ollama.chat_model")
	s.Ollama.Dimensions = store.GetInt("ollama.dimensions")

	s.Qdrant.URL = store.GetString("qdrant.url")
	s.Qdrant.APIKey = store.GetString("qdrant.api_key")
	s.Qdrant.Collection = store.GetString("qdrant.collection")

	s.Chunking.Size = store.GetInt("chunking.size")
	if s.Chunking.Size <= 0 {
		s.Chunking.Size = DefaultChunkSize
	}
	s.Chunking.Overlap = store.GetInt("chunking.overlap")
	if s.Chunking.Overlap <= 0 {
		s.Chunking.Overlap = DefaultChunkOverlap
	}

	s.Retrieval.TopK = store.GetInt("retrieval.top_k")
	if s.Retrieval.TopK <= 0 {
		s.Retrieval.TopK = DefaultTopK
	}

	return s
}
