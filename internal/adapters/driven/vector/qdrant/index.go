// Package qdrant provides a VectorIndex adapter backed by Qdrant's
// REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:6333"
	DefaultCollection = "statements"
	DefaultTimeout    = 30 * time.Second
)

// Config holds configuration for the Qdrant index.
type Config struct {
	// BaseURL is the Qdrant REST endpoint (default: http://localhost:6333).
	BaseURL string

	// APIKey is sent as the api-key header when set.
	APIKey string

	// Collection is the collection name (default: statements).
	Collection string

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration
}

// Index is a minimal REST client to Qdrant using cosine distance.
type Index struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string
	dimension  int
}

// NewIndex creates a new Qdrant-backed vector index.
func NewIndex(cfg Config) *Index {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Index{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
	}
}

type collectionInfoResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
		PointsCount int `json:"points_count"`
	} `json:"result"`
}

// EnsureCollection creates the collection if missing. When the
// collection already exists its vector size must match the requested
// dimension.
func (i *Index) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}

	var info collectionInfoResponse
	status, err := i.doJSON(ctx, http.MethodGet, i.collectionURL(""), nil, &info)
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusOK:
		existing := info.Result.Config.Params.Vectors.Size
		if existing != 0 && existing != dimension {
			return fmt.Errorf("%w: collection %s holds %d-dimensional vectors, requested %d",
				domain.ErrDimensionMismatch, i.collection, existing, dimension)
		}
	case status == http.StatusNotFound:
		body := map[string]any{
			"vectors": map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		}
		if status, err := i.doJSON(ctx, http.MethodPut, i.collectionURL(""), body, nil); err != nil {
			return err
		} else if status >= 300 {
			return fmt.Errorf("%w: create collection %s: status %d", domain.ErrIndexUnavailable, i.collection, status)
		}
	default:
		return fmt.Errorf("%w: inspect collection %s: status %d", domain.ErrIndexUnavailable, i.collection, status)
	}

	i.dimension = dimension
	return nil
}

// Upsert stores chunks with their embeddings, waiting for the write to
// be applied so a following Search sees them.
func (i *Index) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]map[string]any, len(chunks))
	for n, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		points[n] = map[string]any{
			"id":     c.ID,
			"vector": c.Embedding,
			"payload": map[string]any{
				"document_id": c.DocumentID,
				"document":    c.DocumentName,
				"language":    c.Language,
				"page":        c.Page,
				"position":    c.Position,
				"text":        c.Content,
			},
		}
	}

	body := map[string]any{"points": points}
	status, err := i.doJSON(ctx, http.MethodPut, i.collectionURL("/points?wait=true"), body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("%w: upsert %d points: status %d", domain.ErrIndexUnavailable, len(points), status)
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search returns up to k chunks ordered by descending cosine
// similarity. Qdrant orders results itself; an empty collection
// returns an empty slice.
func (i *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	body := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}

	var resp searchResponse
	status, err := i.doJSON(ctx, http.MethodPost, i.collectionURL("/points/search"), body, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: search: status %d", domain.ErrIndexUnavailable, status)
	}

	results := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.Chunk{
			ID: fmt.Sprintf("%v", r.ID),
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			chunk.DocumentID = v
		}
		if v, ok := r.Payload["document"].(string); ok {
			chunk.DocumentName = v
		}
		if v, ok := r.Payload["language"].(string); ok {
			chunk.Language = v
		}
		if v, ok := r.Payload["page"].(float64); ok {
			chunk.Page = int(v)
		}
		if v, ok := r.Payload["position"].(float64); ok {
			chunk.Position = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Content = v
		}
		results = append(results, domain.RetrievedChunk{Chunk: chunk, Score: r.Score})
	}
	return results, nil
}

// Count returns the number of stored points.
func (i *Index) Count(ctx context.Context) (int, error) {
	body := map[string]any{"exact": true}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	status, err := i.doJSON(ctx, http.MethodPost, i.collectionURL("/points/count"), body, &resp)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status >= 300 {
		return 0, fmt.Errorf("%w: count: status %d", domain.ErrIndexUnavailable, status)
	}
	return resp.Result.Count, nil
}

// Ping validates the Qdrant server is reachable.
func (i *Index) Ping(ctx context.Context) error {
	status, err := i.doJSON(ctx, http.MethodGet, i.baseURL+"/collections", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: qdrant returned status %d", domain.ErrIndexUnavailable, status)
	}
	return nil
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

func (i *Index) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", i.baseURL, i.collection, suffix)
}

// doJSON performs a request with a JSON body and decodes a JSON
// response into out when provided. Transport failures wrap
// domain.ErrIndexUnavailable; HTTP status handling is the caller's.
func (i *Index) doJSON(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if i.apiKey != "" {
		req.Header.Set("api-key", i.apiKey)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %v", domain.ErrIndexUnavailable, method, url, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: decode response: %v", domain.ErrIndexUnavailable, err)
		}
	}
	return resp.StatusCode, nil
}
