// Package web discovers and downloads statement PDFs from a bank's
// investor-relations pages.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.StatementSource = (*Source)(nil)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRequestsPer = 2 // requests per second against the bank site
	DefaultUserAgent   = "finsight/1.0"

	// MaxPDFSize bounds a single statement download.
	MaxPDFSize = 100 << 20 // 100 MiB
)

// hrefRe pulls anchor targets out of a listing page. Statement pages
// are static server-rendered HTML, so a full DOM parse is not needed.
var hrefRe = regexp.MustCompile(`href\s*=\s*["']([^"']+\.pdf)["']`)

// Config holds configuration for the web source.
type Config struct {
	// PageURLs maps a language tag ("en", "ar") to the listing page
	// holding that language's statement links.
	PageURLs map[string]string

	// UserAgent is sent on every request.
	UserAgent string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries bounds download retry attempts.
	MaxRetries int

	// RequestsPerSecond throttles requests against the bank site.
	RequestsPerSecond float64
}

// Source scrapes statement listing pages and downloads the PDFs they
// link to.
type Source struct {
	client     *http.Client
	pageURLs   map[string]string
	userAgent  string
	maxRetries int
	limiter    *rate.Limiter
}

// NewSource creates a new web statement source.
func NewSource(cfg Config) *Source {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPer
	}

	return &Source{
		client:     &http.Client{Timeout: cfg.Timeout},
		pageURLs:   cfg.PageURLs,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return "web"
}

// List scrapes every configured listing page and returns the PDF links
// found, deduplicated by URL. Languages are visited in sorted order so
// repeated runs list statements in the same order.
func (s *Source) List(ctx context.Context) ([]driven.StatementRef, error) {
	languages := make([]string, 0, len(s.pageURLs))
	for lang := range s.pageURLs {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	seen := make(map[string]bool)
	var refs []driven.StatementRef

	for _, lang := range languages {
		pageURL := s.pageURLs[lang]

		links, err := s.scrapePDFLinks(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("listing %s statements: %w", lang, err)
		}
		logger.Debug("found %d PDF links on %s", len(links), pageURL)

		for _, link := range links {
			if seen[link] {
				continue
			}
			seen[link] = true

			refs = append(refs, driven.StatementRef{
				URL:       link,
				Statement: domain.ParseStatementURL(link, lang),
			})
		}
	}

	return refs, nil
}

// scrapePDFLinks fetches one listing page and extracts absolute PDF
// URLs from it.
func (s *Source) scrapePDFLinks(ctx context.Context, pageURL string) ([]string, error) {
	body, err := s.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse page URL %s: %v", domain.ErrFetch, pageURL, err)
	}

	matches := hrefRe.FindAllStringSubmatch(string(body), -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		href, err := url.Parse(strings.TrimSpace(m[1]))
		if err != nil {
			logger.Warn("skipping unparseable link %q: %v", m[1], err)
			continue
		}
		links = append(links, base.ResolveReference(href).String())
	}
	return links, nil
}

// Download fetches the raw PDF bytes for one statement, retrying
// transient failures with exponential backoff.
func (s *Source) Download(ctx context.Context, ref driven.StatementRef) (*domain.RawDocument, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			logger.Debug("retrying download of %s in %s (attempt %d/%d)", ref.URL, backoff, attempt, s.maxRetries)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, err := s.get(ctx, ref.URL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		return &domain.RawDocument{
			Name:      ref.Name(),
			URI:       ref.URL,
			Statement: ref.Statement,
			Content:   body,
			FetchedAt: time.Now().UTC(),
		}, nil
	}

	return nil, fmt.Errorf("downloading %s after %d attempts: %w", ref.URL, s.maxRetries+1, lastErr)
}

// get performs one rate-limited GET and reads the whole body.
func (s *Source) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request for %s: %v", domain.ErrFetch, rawURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", domain.ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: status %d", domain.ErrFetch, rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPDFSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrFetch, rawURL, err)
	}
	return body, nil
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}
