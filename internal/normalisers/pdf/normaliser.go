// Package pdf classifies statement PDF pages and extracts their text.
package pdf

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// DefaultTextThreshold is the minimum number of runes of extractable
// text (after trimming) for a page to classify as text-bearing.
const DefaultTextThreshold = 16

// DefaultPageWorkers bounds concurrent page extraction per document.
const DefaultPageWorkers = 4

// Normaliser classifies PDF pages as text or image and extracts the
// text pages. Image pages get a placeholder record so ingestion
// coverage gaps stay visible.
type Normaliser struct {
	opener        driven.PageSourceOpener
	textThreshold int
	pageWorkers   int
}

// Option configures the normaliser.
type Option func(*Normaliser)

// WithTextThreshold sets the minimum rune count for a text page.
func WithTextThreshold(n int) Option {
	return func(p *Normaliser) {
		if n > 0 {
			p.textThreshold = n
		}
	}
}

// WithPageWorkers sets the number of concurrent page extractions.
func WithPageWorkers(n int) Option {
	return func(p *Normaliser) {
		if n > 0 {
			p.pageWorkers = n
		}
	}
}

// New creates a normaliser reading pages through the given opener.
func New(opener driven.PageSourceOpener, opts ...Option) *Normaliser {
	n := &Normaliser{
		opener:        opener,
		textThreshold: DefaultTextThreshold,
		pageWorkers:   DefaultPageWorkers,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// pageResult is one classified page before assembly, or a failure.
type pageResult struct {
	number int
	class  domain.PageClass
	text   string
	err    error
}

// Normalise classifies and extracts every page of the raw document.
// Pages are independent, so extraction runs page-parallel; page order
// is restored before the texts are concatenated.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: no pdf content", domain.ErrInvalidInput)
	}

	source, err := n.opener.Open(raw.Content)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	count := source.PageCount()
	if count == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", domain.ErrParse, raw.Name)
	}

	results := make([]pageResult, count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.pageWorkers)
	for i := 1; i <= count; i++ {
		g.Go(func() error {
			results[i-1] = n.classifyPage(gctx, source, i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(a, b int) bool { return results[a].number < results[b].number })

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		Name:      raw.Name,
		URI:       raw.URI,
		Language:  raw.Statement.Language,
		Statement: raw.Statement,
		PageCount: count,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", raw.Name)
	readable := 0
	for _, r := range results {
		if r.err != nil {
			logger.Warn("%s page %d unrecoverable: %v", raw.Name, r.number, r.err)
			continue
		}
		readable++
		doc.Pages = append(doc.Pages, domain.Page{
			DocumentID: doc.ID,
			Number:     r.number,
			Class:      r.class,
			Text:       r.text,
		})
		switch r.class {
		case domain.PageText:
			fmt.Fprintf(&b, "\n## Page %d\n\n%s\n", r.number, r.text)
		case domain.PageImage:
			// Placeholder keeps the coverage gap visible in the
			// extracted text without contributing noise to chunks.
			fmt.Fprintf(&b, "\n## Page %d\n\n[page %d: image-only, text not extracted]\n", r.number, r.number)
		}
	}

	if readable == 0 {
		return nil, fmt.Errorf("%w: %s: no readable pages", domain.ErrParse, raw.Name)
	}

	doc.Content = strings.TrimRight(b.String(), "\n")
	return doc, nil
}

// classifyPage extracts and classifies a single page. Classification is
// total: a readable page is exactly one of text or image.
func (n *Normaliser) classifyPage(ctx context.Context, source driven.PageSource, number int) pageResult {
	text, err := source.PageText(ctx, number)
	if err != nil {
		return pageResult{number: number, err: err}
	}

	cleaned := normaliseWhitespace(text)
	if len([]rune(strings.TrimSpace(cleaned))) >= n.textThreshold {
		return pageResult{number: number, class: domain.PageText, text: cleaned}
	}
	return pageResult{number: number, class: domain.PageImage}
}

var (
	blankLinesRe = regexp.MustCompile(`\n\s*\n(\s*\n)+`)
	trailingRe   = regexp.MustCompile(`[ \t]+\n`)
)

// normaliseWhitespace removes extraction artifacts: runs of blank lines
// collapse to one, trailing space is stripped, reading order preserved.
func normaliseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = trailingRe.ReplaceAllString(text, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
