package driven

import "context"

// PageSource is a narrow interface over a PDF library. It exposes only
// the per-page operations the pipeline needs, so the underlying library
// can be replaced without touching classification or extraction logic.
type PageSource interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageText extracts the plain text of the 1-based page number.
	// A malformed page returns an error; remaining pages stay readable.
	PageText(ctx context.Context, number int) (string, error)

	// Close releases the underlying reader.
	Close() error
}

// PageSourceOpener opens a PageSource from raw PDF bytes.
type PageSourceOpener interface {
	// Open parses the document. Malformed documents return an error
	// wrapping domain.ErrParse.
	Open(content []byte) (PageSource, error)
}
