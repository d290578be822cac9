package driven

import (
	"context"
	"time"

	"github.com/finsight-labs/finsight/internal/core/domain"
)

// StatementRef points at one downloadable statement before its bytes
// have been fetched.
type StatementRef struct {
	// URL is the download location (http(s) URL or local path).
	URL string

	// Statement is the metadata parsed from the link.
	Statement domain.StatementInfo
}

// Name returns the stable document name for the referenced statement.
func (r StatementRef) Name() string {
	return r.Statement.Name()
}

// StatementSource lists and downloads statement PDFs. Implementations
// include the investor-relations web scraper and a local directory.
type StatementSource interface {
	// Type returns the source type identifier ("web", "filesystem").
	Type() string

	// List discovers available statements, deduplicated by URL.
	List(ctx context.Context) ([]StatementRef, error)

	// Download fetches the raw PDF bytes for one statement.
	Download(ctx context.Context, ref StatementRef) (*domain.RawDocument, error)

	// Close releases resources.
	Close() error
}

// WatchEvent signals a statement that appeared after the initial listing.
type WatchEvent struct {
	Ref StatementRef

	// At is when the statement was observed.
	At time.Time
}

// Watcher is implemented by sources that can push newly appeared
// statements, such as the filesystem source watching a download
// directory. The channel closes when ctx is cancelled.
type Watcher interface {
	Watch(ctx context.Context) (<-chan WatchEvent, error)
}
