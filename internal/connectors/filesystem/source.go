// Package filesystem provides a statement source over a local
// directory of PDFs, with optional watching for new arrivals.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/finsight-labs/finsight/internal/core/domain"
	"github.com/finsight-labs/finsight/internal/core/ports/driven"
	"github.com/finsight-labs/finsight/internal/logger"
)

// Ensure Source implements both interfaces.
var (
	_ driven.StatementSource = (*Source)(nil)
	_ driven.Watcher         = (*Source)(nil)
)

// Config holds configuration for the filesystem source.
type Config struct {
	// Dir is the directory holding statement PDFs.
	Dir string

	// Language is the language tag assumed for files in this
	// directory (default: "en").
	Language string
}

// Source lists and reads statement PDFs from a local directory.
type Source struct {
	dir      string
	language string
}

// NewSource creates a new filesystem statement source.
func NewSource(cfg Config) (*Source, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: directory is required", domain.ErrInvalidInput)
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}

	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %v", domain.ErrFetch, cfg.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, cfg.Dir)
	}

	return &Source{
		dir:      cfg.Dir,
		language: cfg.Language,
	}, nil
}

// Type returns the source type identifier.
func (s *Source) Type() string {
	return "filesystem"
}

// List returns the PDF files in the directory, sorted by name.
func (s *Source) List(_ context.Context) ([]driven.StatementRef, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrFetch, s.dir, err)
	}

	var refs []driven.StatementRef
	for _, entry := range entries {
		if entry.IsDir() || !isPDF(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		refs = append(refs, driven.StatementRef{
			URL:       path,
			Statement: domain.ParseStatementURL(path, s.language),
		})
	}

	sort.Slice(refs, func(a, b int) bool { return refs[a].URL < refs[b].URL })
	return refs, nil
}

// Download reads the PDF bytes from disk.
func (s *Source) Download(ctx context.Context, ref driven.StatementRef) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(ref.URL)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref.URL)
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrFetch, ref.URL, err)
	}

	return &domain.RawDocument{
		Name:      ref.Name(),
		URI:       ref.URL,
		Statement: ref.Statement,
		Content:   content,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// Watch emits a WatchEvent whenever a new PDF lands in the directory.
// The returned channel closes when ctx is cancelled.
func (s *Source) Watch(ctx context.Context) (<-chan driven.WatchEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", s.dir, err)
	}

	events := make(chan driven.WatchEvent)

	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Create covers both fresh files and atomic renames
				// into the directory.
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if !isPDF(ev.Name) {
					continue
				}

				wev := driven.WatchEvent{
					Ref: driven.StatementRef{
						URL:       ev.Name,
						Statement: domain.ParseStatementURL(ev.Name, s.language),
					},
					At: time.Now().UTC(),
				}
				select {
				case events <- wev:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watcher error on %s: %v", s.dir, err)
			}
		}
	}()

	return events, nil
}

// Close releases resources.
func (s *Source) Close() error {
	return nil
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
