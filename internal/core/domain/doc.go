// Package domain contains the core types of the statement pipeline:
// documents, pages, chunks and the error taxonomy. It has no dependencies
// on adapters or external services.
package domain
