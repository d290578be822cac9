// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): the PDF reader, embedding and LLM services,
// the vector index, the statement sources and the local document store.
package driven
