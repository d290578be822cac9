// Package driving provides the interfaces the CLI and chat surfaces call
// into (primary/inbound ports): batch ingestion and question answering.
package driving
