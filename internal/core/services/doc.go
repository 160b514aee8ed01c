// Package services holds the corpus use cases. Each service depends only
// on driven ports and is wired to concrete adapters in cmd/corpus.
//
// An ingest reads a file through the Connector, extracts segments with
// the normaliser registry, chunks them with the post-processor pipeline
// and writes document and chunks to the CorpusStore.
package services
