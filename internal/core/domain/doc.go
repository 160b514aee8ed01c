// Package domain holds the corpus data model and its invariants.
//
// A RawDocument is read from disk, normalised into an ExtractedDocument
// made of page-scoped TextSegments, and cut into Chunks that address the
// extracted text by byte offset. Once stored, a chunk becomes a
// StoredChunk with a numeric ID, and full-text queries return
// SearchResults that point back at stored chunks.
//
// Settings types (AppSettings and its sections) and the sentinel errors
// shared by every layer live here too. The package depends on the
// standard library only.
package domain
