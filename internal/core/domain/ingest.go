package domain

import "time"

// IngestStatus is the outcome of ingesting one file.
type IngestStatus string

// Ingestion outcomes.
const (
	IngestSuccess IngestStatus = "success"
	IngestSkipped IngestStatus = "skipped"
	IngestFailed  IngestStatus = "failed"
)

// Ingestion failure and skip reasons.
const (
	ReasonAlreadyExists   = "already_exists"
	ReasonNoTextExtracted = "no_text_extracted"
)

// ValidationGapTolerance is the largest distance allowed between the end
// of one stored chunk and the start of the next before validation
// reports a gap.
const ValidationGapTolerance = 100

// IngestResult summarises the ingestion of a single file.
type IngestResult struct {
	DocumentID string
	Title      string
	Path       string
	Status     IngestStatus

	// Reason explains a skipped or failed ingestion.
	Reason string

	// Segments is the number of extracted text segments.
	Segments int

	// Chunks is the number of chunks stored.
	Chunks int

	// Characters is the total stored chunk text length.
	Characters int

	// ChunkIDs are the store-assigned chunk identifiers.
	ChunkIDs []int64

	IngestedAt time.Time
}

// ValidationReport is the result of checking an ingested document.
type ValidationReport struct {
	DocumentID       string
	Valid            bool
	ChunkCount       int
	Issues           []string
	SearchFunctional bool
	CheckedAt        time.Time
}
