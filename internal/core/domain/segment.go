package domain

import "fmt"

// BBox is the bounding box of a segment on its page, in PDF user space.
type BBox struct {
	X0, Y0, X1, Y1 float64
}

// TextSegment is one span of source text produced by an extractor.
// Segments for one document are ordered and non-overlapping.
type TextSegment struct {
	// Text is the extracted text.
	Text string

	// PageNumber is the 1-based page the text came from.
	PageNumber int

	// StartOffset is the offset of the first byte of Text in the document.
	StartOffset int

	// EndOffset is one past the last byte of Text.
	EndOffset int

	// BBox is the optional layout position of the segment.
	BBox *BBox
}

// Len returns the length of the segment text in bytes.
func (s TextSegment) Len() int {
	return len(s.Text)
}

// Validate checks that the offsets describe the text exactly.
func (s TextSegment) Validate() error {
	if s.StartOffset < 0 || s.EndOffset-s.StartOffset != len(s.Text) {
		return fmt.Errorf("%w: segment offsets %d-%d do not match text length %d",
			ErrInvalidInput, s.StartOffset, s.EndOffset, len(s.Text))
	}
	return nil
}

// ValidateSegments checks each segment and that segments are ordered
// and non-overlapping.
func ValidateSegments(segments []TextSegment) error {
	prevEnd := 0
	for i, seg := range segments {
		if err := seg.Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if seg.StartOffset < prevEnd {
			return fmt.Errorf("%w: segment %d starts at %d before previous end %d",
				ErrInvalidInput, i, seg.StartOffset, prevEnd)
		}
		prevEnd = seg.EndOffset
	}
	return nil
}

// BlockSegments lays blocks end to end on page 1, appending separator to
// every block but the last. It is used for formats without pages.
func BlockSegments(blocks []string, separator string) []TextSegment {
	segments := make([]TextSegment, 0, len(blocks))
	offset := 0
	for i, b := range blocks {
		if i < len(blocks)-1 {
			b += separator
		}
		segments = append(segments, TextSegment{
			Text:        b,
			PageNumber:  1,
			StartOffset: offset,
			EndOffset:   offset + len(b),
		})
		offset += len(b)
	}
	return segments
}
