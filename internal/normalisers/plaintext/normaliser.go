package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageSeparator marks a page break in plain text files.
const PageSeparator = "\f"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

// Normalise splits the text into one segment per page. Pages are
// separated by form feeds; each separator stays at the end of the
// page it closes so the segments cover every byte of the input.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text := strings.ToValidUTF8(string(raw.Content), "\uFFFD")
	result := &driven.NormaliseResult{Title: titleFromMetadata(raw)}
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	offset := 0
	for i, page := range strings.SplitAfter(text, PageSeparator) {
		if page == "" {
			continue
		}
		result.Segments = append(result.Segments, domain.TextSegment{
			Text:        page,
			PageNumber:  i + 1,
			StartOffset: offset,
			EndOffset:   offset + len(page),
		})
		offset += len(page)
	}

	return result, nil
}

// titleFromMetadata returns a caller-supplied title, if any.
func titleFromMetadata(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}
