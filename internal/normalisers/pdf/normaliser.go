// Package pdf extracts page text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the content type handled by this normaliser.
const MIMEType = "application/pdf"

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Normalise extracts one segment per page that has text. Each segment
// ends with a newline and starts where the previous one ended.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	title, pages, err := extract(ctx, raw.Content)
	if err != nil {
		return nil, err
	}

	if t, ok := raw.Metadata["title"].(string); ok && strings.TrimSpace(t) != "" {
		title = t
	}

	logger.Debug("pdf: %s has %d pages", raw.URI, len(pages))
	return &driven.NormaliseResult{
		Title:    strings.TrimSpace(title),
		Segments: pageSegments(pages),
	}, nil
}

// extract reads the document title and the plain text of every page.
// Pages without a content stream yield an empty string so that page
// numbers stay aligned with the document.
func extract(ctx context.Context, content []byte) (title string, pages []string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: reading pdf: %v", domain.ErrInvalidInput, r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", nil, fmt.Errorf("%w: reading pdf: %w", domain.ErrInvalidInput, err)
	}

	if info := reader.Trailer().Key("Info"); !info.IsNull() {
		title = info.Key("Title").Text()
	}

	numPages := reader.NumPage()
	pages = make([]string, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf: skipping page %d: %v", i, err)
			continue
		}
		pages[i-1] = strings.ToValidUTF8(text, "\uFFFD")
	}
	return title, pages, nil
}

// pageSegments lays pages end to end, skipping blank ones. The index
// of a page in pages is its page number minus one.
func pageSegments(pages []string) []domain.TextSegment {
	var segments []domain.TextSegment
	offset := 0
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		segments = append(segments, domain.TextSegment{
			Text:        text,
			PageNumber:  i + 1,
			StartOffset: offset,
			EndOffset:   offset + len(text),
		})
		offset += len(text)
	}
	return segments
}
