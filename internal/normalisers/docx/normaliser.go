// Package docx extracts paragraph text from Word (.docx) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the Office Open XML word processing type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Normalise emits one segment per non-empty paragraph, each ending in a
// newline. Pages start at 1 and advance at explicit page breaks. The
// title comes from the document properties.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a docx archive: %w", domain.ErrInvalidInput, err)
	}

	body, err := readPart(reader, documentPart)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, fmt.Errorf("%w: %s missing", domain.ErrInvalidInput, documentPart)
	}

	paragraphs, err := parseParagraphs(ctx, body)
	if err != nil {
		return nil, err
	}

	return &driven.NormaliseResult{
		Title:    extractTitle(reader),
		Segments: paragraphSegments(paragraphs),
	}, nil
}

// paragraph is the text of one paragraph, or of the part of a paragraph
// on one side of a page break.
type paragraph struct {
	text string
	page int
}

// parseParagraphs streams document.xml collecting paragraph text.
// Deleted text (w:delText) is not part of the document and is skipped.
func parseParagraphs(ctx context.Context, data []byte) ([]paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		out    []paragraph
		buf    strings.Builder
		inText bool
		page   = 1
	)
	flush := func() {
		if text := strings.TrimSpace(strings.ToValidUTF8(buf.String(), "\uFFFD")); text != "" {
			out = append(out, paragraph{text: text, page: page})
		}
		buf.Reset()
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidInput, documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteByte('\t')
			case "br", "cr":
				if attr(t, "type") == "page" {
					flush()
					page++
				} else {
					buf.WriteByte('\n')
				}
			case "pageBreakBefore":
				if attr(t, "val") != "false" && attr(t, "val") != "0" {
					flush()
					page++
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	flush()
	return out, nil
}

func paragraphSegments(paragraphs []paragraph) []domain.TextSegment {
	segments := make([]domain.TextSegment, 0, len(paragraphs))
	offset := 0
	for _, p := range paragraphs {
		text := p.text + "\n"
		segments = append(segments, domain.TextSegment{
			Text:        text,
			PageNumber:  p.page,
			StartOffset: offset,
			EndOffset:   offset + len(text),
		})
		offset += len(text)
	}
	return segments
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// readPart returns the named archive member, or nil when it is absent.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidInput, name, err)
		}
		return data, nil
	}
	return nil, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads dc:title from the document properties, or "".
func extractTitle(reader *zip.Reader) string {
	data, err := readPart(reader, corePart)
	if err != nil || data == nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
