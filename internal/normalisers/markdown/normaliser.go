// Package markdown extracts plain text blocks from Markdown documents.
package markdown

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// blockSeparator follows every block except the last.
const blockSeparator = "\n\n"

// Normaliser handles Markdown documents.
type Normaliser struct {
	md goldmark.Markdown
}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{md: goldmark.New()}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Normalise parses the document and emits one segment per top-level
// block with formatting stripped. Markdown has no pages, so every
// segment is on page 1. The title is the text of the first heading.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	src := []byte(strings.ToValidUTF8(string(raw.Content), "\uFFFD"))
	doc := n.md.Parser().Parse(text.NewReader(src))

	var title string
	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok && title == "" {
			title = blockText(h, src)
		}
		if t := blockText(node, src); t != "" {
			blocks = append(blocks, t)
		}
	}

	return &driven.NormaliseResult{
		Title:    title,
		Segments: domain.BlockSegments(blocks, blockSeparator),
	}, nil
}

// blockText renders a block node as plain text.
func blockText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
		var buf bytes.Buffer
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		return strings.TrimRight(buf.String(), "\r\n")

	case *ast.List, *ast.ListItem, *ast.Blockquote:
		sep := "\n"
		if n.Kind() == ast.KindBlockquote {
			sep = blockSeparator
		}
		var parts []string
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			if t := blockText(c, src); t != "" {
				parts = append(parts, t)
			}
		}
		return strings.Join(parts, sep)

	default:
		var buf bytes.Buffer
		inlineText(n, src, &buf)
		return strings.TrimSpace(buf.String())
	}
}

// inlineText appends the text of inline descendants, dropping markup.
func inlineText(n ast.Node, src []byte, buf *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			buf.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(node.Value)
		case *ast.AutoLink:
			buf.Write(node.URL(src))
		case *ast.RawHTML:
			// dropped
		default:
			inlineText(c, src, buf)
		}
	}
}
