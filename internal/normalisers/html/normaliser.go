package html

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// blockSeparator follows every block except the last.
const blockSeparator = "\n\n"

// Elements whose content is never text.
var skippedTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"template": true, "svg": true, "iframe": true,
}

// Block-level elements. A block without block descendants becomes one segment.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "caption": true, "dd": true, "details": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"summary": true, "table": true, "tbody": true, "td": true, "tfoot": true,
	"th": true, "thead": true, "tr": true, "ul": true,
}

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Normalise parses the document and emits one segment per innermost
// block element, with whitespace collapsed and <pre> kept verbatim.
// HTML has no pages, so every segment is on page 1. The title comes
// from <title>, falling back to the first heading.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	src := strings.ToValidUTF8(string(raw.Content), "\uFFFD")
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", domain.ErrInvalidInput, err)
	}

	w := &walker{}
	w.walk(doc)
	w.flush()

	title := collapse(textContent(findElement(doc, "title")))
	if title == "" {
		title = w.firstHeading
	}

	return &driven.NormaliseResult{
		Title:    title,
		Segments: domain.BlockSegments(w.blocks, blockSeparator),
	}, nil
}

// walker collects block texts in document order.
type walker struct {
	blocks       []string
	pending      strings.Builder
	firstHeading string
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.pending.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedTags[n.Data] {
			return
		}
		if n.Data == "br" {
			w.pending.WriteByte(' ')
			return
		}
		if blockTags[n.Data] {
			w.flush()
			if !hasBlockDescendant(n) {
				w.emitLeaf(n)
				return
			}
			defer w.flush()
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) emitLeaf(n *html.Node) {
	var text string
	if n.Data == "pre" {
		text = strings.Trim(textContent(n), "\r\n")
	} else {
		text = collapse(textContent(n))
	}
	if text == "" {
		return
	}
	if w.firstHeading == "" && isHeading(n.Data) {
		w.firstHeading = text
	}
	w.blocks = append(w.blocks, text)
}

// flush emits loose inline text gathered outside leaf blocks.
func (w *walker) flush() {
	if text := collapse(w.pending.String()); text != "" {
		w.blocks = append(w.blocks, text)
	}
	w.pending.Reset()
}

func hasBlockDescendant(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if blockTags[c.Data] || hasBlockDescendant(c) {
			return true
		}
	}
	return false
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

// textContent concatenates the text nodes under n, skipping non-text elements.
func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			buf.WriteString(n.Data)
		case n.Type == html.ElementNode && n.Data == "br":
			buf.WriteByte('\n')
		case n.Type == html.ElementNode && skippedTags[n.Data]:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// collapse trims text and folds whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
