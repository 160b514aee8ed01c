package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument represents opaque bytes read from disk before extraction.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-supplied key-value pairs, such as "title".
	Metadata map[string]any
}

// ExtractedDocument is a document after extraction, ready for chunking.
type ExtractedDocument struct {
	// ID is the corpus document identifier.
	ID string

	// Title is the human-readable title.
	Title string

	// Path is the file the document was read from.
	Path string

	// Segments are the ordered, contiguous text segments.
	Segments []TextSegment
}

// Text returns the concatenated segment text.
func (d *ExtractedDocument) Text() string {
	n := 0
	for _, s := range d.Segments {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range d.Segments {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// extensionTypes maps lower-case file extensions to the MIME types the
// normalisers handle.
var extensionTypes = map[string]string{
	".pdf":      "application/pdf",
	".txt":      "text/plain",
	".text":     "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".xhtml":    "application/xhtml+xml",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// MIMETypeForPath returns the MIME type for a file name, or "" when the
// extension is not recognised.
func MIMETypeForPath(path string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}

// ChangeType classifies a file system change.
type ChangeType string

// File change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// FileChange is a change to a watched file.
type FileChange struct {
	Type ChangeType
	Path string
}
