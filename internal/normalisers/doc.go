// Package normalisers turns raw file bytes into ordered text segments.
//
// Each subpackage handles one format (PDF, plain text, Markdown, HTML, DOCX). The
// Registry in this package dispatches on MIME type, which is derived
// from the file extension by domain.MIMETypeForPath.
package normalisers
