// Package html provides a Normaliser for HTML documents. It parses the
// markup with golang.org/x/net/html and emits the text of each block
// element as a segment, dropping scripts, styles and the document head.
package html
