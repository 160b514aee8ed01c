// Package mcp serves the corpus to Model Context Protocol clients over
// stdio or streamable HTTP. Everything it exposes is read-only: search,
// chunk ranges, chunk context, the document list and corpus statistics.
package mcp
