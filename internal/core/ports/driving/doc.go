// Package driving declares the use cases the CLI and the MCP server call:
// ingestion, search, document browsing and settings. The services package
// implements them.
package driving
