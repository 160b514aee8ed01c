// Package connectors holds the adapters that find and read source files.
// The filesystem subpackage discovers files on local disk, reads them for
// ingestion and watches directories for changes.
package connectors
