package mcp

import (
	"errors"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

var (
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingDocumentService is returned by document tools and
	// resources when the server was built without a document service.
	ErrMissingDocumentService = errors.New("mcp: document service is not configured")
)

// Ports are the services the server calls. Search is required; Document
// is optional.
type Ports struct {
	Search   driving.SearchService
	Document driving.DocumentService
}

func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
