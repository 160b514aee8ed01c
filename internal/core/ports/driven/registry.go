package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// NormaliserRegistry selects the normaliser for a document by MIME type.
type NormaliserRegistry interface {
	// Normalise extracts segments using the normaliser registered for
	// raw.MIMEType. Unknown types return domain.ErrUnsupportedType.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser for each of its MIME types.
	Register(normaliser Normaliser)

	// Get returns the normaliser for mimeType, or nil when none is registered.
	Get(mimeType string) Normaliser

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}
