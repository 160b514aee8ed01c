package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// Connector fetches raw documents from a data source.
type Connector interface {
	// Discover returns the supported files under dir whose names match
	// pattern, in lexical order. Hidden files and directories are skipped.
	Discover(ctx context.Context, dir, pattern string, recursive bool) ([]string, error)

	// Read loads a file as a raw document with its MIME type set.
	// Returns domain.ErrNotFound for missing files and
	// domain.ErrUnsupportedType for unrecognised extensions.
	Read(ctx context.Context, path string) (*domain.RawDocument, error)
}
