package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/normalisers/docx"
	"github.com/custodia-labs/corpus-cli/internal/normalisers/html"
	"github.com/custodia-labs/corpus-cli/internal/normalisers/markdown"
	"github.com/custodia-labs/corpus-cli/internal/normalisers/pdf"
	"github.com/custodia-labs/corpus-cli/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to normalisers. Later registrations for the
// same type replace earlier ones.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string]driven.Normaliser
}

// NewRegistry creates a registry holding the given normalisers.
func NewRegistry(normalisers ...driven.Normaliser) *Registry {
	r := &Registry{byMIME: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		r.Register(n)
	}
	return r
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	return NewRegistry(pdf.New(), plaintext.New(), markdown.New(), html.New(), docx.New())
}

// Register adds a normaliser for each MIME type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mime := range n.SupportedMIMETypes() {
		r.byMIME[mime] = n
	}
}

// Get returns the normaliser for mimeType, or nil.
func (r *Registry) Get(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byMIME[mimeType]
}

// SupportedMIMETypes returns the registered MIME types, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byMIME))
	for mime := range r.byMIME {
		types = append(types, mime)
	}
	sort.Strings(types)
	return types
}

// Supports reports whether a file name maps to a registered normaliser.
func (r *Registry) Supports(path string) bool {
	mime := domain.MIMETypeForPath(path)
	return mime != "" && r.Get(mime) != nil
}

// Normalise dispatches raw to the normaliser for its MIME type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n := r.Get(raw.MIMEType)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, raw.MIMEType)
	}
	result, err := n.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalising %s: %w", raw.URI, err)
	}
	if err := domain.ValidateSegments(result.Segments); err != nil {
		return nil, fmt.Errorf("normalising %s: %w", raw.URI, err)
	}
	return result, nil
}
