// Package filesystem reads documents from local directories and watches
// them for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector reads files from the local file system.
type Connector struct{}

// New creates a filesystem connector.
func New() *Connector {
	return &Connector{}
}

// Discover returns the supported files under dir matching pattern. An
// empty pattern matches every supported file.
func (c *Connector) Discover(ctx context.Context, dir, pattern string, recursive bool) ([]string, error) {
	dir = ResolvePath(dir)
	if pattern != "" {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("%w: pattern %q: %w", domain.ErrInvalidInput, pattern, err)
		}
	}

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", dir, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == dir {
			return nil
		}
		if d.IsDir() {
			if !recursive || isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || isHidden(d.Name()) || !Supported(path) {
			return nil
		}
		if pattern != "" {
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

// Read loads a file as a raw document.
func (c *Connector) Read(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = ResolvePath(path)

	mime := domain.MIMETypeForPath(path)
	if mime == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return &domain.RawDocument{
		URI:      path,
		MIMEType: mime,
		Content:  content,
	}, nil
}

// Supported reports whether the file extension is one the normalisers handle.
func Supported(path string) bool {
	return domain.MIMETypeForPath(path) != ""
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
