package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{"file URI", "file:///Users/test/documents/file.pdf", "/Users/test/documents/file.pdf"},
		{"file URI with spaces", "file:///Users/test/my documents/file.pdf", "/Users/test/my documents/file.pdf"},
		{"bare path", "/Users/test/documents/file.pdf", "/Users/test/documents/file.pdf"},
		{"relative path", "relative/path/to/file.txt", "relative/path/to/file.txt"},
		{"empty", "", ""},
		{"prefix only", "file://", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.uri))
		})
	}
}
