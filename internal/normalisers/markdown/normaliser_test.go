package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func normalise(t *testing.T, content string) ([]string, string) {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "notes.md",
		MIMEType: "text/markdown",
		Content:  []byte(content),
	})
	require.NoError(t, err)
	require.NoError(t, domain.ValidateSegments(result.Segments))

	texts := make([]string, len(result.Segments))
	for i, seg := range result.Segments {
		assert.Equal(t, 1, seg.PageNumber)
		texts[i] = seg.Text
	}
	return texts, result.Title
}

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_EmptyContent(t *testing.T) {
	texts, title := normalise(t, "")
	assert.Empty(t, texts)
	assert.Empty(t, title)
}

func TestNormalise_Blocks(t *testing.T) {
	content := "# Water Purification\n\nBoil water for **one** minute.\nLonger at altitude.\n\n## Filters\n\nUse a [ceramic filter](http://example.com).\n"

	texts, title := normalise(t, content)
	assert.Equal(t, "Water Purification", title)
	assert.Equal(t, []string{
		"Water Purification\n\n",
		"Boil water for one minute.\nLonger at altitude.\n\n",
		"Filters\n\n",
		"Use a ceramic filter.",
	}, texts)
}

func TestNormalise_TitleFromFirstHeading(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"h1", "# Main\n\ntext", "Main"},
		{"h2 first", "intro\n\n## Second Level\n\n# Later", "Second Level"},
		{"emphasis in heading", "# The *Real* Title", "The Real Title"},
		{"no heading", "just a paragraph", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, title := normalise(t, tt.content)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestNormalise_CodeBlockKeptVerbatim(t *testing.T) {
	content := "Run this:\n\n```sh\necho *hello*\n```\n"

	texts, _ := normalise(t, content)
	require.Len(t, texts, 2)
	assert.Equal(t, "echo *hello*", texts[1])
}

func TestNormalise_ListItems(t *testing.T) {
	texts, _ := normalise(t, "- first item\n- second *item*\n")
	require.Len(t, texts, 1)
	assert.Equal(t, "first item\nsecond item", texts[0])
}

func TestNormalise_ThematicBreakSkipped(t *testing.T) {
	texts, _ := normalise(t, "above\n\n---\n\nbelow")
	assert.Equal(t, []string{"above\n\n", "below"}, texts)
}

func TestNormalise_SegmentsCoverText(t *testing.T) {
	content := "# T\n\n> quoted line\n\npara with `code`\n"

	texts, _ := normalise(t, content)
	joined := strings.Join(texts, "")
	assert.Equal(t, "T\n\nquoted line\n\npara with code", joined)
}
