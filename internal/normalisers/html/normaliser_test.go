package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func normalise(t *testing.T, content string) ([]string, string) {
	t.Helper()
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		URI:      "page.html",
		MIMEType: "text/html",
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

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, mimeTypes)
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
	content := `<html><head><title>Field Guide</title><style>p { color: red }</style></head>
<body>
  <h1>Shelter</h1>
  <p>Build a   lean-to <b>before</b>
     dark.</p>
  <script>var x = "hidden";</script>
  <ul><li>Tarp</li><li>Cord</li></ul>
</body></html>`

	texts, title := normalise(t, content)

	assert.Equal(t, "Field Guide", title)
	assert.Equal(t, []string{
		"Shelter\n\n",
		"Build a lean-to before dark.\n\n",
		"Tarp\n\n",
		"Cord",
	}, texts)
}

func TestNormalise_TitleFallsBackToHeading(t *testing.T) {
	_, title := normalise(t, "<body><p>intro</p><h2>First &amp; Foremost</h2></body>")
	assert.Equal(t, "First & Foremost", title)
}

func TestNormalise_LooseText(t *testing.T) {
	texts, _ := normalise(t, "<div>Loose <em>text</em><p>Para</p>tail</div>")
	assert.Equal(t, []string{"Loose text\n\n", "Para\n\n", "tail"}, texts)
}

func TestNormalise_PreKeepsWhitespace(t *testing.T) {
	texts, _ := normalise(t, "<pre>\nline one\n  indented\n</pre>")
	assert.Equal(t, []string{"line one\n  indented"}, texts)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	texts, _ := normalise(t, "<p>caf\xe9</p>")
	require.Len(t, texts, 1)
	assert.Equal(t, "caf\uFFFD", texts[0])
}

func TestNormalise_Coverage(t *testing.T) {
	result, err := New().Normalise(context.Background(), &domain.RawDocument{
		Content: []byte("<p>a</p><p>b</p><table><tr><td>c</td><td>d</td></tr></table>"),
	})
	require.NoError(t, err)

	var total int
	for _, s := range result.Segments {
		total += s.Len()
	}
	require.NotEmpty(t, result.Segments)
	assert.Equal(t, total, result.Segments[len(result.Segments)-1].EndOffset)
	assert.Len(t, result.Segments, 4)
}
