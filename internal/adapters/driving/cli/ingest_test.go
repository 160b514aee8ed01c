package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestIngestCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := executeCommand("ingest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestIngestCmd_Flags(t *testing.T) {
	for _, name := range []string{"id", "title", "pattern", "recursive", "workers", "json"} {
		assert.NotNil(t, ingestCmd.Flags().Lookup(name), name)
	}
}

func TestIngestCmd_File(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeFile(t, t.TempDir(), "guide.txt", sampleText)

	out, err := executeCommand("ingest", path, "--id", "guide", "--title", "Field Guide")

	require.NoError(t, err)
	assert.Contains(t, out, "Field Guide (guide)")
	assert.Contains(t, out, "Ingested: 1, skipped: 0, failed: 0")

	doc, err := documentService.Get(t.Context(), "guide")
	require.NoError(t, err)
	assert.Equal(t, "Field Guide", doc.Title)
}

func TestIngestCmd_FileTwiceIsSkipped(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := ingestSample(t, "guide")

	out, err := executeCommand("ingest", path, "--id", "guide")

	require.NoError(t, err)
	assert.Contains(t, out, domain.ReasonAlreadyExists)
	assert.Contains(t, out, "Ingested: 0, skipped: 1, failed: 0")
}

func TestIngestCmd_Directory(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", sampleText)
	writeFile(t, dir, "b.txt", sampleText)
	writeFile(t, dir, "c.md", "# C\n\n"+sampleText)
	writeFile(t, dir, "sub/d.txt", sampleText)

	out, err := executeCommand("ingest", dir, "--pattern", "*.txt", "--json")

	require.NoError(t, err)
	var results []domain.IngestResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, domain.IngestSuccess, r.Status)
	}
}

func TestIngestCmd_DirectoryRecursive(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "a.txt", sampleText)
	writeFile(t, dir, "sub/d.txt", sampleText)

	out, err := executeCommand("ingest", dir, "--pattern", "*.txt", "--recursive")

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested: 2")
}

func TestIngestCmd_DirectoryRejectsFileFlags(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("ingest", t.TempDir(), "--id", "x")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_MissingPath(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("ingest", "/does/not/exist.txt")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestCmd_UnsupportedFile(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := writeFile(t, t.TempDir(), "image.png", "not text")

	_, err := executeCommand("ingest", path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestReingestCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := ingestSample(t, "guide")

	out, err := executeCommand("reingest", "guide", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested: 1")
}

func TestReingestCmd_RequiresTwoArgs(t *testing.T) {
	_, err := executeCommand("reingest", "guide")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestValidateCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	out, err := executeCommand("validate", "guide")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: guide")
	assert.Contains(t, out, "Status:      valid")
	assert.Contains(t, out, "Searchable:  true")
}

func TestValidateCmd_UnknownDocument(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("validate", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
