package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range documentCmd.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["get"])
	assert.True(t, names["chunks"])
	assert.True(t, names["delete"])
}

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	out, err := executeCommand("document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents in the corpus.")
}

func TestDocumentListCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "alpha")
	ingestSample(t, "beta")

	out, err := executeCommand("document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentGetCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	path := ingestSample(t, "guide")

	out, err := executeCommand("document", "get", "guide")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: guide")
	assert.Contains(t, out, path)
	assert.Contains(t, out, "Last page:   1")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("document", "get", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentChunksCmd_Range(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")
	all, err := documentService.Chunks(t.Context(), "guide", domain.OffsetRange{})
	require.NoError(t, err)
	require.Greater(t, len(all), 2)

	out, err := executeCommand("document", "chunks", "guide", "--end", "1", "--json")

	require.NoError(t, err)
	var chunks []domain.StoredChunk
	require.NoError(t, json.Unmarshal([]byte(out), &chunks))
	require.Len(t, chunks, 1)
	assert.Equal(t, all[0].ID, chunks[0].ID)
}

func TestDocumentChunksCmd_Text(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	out, err := executeCommand("document", "chunks", "guide")

	require.NoError(t, err)
	assert.Contains(t, out, "--- chunk ")
	assert.Contains(t, out, "page 1 ---")
}

func TestDocumentChunksCmd_InvalidRange(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	_, err := executeCommand("document", "chunks", "guide", "--start", "50", "--end", "10")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChunkRange(t *testing.T) {
	assert.True(t, chunkRange(-1, -1).IsZero())
	assert.Equal(t, domain.Range(1, 5), chunkRange(1, 5))
	assert.Equal(t, domain.From(3), chunkRange(3, -1))
	assert.Equal(t, domain.Until(7), chunkRange(-1, 7))
}

func TestDocumentDeleteCmd_Confirm(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	out, err := executeCommand("document", "delete", "guide", "--confirm")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted document: guide")

	_, err = documentService.Get(t.Context(), "guide")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentDeleteCmd_RequiresConfirmWithoutTerminal(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	_, err := executeCommand("document", "delete", "guide")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = documentService.Get(t.Context(), "guide")
	assert.NoError(t, err)
}

func TestDocumentDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("document", "delete", "missing", "-y")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
