package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCmd(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	out, err := executeCommand("stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:           1")
	assert.Contains(t, out, "Chunks per document:")
}

func TestIntegrityCmd_Consistent(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	ingestSample(t, "guide")

	out, err := executeCommand("integrity")

	require.NoError(t, err)
	assert.Contains(t, out, "Index is consistent")
}
