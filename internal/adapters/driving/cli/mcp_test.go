package cli

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/mcp"
)

func TestMCPCmd_Flags(t *testing.T) {
	require.Len(t, mcpCmd.Commands(), 1)
	assert.Equal(t, "serve", mcpCmd.Commands()[0].Name())

	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	host := mcpServeCmd.Flags().Lookup("host")
	require.NotNil(t, host)
	assert.Equal(t, "localhost", host.DefValue)
}

func TestMCPServeCmd_RequiresSearchService(t *testing.T) {
	SetServices(nil)
	defer resetFlags(rootCmd)

	_, err := executeCommand("mcp", "serve")

	assert.ErrorIs(t, err, mcp.ErrMissingSearchService)
}

func TestMCPServeCmd_PortInUse(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	defer resetFlags(rootCmd)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	_, err = executeCommand("mcp", "serve", "--host", "127.0.0.1", "--port", strconv.Itoa(port))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mcp:")
}

func TestMCPServeCmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	defer resetFlags(rootCmd)

	_, err := executeCommand("mcp", "serve", "extra")
	assert.Error(t, err)
}
