package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the corpus to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a read-only MCP server",
	Long: `Serve the corpus over the Model Context Protocol.

Tools:     search, get_document_chunks, chunk_context, list_documents
Resources: corpus://stats, corpus://documents/{id}

Without --port the server reads JSON-RPC from stdin and writes to stdout,
which is what desktop assistants expect when they launch a subprocess:

  {"mcpServers": {"corpus": {"command": "corpus", "args": ["mcp", "serve"]}}}

With --port it serves streamable HTTP instead:

  corpus mcp serve --port 8080
  corpus mcp serve --port 8080 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface to bind in HTTP mode")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Search:   searchService,
		Document: documentService,
	})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if mcpPort <= 0 {
		return server.Run(ctx)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort)))
	if err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	// stdout stays clean for clients that capture it.
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", ln.Addr())
	return server.Serve(ctx, ln)
}
