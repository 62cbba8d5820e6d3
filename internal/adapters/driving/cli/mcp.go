package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol integration",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the index to MCP clients",
	Long: `Expose the session to AI assistants over MCP.

Tools:      ask, ingest, history
Resources:  scheme-research://documents, scheme-research://documents/{id},
            scheme-research://history

Stdio is used unless --port is given. A client entry for stdio:

  {"mcpServers": {"scheme-research": {"command": "scheme-research", "args": ["mcp", "serve"]}}}

Over HTTP (MCP Inspector, remote clients):

  scheme-research mcp serve --port 8765`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpServeCmd.Flags().String("host", "127.0.0.1", "interface to bind with --port")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	host, err := cmd.Flags().GetString("host")
	if err != nil {
		return fmt.Errorf("getting host flag: %w", err)
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}

	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Retrieval: retrieval}, mcp.WithVersion(version))
	if err != nil {
		return err
	}

	stop := watchPrompts()
	defer stop()

	if port == 0 {
		return server.Run(cmd.Context())
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
