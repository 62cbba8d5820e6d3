package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/scheme-research/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/scheme-research/internal/adapters/driving/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the index over a JSON API:

  GET  /health          POST /ingest   POST /ask
  GET  /history         POST /save     GET  /documents[/{id}]

With --mcp the MCP streamable HTTP endpoint is also mounted at /mcp.
All endpoints share one session, so questions asked over either
protocol appear in the same history.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().Bool("mcp", false, "also serve MCP at /mcp")
	serveCmd.Flags().Duration("timeout", httpapi.DefaultRequestTimeout, "per-request timeout")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	withMCP, err := cmd.Flags().GetBool("mcp")
	if err != nil {
		return fmt.Errorf("getting mcp flag: %w", err)
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return fmt.Errorf("getting timeout flag: %w", err)
	}

	retrieval, err := getRetrieval(cmd)
	if err != nil {
		return err
	}

	opts := []httpapi.Option{httpapi.WithTimeout(timeout)}
	if withMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{Retrieval: retrieval}, mcp.WithVersion(version))
		if err != nil {
			return err
		}
		opts = append(opts, httpapi.WithMount("/mcp", mcpServer.Handler()))
	}

	server, err := httpapi.NewServer(retrieval, opts...)
	if err != nil {
		return err
	}

	stop := watchPrompts()
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
