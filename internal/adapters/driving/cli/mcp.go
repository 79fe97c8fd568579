package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cswcalc/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can look up
locations and run savings estimates.

By default the server speaks JSON-RPC over stdio. Sign-in prompts are
written to stderr; run 'cswcalc login' first to avoid them.

Examples:
  # Stdio mode (default)
  cswcalc mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  cswcalc mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "cswcalc": {
        "command": "/path/to/cswcalc",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	svc, err := loadServices(cmd)
	if err != nil {
		return err
	}
	useTextPrompter(svc, cmd.ErrOrStderr())

	server, err := mcp.NewServer(&mcp.Ports{
		Estimator: svc.Estimator,
		History:   svc.History,
	})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
