// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server for Claude Desktop integration
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/handlers"
)

// MCPCommand starts the MCP server on stdio
func MCPCommand(svc *crm.Service, gen assistant.Generator, version string) error {
	zap.L().Info("starting prospecta MCP server", zap.String("version", version))

	server := handlers.NewServer(svc, gen, version)
	return server.Run(context.Background(), &mcp.StdioTransport{})
}
