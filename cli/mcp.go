// ABOUTME: MCP server subcommand
// ABOUTME: Exposes sync status, history, run detail, trigger and config as MCP tools on stdio
package cli

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/ltvdash/handlers"
)

// NewMCPServer builds the MCP server with every sync tool registered.
func NewMCPServer(backend handlers.Backend, version string) *mcp.Server {
	syncHandlers := handlers.NewSyncHandlers(backend)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "ltvdash",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sync_status",
		Description: "Report whether an LTV audience sync is running and summarize the last run",
	}, syncHandlers.GetSyncStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sync_history",
		Description: "List past sync runs, most recent first, 20 per page",
	}, syncHandlers.GetSyncHistory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_sync_run",
		Description: "Get one sync run with normalization stats and sample contacts",
	}, syncHandlers.GetSyncRun)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trigger_sync",
		Description: "Start a sync of CRM lifetime values to the Meta custom audience",
	}, syncHandlers.TriggerSync)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_config",
		Description: "Show the configured LTV field, ad account and notification email settings",
	}, syncHandlers.GetConfig)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(backend handlers.Backend, version string, logger *log.Logger) error {
	logger.Info("starting MCP server")

	server := NewMCPServer(backend, version)
	return server.Run(context.Background(), &mcp.StdioTransport{})
}
