package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/zonetile/internal/ipc"
)

const (
	ServerName    = "zonetile"
	ServerVersion = "0.1.0"
)

// Server is the MCP server exposing zone management tools. Every tool
// talks to the running daemon over the IPC socket.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates a new MCP server. The daemon must be running.
func NewServer() (*Server, error) {
	client := ipc.NewClient()
	if _, err := client.GetStatus(); err != nil {
		return nil, fmt.Errorf("zonetile daemon not reachable: %w", err)
	}

	s := &Server{client: client}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_layouts",
		Description: "List all zone layouts known to the daemon: built-ins, layouts authored in the config file, and layouts created at runtime.",
	}, s.handleListLayouts)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_layout",
		Description: "Fetch one layout with its zones. Zone rectangles are fractions of the screen's available area (0..1).",
	}, s.handleGetLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "generate_layout",
		Description: "Create a new layout from a generator: 'columns' and 'rows' take a count, 'grid' takes cols and rows. Counts below 1 are clamped to 1.",
	}, s.handleGenerateLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "snap_window",
		Description: "Snap a window into one or more zones of the layout active on its screen. Multiple zone ids span the union of the zones. Pass number to pick a zone by its assigned number instead. Defaults to the focused window.",
	}, s.handleSnapWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "navigate_window",
		Description: "Move a snapped window to the adjacent zone in a direction (up, down, left, right). Reports moved=false when no zone lies that way.",
	}, s.handleNavigateWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_float",
		Description: "Toggle a window between its zone and its remembered floating geometry. Restoring puts the window back exactly where it was before its first snap.",
	}, s.handleToggleFloat)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "query_window",
		Description: "Report which zones a window is snapped to, on which layout and screen. stale=true means the layout changed under the window since it was snapped.",
	}, s.handleQueryWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "zone_occupants",
		Description: "Map each zone of a layout to the windows currently snapped into it.",
	}, s.handleZoneOccupants)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "bind_context",
		Description: "Bind a layout to a (screen, desktop, activity) context. More specific bindings win: desktop+activity beats desktop-only beats activity-only beats the screen default.",
	}, s.handleBindContext)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report daemon status: layout count, tracked window count and uptime.",
	}, s.handleGetStatus)
}
