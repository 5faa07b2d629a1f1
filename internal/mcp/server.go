package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dockguard/dockguard/internal/ipc"
)

const (
	ServerName    = "dockguard"
	ServerVersion = "0.1.0"
)

// Client is the subset of the IPC client the tools use. The daemon
// stays the single owner of X state; every tool is a socket round trip.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetDisplays() (*ipc.DisplaysData, error)
	Recompute() error
	SetPaused(paused bool) error
	SetHighlight(enabled, persist bool) error
	GetHistory(limit int) (*ipc.HistoryData, error)
}

// Server is the MCP server bridging assistants to the running daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
}

// NewServer creates an MCP server backed by the daemon's IPC socket.
func NewServer() *Server {
	return NewServerWithClient(ipc.NewClient())
}

// NewServerWithClient creates an MCP server over an explicit client.
func NewServerWithClient(client Client) *Server {
	s := &Server{
		client: client,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "barrier_status",
		Description: "Get the current state of the dock barrier daemon: barrier rectangle and visibility, guardian pause state, display count, tick and correction counters, and uptime.",
	}, s.handleBarrierStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List all connected displays with their full bounds, usable area after panels and docks, bottom inset depth, and which one is primary.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "recompute_barrier",
		Description: "Force an immediate barrier recomputation from the current display layout, bypassing the settle delay. Returns the resulting barrier state.",
	}, s.handleRecomputeBarrier)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pause_guardian",
		Description: "Suspend or resume the collision guardian. While paused, windows overlapping the barrier strip are left alone.",
	}, s.handlePauseGuardian)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_highlight",
		Description: "Toggle the debug highlight tint on the barrier strip so it becomes visible on screen. Optionally persist the setting to the config file.",
	}, s.handleSetHighlight)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "correction_history",
		Description: "Fetch the most recent window corrections applied by the guardian, newest first: which window was shrunk, by how much, and when.",
	}, s.handleCorrectionHistory)
}
