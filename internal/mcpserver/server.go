// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes every registered host command as a tool over stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/filebridge/internal/command"
)

// Server wraps the MCP server with one tool per command.
type Server struct {
	mcp *server.MCPServer
	reg *command.Registry
}

// New creates a new MCP server with a tool for each command in reg.
func New(reg *command.Registry, version string) *Server {
	s := &Server{reg: reg}

	s.mcp = server.NewMCPServer(
		"filebridge",
		version,
		server.WithToolCapabilities(false),
	)

	for _, cmd := range reg.List() {
		s.mcp.AddTool(toolFor(cmd), s.toolHandler(cmd.Name))
	}

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func toolFor(cmd command.Command) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(cmd.Description)}
	for _, p := range cmd.Params {
		propOpts := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			propOpts = append(propOpts, mcp.Required())
		}
		opts = append(opts, mcp.WithString(p.Name, propOpts...))
	}
	return mcp.NewTool(cmd.Name, opts...)
}

// toolHandler forwards the call arguments to the registry. Every failure,
// including bad arguments, is reported as a tool error result carrying the
// message text.
func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, err := s.reg.Invoke(ctx, name, raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
