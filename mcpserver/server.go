// Package mcpserver exposes the assistant as an MCP tool over stdio so
// any MCP-capable client can drive conversations.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	assistant "github.com/medops/hospital-assistant"
	"github.com/medops/hospital-assistant/common/logger"
)

const askToolDescription = "Ask the hospital operations assistant a question about medical equipment, staff, departments, locations or equipment usage history."

// Server wraps the assistant behind a single "ask" tool. Callers pass
// an optional session_id to continue a conversation; omitting it starts
// a fresh session whose id is echoed back in the result.
type Server struct {
	client *assistant.Client
	mcp    *server.MCPServer
}

func New(client *assistant.Client) *Server {
	s := &Server{
		client: client,
		mcp:    server.NewMCPServer("hospital-assistant", assistant.Version),
	}
	s.mcp.AddTool(mcp.NewTool("ask",
		mcp.WithDescription(askToolDescription),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to ask, in natural language."),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to continue. Omit to start a new conversation."),
		),
	), s.handleAsk)
	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	logger.Infof("mcp front end serving on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = s.client.NewSession().ID
	}

	reply, err := s.client.ProcessText(ctx, sessionID, question)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n(session_id: %s)", reply, sessionID)), nil
}
