// Package mcp exposes the triage engine as Model Context Protocol tools over
// stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/app"
	"github.com/symptom-triage-engine/internal/service"
)

// Tool names exposed to MCP clients.
const (
	ToolResolveSymptoms = "resolve_symptoms"
	ToolAnalyzeSymptoms = "analyze_symptoms"
	ToolGetLastResult   = "get_last_result"
	ToolListHistory     = "list_history"
	ToolGetModelInfo    = "get_model_info"
)

// Server represents the triage MCP server
type Server struct {
	service   *service.TriageService
	mcpServer *mcp.Server
	logger    *logrus.Logger
	tools     []string
}

// NewServer creates a new MCP server instance backed by a.
func NewServer(a *app.App) (*Server, error) {
	cfg := a.Config.MCP
	name := cfg.ServerName
	if name == "" {
		name = "symptom-triage"
	}
	version := cfg.ServerVersion
	if version == "" {
		version = "1.0.0"
	}

	// Create MCP server
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	server := &Server{
		service:   a.Service,
		mcpServer: mcpServer,
		logger:    a.Logger,
	}

	if err := server.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return server, nil
}

// registerTools registers the triage tools with the MCP SDK.
func (s *Server) registerTools() error {
	s.logger.Info("Registering tools with MCP SDK...")

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolResolveSymptoms,
		Description: "Extract canonical symptom keys (FEVER, COLD, COUGH, SORE_THROAT, HEADACHE, " +
			"STOMACH_PAIN, BODY_PAIN, TIREDNESS) from a free-text description in English, Hindi, " +
			"Tamil, Telugu or Punjabi.",
	}, s.handleResolveSymptoms)
	s.tools = append(s.tools, ToolResolveSymptoms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name: ToolAnalyzeSymptoms,
		Description: "Score selected symptom keys into likely conditions, an urgency level, " +
			"recommendations and a suggested specialty. Symptoms found in text are added to selected_keys. " +
			"Heuristic triage only, not a diagnosis. The result is saved unless save is false.",
	}, s.handleAnalyzeSymptoms)
	s.tools = append(s.tools, ToolAnalyzeSymptoms)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGetLastResult,
		Description: "Return the most recently saved analysis, if any.",
	}, s.handleGetLastResult)
	s.tools = append(s.tools, ToolGetLastResult)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolListHistory,
		Description: "List saved analyses, newest first.",
	}, s.handleListHistory)
	s.tools = append(s.tools, ToolListHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        ToolGetModelInfo,
		Description: "Report whether the on-device symptom classifier is loaded.",
	}, s.handleGetModelInfo)
	s.tools = append(s.tools, ToolGetModelInfo)

	s.logger.WithField("tool_count", len(s.tools)).Info("Successfully registered all tools")
	return nil
}

// Tools returns the registered tool names.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// Start serves MCP over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting symptom triage MCP server on stdio")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
