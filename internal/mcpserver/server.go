// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes notesift tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notesift/internal/apperr"
	"github.com/starford/notesift/internal/noteservice"
)

// RecordFormatURI is the resource URI of the record format contract.
const RecordFormatURI = "notesift://record-format"

// Server wraps the MCP server with notesift tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all notesift tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notesift",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List cached notes, newest first."),
		mcp.WithString("filename", mcp.Description("Only notes taken from this document (empty for all)")),
		mcp.WithNumber("limit", mcp.Description("Maximum notes to return (default 50)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through cached note content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("classify_note",
		mcp.WithDescription("Run text through the classification pipeline and report "+
			"the terminal state, label or follow-up questions, and the state trace."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text to classify")),
	), s.classifyNote)

	s.mcp.AddTool(mcp.NewTool("segment_text",
		mcp.WithDescription("Split a misc notes document into dated records. "+
			"See the "+RecordFormatURI+" resource for the separator format."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Document text with DD/MM/YYYY separators")),
	), s.segmentText)

	s.mcp.AddTool(mcp.NewTool("cache_status",
		mcp.WithDescription("Describe the on-disk note snapshot: record count, write time and whether a rebuild is due."),
	), s.cacheStatus)

	s.mcp.AddResource(
		mcp.NewResource(RecordFormatURI, "Record Format Contract",
			mcp.WithResourceDescription("How misc notes are separated and how records are stored."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := req.GetString("filename", "")
	limit := req.GetInt("limit", 50)

	notes, total, err := s.svc.ListNotes(ctx, limit, 0, filename)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return jsonResult(map[string]any{"notes": notes, "total": total}), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	return jsonResult(results), nil
}

func (s *Server) classifyNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Classify(ctx, content)), nil
}

func (s *Server) segmentText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := s.svc.Segment(ctx, text)
	if err != nil {
		var pe *apperr.ParseError
		if errors.As(err, &pe) {
			return mcp.NewToolResultError(fmt.Sprintf("invalid date separator %q", pe.Token)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText("no dated records found"), nil
	}
	return jsonResult(records), nil
}

func (s *Server) cacheStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.svc.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) readRecordFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RecordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
