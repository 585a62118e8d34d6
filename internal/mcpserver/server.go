// Package mcpserver exposes the note store as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/noteservice"
)

// Server wraps the MCP server with Jera tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Jera",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in order. Each line is: position, id, category, title."),
		mcp.WithString("category", mcp.Description("Exact category to filter by (empty for all)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read one note as JSON."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Note id or list position")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note. Title and content must be non-empty."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("category", mcp.Description("Category label, defaults to "+models.DefaultCategory)),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Edit a note. Omitted fields keep their current value."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Note id or list position")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New text")),
		mcp.WithString("category", mcp.Description("New category")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note permanently."),
		mcp.WithString("ref", mcp.Required(), mcp.Description("Note id or list position")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every category that can be assigned, one per line."),
	), s.listCategories)

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

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes := s.svc.ListNotes(ctx, req.GetString("category", ""))
	if len(notes) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	lines := make([]string, len(notes))
	for i, n := range notes {
		lines[i] = fmt.Sprintf("%d\t%s\t%s\t%s", s.svc.Store().IndexOf(n.ID), n.ID, n.Category, n.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.lookup(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	out, _ := json.MarshalIndent(n, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d := noteservice.Draft{
		Title:    title,
		Content:  content,
		Category: req.GetString("category", models.DefaultCategory),
	}
	n, err := s.svc.CreateNote(ctx, d)
	if err != nil && !noteservice.IsSaveError(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("created %s but not saved: %v", n.ID, err)), nil
	}
	return mcp.NewToolResultText("created: " + n.ID), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	old, errResult := s.lookup(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	d := noteservice.Draft{
		Title:    req.GetString("title", old.Title),
		Content:  req.GetString("content", old.Content),
		Category: req.GetString("category", old.Category),
	}
	n, err := s.svc.UpdateNote(ctx, old.ID, d, "")
	if err != nil && !noteservice.IsSaveError(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("updated %s but not saved: %v", n.ID, err)), nil
	}
	return mcp.NewToolResultText("updated: " + n.ID), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, errResult := s.lookup(ctx, req)
	if errResult != nil {
		return errResult, nil
	}
	if err := s.svc.DeleteNote(ctx, n.ID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("deleted: " + n.ID), nil
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.svc.Categories(ctx), "\n")), nil
}

// lookup resolves the "ref" argument. A non-nil result is the error to return.
func (s *Server) lookup(ctx context.Context, req mcp.CallToolRequest) (models.Note, *mcp.CallToolResult) {
	ref, err := req.RequireString("ref")
	if err != nil {
		return models.Note{}, mcp.NewToolResultError(err.Error())
	}
	id, err := s.svc.Resolve(ref)
	if err != nil {
		return models.Note{}, mcp.NewToolResultError(fmt.Sprintf("not found: %s", ref))
	}
	n, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return models.Note{}, mcp.NewToolResultError(fmt.Sprintf("not found: %s", ref))
	}
	return n, nil
}
