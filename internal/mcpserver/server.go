// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note queries as tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tilog/internal/apperr"
	"github.com/starford/tilog/internal/content"
	"github.com/starford/tilog/internal/models"
	"github.com/starford/tilog/internal/noteid"
	"github.com/starford/tilog/internal/noteservice"
)

const contractURI = "tilog://note-format"

// Server wraps the MCP server with the note tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates an MCP server with every tool registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"tilog",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes newest first, one page at a time. Returns ids, titles, tags and dates."),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1 (default 1)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read one note by its identifier, including the Markdown body."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note identifier (ULID, any case)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("notes_by_tag",
		mcp.WithDescription("List the notes carrying a tag. Tags match exactly."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag to filter by")),
	), s.notesByTag)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with its note count, most used first."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, tags and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. The identifier is generated from the current time. "+
			"Read the contract first via the get_note_contract tool or the "+contractURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags")),
		mcp.WithString("body", mcp.Description("Markdown body")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Report files in the notes directory that were rejected and why."),
	), s.getReport)

	s.mcp.AddTool(mcp.NewTool("get_note_contract",
		mcp.WithDescription("Returns the note file format contract. "+
			"Call this before creating notes to ensure correct structure."),
	), s.getNoteContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Note Format Contract",
			mcp.WithResourceDescription("Format every note file must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

type noteItem struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Date  string   `json:"date"`
}

type noteBody struct {
	noteItem
	Content string `json:"content"`
}

func itemOf(n models.ParsedNote) noteItem {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return noteItem{ID: n.ID, Title: n.Title, Tags: tags, Date: noteid.ISO(n.Metadata.Date)}
}

func itemsOf(notes []models.ParsedNote) []noteItem {
	out := make([]noteItem, 0, len(notes))
	for _, n := range notes {
		out = append(out, itemOf(n))
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := req.GetInt("page", 1)
	if page < 1 {
		return mcp.NewToolResultError("page must be at least 1"), nil
	}
	listing, err := s.svc.Page(ctx, page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"notes":       itemsOf(listing.Items),
		"page":        listing.Number,
		"total_pages": listing.TotalPages,
		"total":       listing.TotalNotes,
	})
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Note(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(noteBody{noteItem: itemOf(*note), Content: note.Content})
}

func (s *Server) notesByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.NotesByTag(ctx, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(itemsOf(notes))
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.AllTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
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
	return jsonResult(results)
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags := content.SplitTags(req.GetString("tags", ""))
	note, err := s.svc.CreateNote(ctx, title, tags, req.GetString("body", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", note.ID)), nil
}

func (s *Server) getReport(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rep, err := s.svc.Report(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rep)
}

func (s *Server) getNoteContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
