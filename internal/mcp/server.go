package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"noteboard/internal/notes"
	"noteboard/internal/session"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SessionFunc resolves the caller whose token the tools act with.
type SessionFunc func(ctx context.Context) (session.Session, error)

// FromContext resolves the session put on the context by HTTPContext.
func FromContext(ctx context.Context) (session.Session, error) {
	if s, ok := session.FromContext(ctx); ok {
		return s, nil
	}
	return session.Session{}, session.ErrNoToken
}

// HTTPContext copies the request's bearer token onto the tool context.
func HTTPContext(ctx context.Context, r *http.Request) context.Context {
	return session.NewContext(ctx, session.FromRequest(r))
}

// NewHTTPHandler serves srv over streamable HTTP, authenticating each request by its bearer token.
func NewHTTPHandler(srv *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(srv, server.WithHTTPContextFunc(HTTPContext))
}

// NewServer creates an MCP server with tools for noteboard operations
func NewServer(svc *notes.Service, sessions SessionFunc) *server.MCPServer {
	s := server.NewMCPServer(
		"Noteboard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_notes - every note visible to the caller
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List all notes the authenticated user owns or has been shared. Use this to get an overview before reading or editing."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: all)"),
			),
		),
		handleListNotes(svc, sessions),
	)

	// Tool: get_note - Get a specific note by ID
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID. Use this when you have a note ID and need the full content."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
		),
		handleGetNote(svc, sessions),
	)

	// Tool: search_notes - server-side search
	s.AddTool(
		mcp.NewTool("search_notes",
			mcp.WithDescription("Search notes by free text. The server decides what matches."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query"),
			),
		),
		handleSearchNotes(svc, sessions),
	)

	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a note. Content may be Markdown."),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Note title"),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("Note body"),
			),
		),
		handleCreateNote(svc, sessions),
	)

	s.AddTool(
		mcp.NewTool("update_note",
			mcp.WithDescription("Replace the title and content of an existing note."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("New title"),
			),
			mcp.WithString("content",
				mcp.Required(),
				mcp.Description("New body"),
			),
		),
		handleUpdateNote(svc, sessions),
	)

	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note by ID."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
		),
		handleDeleteNote(svc, sessions),
	)

	s.AddTool(
		mcp.NewTool("share_note",
			mcp.WithDescription("Share a note with another user by email."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID"),
			),
			mcp.WithString("email",
				mcp.Required(),
				mcp.Description("Email of the user to share with"),
			),
		),
		handleShareNote(svc, sessions),
	)

	return s
}

// NoteResult represents a note in tool responses
type NoteResult struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Owner      string   `json:"owner,omitempty"`
	SharedWith []string `json:"sharedWith,omitempty"`
}

func handleListNotes(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		noteList, err := svc.List(ctx, sess)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}
		if limit := req.GetInt("limit", 0); limit > 0 && limit < len(noteList) {
			noteList = noteList[:limit]
		}

		return jsonResult(notesToResults(noteList)), nil
	}
}

func handleGetNote(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		// The API has no single-note read; pick it out of the list.
		noteList, err := svc.List(ctx, sess)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}
		for _, note := range noteList {
			if note.ID == id {
				return jsonResult(noteToResult(note)), nil
			}
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", notes.ErrNoteNotFound)), nil
	}
}

func handleSearchNotes(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError("query is required"), nil
		}
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		noteList, err := svc.Search(ctx, sess, query)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to search notes: %v", err)), nil
		}
		return jsonResult(notesToResults(noteList)), nil
	}
}

func handleCreateNote(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		note, err := svc.Create(ctx, sess, notes.NoteInput{Title: title, Content: content})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create note: %v", err)), nil
		}
		return jsonResult(noteToResult(*note)), nil
	}
}

func handleUpdateNote(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		note, err := svc.Update(ctx, sess, id, notes.NoteInput{Title: title, Content: content})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update note: %v", err)), nil
		}
		return jsonResult(noteToResult(*note)), nil
	}
}

func handleDeleteNote(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		if err := svc.Delete(ctx, sess, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("note %s deleted", id)), nil
	}
}

func handleShareNote(svc *notes.Service, sessions SessionFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		email, err := req.RequireString("email")
		if err != nil {
			return mcp.NewToolResultError("email is required"), nil
		}
		sess, err := sessions(ctx)
		if err != nil {
			return authError(err), nil
		}

		if err := svc.Share(ctx, sess, id, email); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to share note: %v", err)), nil
		}
		return mcp.NewToolResultText(notes.NoticeShared), nil
	}
}

// Helper functions

func authError(err error) *mcp.CallToolResult {
	if errors.Is(err, session.ErrNoToken) {
		return mcp.NewToolResultError("not logged in: send a bearer token or run `notesctl login`")
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to resolve session: %v", err))
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

func noteToResult(note notes.Note) NoteResult {
	return NoteResult{
		ID:         note.ID,
		Title:      note.Title,
		Content:    note.Content,
		Owner:      note.Owner,
		SharedWith: note.SharedWith,
	}
}

func notesToResults(noteList []notes.Note) []NoteResult {
	results := make([]NoteResult, len(noteList))
	for i, note := range noteList {
		results[i] = noteToResult(note)
	}
	return results
}
