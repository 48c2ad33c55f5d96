// Package mcp_router exposes notes and tags as MCP tools over streamable HTTP.
// Package mcp_router 通过 MCP 协议暴露笔记与标签工具
package mcp_router

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/haierkeys/fast-note-kb-service/internal/app"
	"github.com/haierkeys/fast-note-kb-service/internal/dto"
	pkgapp "github.com/haierkeys/fast-note-kb-service/pkg/app"
	"github.com/haierkeys/fast-note-kb-service/pkg/code"
	"github.com/haierkeys/fast-note-kb-service/pkg/document"
	"github.com/haierkeys/fast-note-kb-service/pkg/logger"
	"github.com/haierkeys/fast-note-kb-service/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Tool names
const (
	ToolListNotes = "list_notes"
	ToolGetNote   = "get_note"
	ToolCreate    = "create_note"
	ToolListTags  = "list_tags"
	ToolTagNote   = "tag_note"
	ToolUntagNote = "untag_note"
)

var errNoPrincipal = errors.New("request is not authenticated")

// Tools holds the tool handlers; every handler acts for the principal in ctx
type Tools struct {
	app *app.App
}

// NewTools 创建工具集
func NewTools(a *app.App) *Tools {
	return &Tools{app: a}
}

// NewServer builds the MCP server with all tools registered
// NewServer 创建 MCP 服务并注册全部工具
func NewServer(a *app.App) *server.MCPServer {
	s := server.NewMCPServer(
		app.Name,
		a.Version().Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	t := NewTools(a)

	s.AddTool(mcp.NewTool(ToolListNotes,
		mcp.WithDescription("Lists the caller's notes as summaries with their tags, newest first."),
		mcp.WithString("tagId", mcp.Description("Only notes carrying this tag.")),
		mcp.WithString("sortBy", mcp.Description("updatedAt, createdAt or title."), mcp.Enum("updatedAt", "createdAt", "title")),
		mcp.WithString("sortOrder", mcp.Description("asc or desc."), mcp.Enum("asc", "desc")),
	), t.ListNotes)

	s.AddTool(mcp.NewTool(ToolGetNote,
		mcp.WithDescription("Returns one note with its document, plain text, version and tags."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id.")),
	), t.GetNote)

	s.AddTool(mcp.NewTool(ToolCreate,
		mcp.WithDescription("Creates a note. Each line of text becomes one paragraph."),
		mcp.WithString("title", mcp.Description("Note title.")),
		mcp.WithString("text", mcp.Description("Plain text body.")),
	), t.CreateNote)

	s.AddTool(mcp.NewTool(ToolListTags,
		mcp.WithDescription("Lists the caller's tags sorted by title."),
	), t.ListTags)

	s.AddTool(mcp.NewTool(ToolTagNote,
		mcp.WithDescription("Tags a note by tag title, creating the tag when it does not exist."),
		mcp.WithString("noteId", mcp.Required(), mcp.Description("Note id.")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Tag title.")),
		mcp.WithString("color", mcp.Description("Color for a newly created tag.")),
	), t.TagNote)

	s.AddTool(mcp.NewTool(ToolUntagNote,
		mcp.WithDescription("Removes a tag from a note."),
		mcp.WithString("noteId", mcp.Required(), mcp.Description("Note id.")),
		mcp.WithString("tagId", mcp.Required(), mcp.Description("Tag id.")),
	), t.UntagNote)

	return s
}

// NewHandler serves the MCP server over streamable HTTP. It expects the session
// gate to have put the principal into the request context.
func NewHandler(a *app.App) http.Handler {
	return server.NewStreamableHTTPServer(NewServer(a),
		server.WithStateLess(true),
		server.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if p, ok := pkgapp.PrincipalFromContext(r.Context()); ok {
				return pkgapp.WithPrincipal(ctx, p)
			}
			return ctx
		}),
	)
}

func principal(ctx context.Context) (int64, error) {
	p, ok := pkgapp.PrincipalFromContext(ctx)
	if !ok || p.UID <= 0 {
		return 0, errNoPrincipal
	}
	return p.UID, nil
}

// result renders v as JSON text, or err as a tool error the model can read
func (t *Tools) result(ctx context.Context, tool string, v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		var ce *code.Code
		if !errors.As(err, &ce) || ce.StatusCode() >= 500 {
			t.app.Logger().Error("mcp tool failed",
				zap.String("tool", tool),
				zap.String(logger.FieldTraceID, pkgapp.GetTraceID(ctx)),
				zap.Error(err))
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) ListNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := principal(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := &dto.NoteListRequest{
		TagID:     req.GetString("tagId", ""),
		SortBy:    req.GetString("sortBy", ""),
		SortOrder: req.GetString("sortOrder", ""),
	}
	notes, err := t.app.ListingService.ListNotesWithTags(ctx, uid, params)
	return t.result(ctx, ToolListNotes, notes, err)
}

func (t *Tools) GetNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := principal(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := t.app.NoteService.Get(ctx, uid, id)
	return t.result(ctx, ToolGetNote, note, err)
}

func (t *Tools) CreateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := principal(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := &dto.NoteCreateRequest{Title: req.GetString("title", "")}
	if text := req.GetString("text", ""); text != "" {
		params.Content = document.FromText(text)
	}
	note, err := t.app.NoteService.Create(ctx, uid, params)
	return t.result(ctx, ToolCreate, note, err)
}

func (t *Tools) ListTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := principal(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags, err := t.app.TagService.List(ctx, uid)
	return t.result(ctx, ToolListTags, tags, err)
}

func (t *Tools) TagNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := principal(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	noteID, err := req.RequireString("noteId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	color := req.GetString("color", "")
	if color != "" && !validator.IsTagColor(color) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid color %q", color)), nil
	}
	tag, err := t.app.NoteTagService.AttachByTitle(ctx, uid, &dto.NoteTagByTitleRequest{
		ID:    noteID,
		Title: title,
		Color: color,
	})
	return t.result(ctx, ToolTagNote, tag, err)
}

func (t *Tools) UntagNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := principal(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	noteID, err := req.RequireString("noteId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tagID, err := req.RequireString("tagId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	err = t.app.NoteTagService.Detach(ctx, uid, noteID, tagID)
	return t.result(ctx, ToolUntagNote, map[string]bool{"removed": err == nil}, err)
}
