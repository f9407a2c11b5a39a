// Package mcpserver exposes the editor session as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/hyprtext/internal/apperr"
	"github.com/starford/hyprtext/internal/controller"
	"github.com/starford/hyprtext/internal/linesort"
)

const sortRulesURI = "hyprtext://sort-rules"

// Server wraps the MCP server with session tools.
type Server struct {
	mcp  *server.MCPServer
	exec controller.Executor
}

func idArg() mcp.ToolOption {
	return mcp.WithNumber("id", mcp.Description("Document ID; omit or 0 for the active document"))
}

// New creates a new MCP server with all tools registered.
func New(exec controller.Executor, version string) *Server {
	s := &Server{exec: exec}

	s.mcp = server.NewMCPServer(
		"hyprtext",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List open documents in tab order, or fuzzy-find them by title and path."),
		mcp.WithString("query", mcp.Description("Optional fuzzy filter")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full text of an open document."),
		idArg(),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("open_document",
		mcp.WithDescription("Open a file as a document, or activate and refresh it if already open."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Filesystem path of the file")),
	), s.openDocument)

	s.mcp.AddTool(mcp.NewTool("new_document",
		mcp.WithDescription("Create an empty untitled document and make it active."),
	), s.newDocument)

	s.mcp.AddTool(mcp.NewTool("edit_document",
		mcp.WithDescription("Replace the full text of a document as a user edit. "+
			"Documents with a path are saved immediately; lines are regrouped after a short pause. "+
			"Read the sort rules via get_sort_rules or the "+sortRulesURI+" resource."),
		idArg(),
		mcp.WithString("text", mcp.Required(), mcp.Description("New full text")),
		mcp.WithNumber("line", mcp.Description("Optional cursor line (0-based)")),
		mcp.WithNumber("column", mcp.Description("Optional cursor column (0-based)")),
	), s.editDocument)

	s.mcp.AddTool(mcp.NewTool("sort_document",
		mcp.WithDescription("Sort a document now instead of waiting for the pause."),
		idArg(),
	), s.sortDocument)

	s.mcp.AddTool(mcp.NewTool("save_document",
		mcp.WithDescription("Save a document. Untitled documents need a path."),
		idArg(),
		mcp.WithString("path", mcp.Description("Optional target path (save as)")),
	), s.saveDocument)

	s.mcp.AddTool(mcp.NewTool("close_document",
		mcp.WithDescription("Close a document. Unsaved untitled text is kept only in the session snapshot until closed."),
		idArg(),
	), s.closeDocument)

	s.mcp.AddTool(mcp.NewTool("rename_document",
		mcp.WithDescription("Set the tab title of a document. Blank titles are ignored."),
		idArg(),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
	), s.renameDocument)

	s.mcp.AddTool(mcp.NewTool("preview_document",
		mcp.WithDescription("Render a Markdown document to HTML."),
		idArg(),
	), s.previewDocument)

	s.mcp.AddTool(mcp.NewTool("set_font_size",
		mcp.WithDescription("Set the global font size (clamped to 6..48) or adjust it by delta."),
		mcp.WithNumber("size", mcp.Description("Absolute size")),
		mcp.WithNumber("delta", mcp.Description("Relative change when size is omitted")),
	), s.setFontSize)

	s.mcp.AddTool(mcp.NewTool("recent_files",
		mcp.WithDescription("List recently opened or saved files."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries (default 20)")),
	), s.recentFiles)

	s.mcp.AddTool(mcp.NewTool("forget_recent_file",
		mcp.WithDescription("Remove a path from the recent-files list."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path to forget")),
	), s.forgetRecentFile)

	s.mcp.AddTool(mcp.NewTool("sort_text",
		mcp.WithDescription("Apply the sort rules to arbitrary text without touching the session."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to sort")),
	), s.sortText)

	s.mcp.AddTool(mcp.NewTool("get_sort_rules",
		mcp.WithDescription("Returns the line classification and sort rules."),
	), s.getSortRules)

	s.mcp.AddResource(
		mcp.NewResource(sortRulesURI, "Sort Rules",
			mcp.WithResourceDescription("How lines are classified and regrouped."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSortRulesResource,
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

func errorResult(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNoTargetPath):
		return mcp.NewToolResultError("document has no path; call save_document with a path")
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrNoActiveDocument):
		return mcp.NewToolResultError("document not found")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	var out any
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		if query != "" {
			out = c.Find(query)
		} else {
			out = c.Documents()
		}
		return nil
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", controller.Active)
	var text string
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		doc, err := c.Document(id)
		text = doc.Buffer
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) openDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var out any
	err = s.exec.Exec(ctx, func(c *controller.Controller) error {
		doc, err := c.Open(path)
		out = doc
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) newDocument(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out any
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		out = c.New()
		return nil
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) editDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := req.GetInt("id", controller.Active)

	var cursor *linesort.Position
	args := req.GetArguments()
	if _, ok := args["line"]; ok {
		cursor = &linesort.Position{Line: req.GetInt("line", 0), Column: req.GetInt("column", 0)}
	}

	var out any
	err = s.exec.Exec(ctx, func(c *controller.Controller) error {
		doc, err := c.Edit(id, text, cursor)
		out = doc
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) sortDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", controller.Active)
	var out map[string]any
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		doc, changed, err := c.SortNow(id)
		out = map[string]any{"document": doc, "changed": changed}
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) saveDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", controller.Active)
	target := req.GetString("path", "")
	var path string
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		var err error
		if target != "" {
			path, err = c.SaveAs(id, target)
		} else {
			path, err = c.Save(id)
		}
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("saved: " + path), nil
}

func (s *Server) closeDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", controller.Active)
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		return c.Close(id)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("closed"), nil
}

func (s *Server) renameDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := req.GetInt("id", controller.Active)
	var out any
	err = s.exec.Exec(ctx, func(c *controller.Controller) error {
		doc, err := c.Rename(id, title)
		out = doc
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) previewDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetInt("id", controller.Active)
	var html string
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		var err error
		html, err = c.Preview(id)
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(html), nil
}

func (s *Server) setFontSize(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	size := req.GetInt("size", 0)
	delta := req.GetInt("delta", 0)
	if size == 0 && delta == 0 {
		return mcp.NewToolResultError("size or delta is required"), nil
	}
	var applied int
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		var err error
		if size != 0 {
			applied, err = c.SetFontSize(size)
		} else {
			applied, err = c.AdjustFontSize(delta)
		}
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]int{"font_size": applied}), nil
}

func (s *Server) recentFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 0)
	var out any
	err := s.exec.Exec(ctx, func(c *controller.Controller) error {
		entries, err := c.Recent(limit)
		out = entries
		return err
	})
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(out), nil
}

func (s *Server) forgetRecentFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	err = s.exec.Exec(ctx, func(c *controller.Controller) error {
		return c.Forget(path)
	})
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText("forgotten: " + path), nil
}

func (s *Server) sortText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(linesort.Text(text)), nil
}

func (s *Server) getSortRules(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SortRules), nil
}

func (s *Server) readSortRulesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      sortRulesURI,
			MIMEType: "text/markdown",
			Text:     SortRules,
		},
	}, nil
}
