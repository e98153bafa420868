package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/rcliao/forgecore/internal/app"
	"github.com/rcliao/forgecore/internal/index"
	"github.com/rcliao/forgecore/internal/journal"
	"github.com/rcliao/forgecore/internal/model"
)

// NewMCPServer creates an MCP server with the routing and journal tools
// registered.
func NewMCPServer(a *app.App, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		"forgecore",
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, true),
		mcpserver.WithInstructions("forgecore turns natural-language requests into scene edits and keeps a journal of them."),
		mcpserver.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("route",
			mcp.WithDescription("Route a natural-language request: create meshes, materials, layouts, animations or exports, or write to the journal."),
			mcp.WithString("prompt", mcp.Description("The request, e.g. \"create a large red sphere at 0 0 2\""), mcp.Required()),
		),
		mcpRoute(a),
	)
	s.AddTool(
		mcp.NewTool("recent",
			mcp.WithDescription("List the most recent journal entries, newest first."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 10)")),
		),
		mcpRecent(a),
	)
	s.AddTool(
		mcp.NewTool("set_goal",
			mcp.WithDescription("Set today's goal."),
			mcp.WithString("text", mcp.Description("Goal text"), mcp.Required()),
		),
		mcpJournal(a.SetGoal),
	)
	s.AddTool(
		mcp.NewTool("add_progress",
			mcp.WithDescription("Log progress against the active goal."),
			mcp.WithString("text", mcp.Description("Progress note"), mcp.Required()),
		),
		mcpJournal(a.AddProgress),
	)
	s.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Save a free journal note."),
			mcp.WithString("text", mcp.Description("Note text"), mcp.Required()),
		),
		mcpJournal(a.AddNote),
	)
	s.AddTool(
		mcp.NewTool("search",
			mcp.WithDescription("Search past requests, notes and generated scripts."),
			mcp.WithString("query", mcp.Description("Words that must all appear"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Only this category, e.g. mesh_create")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearch(a),
	)

	s.AddResource(
		mcp.NewResource(
			"forgecore://goal",
			"Daily Goal",
			mcp.WithResourceDescription("Active goal with progress notes by day"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceGoal(a),
	)
	s.AddResource(
		mcp.NewResource(
			"forgecore://scene",
			"Scene",
			mcp.WithResourceDescription("Object counts, objects and selection of the current scene"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceScene(a),
	)

	return s
}

// ServeStdio serves s on the given streams until ctx is done or in is closed.
func ServeStdio(ctx context.Context, s *mcpserver.MCPServer, in io.Reader, out io.Writer) error {
	err := mcpserver.NewStdioServer(s).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func mcpRoute(a *app.App) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil || prompt == "" {
			return mcpError("prompt is required"), nil
		}
		res, err := a.Route(ctx, prompt)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpResult(res), nil
	}
}

func mcpJournal(fn func(context.Context, string) (model.Result, error)) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := req.RequireString("text")
		if err != nil || text == "" {
			return mcpError("text is required"), nil
		}
		res, err := fn(ctx, text)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpResult(res), nil
	}
}

func mcpRecent(a *app.App) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		return mcpJSON(a.Recent(limit))
	}
}

func mcpSearch(a *app.App) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil || query == "" {
			return mcpError("query is required"), nil
		}
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		hits, err := a.Search(ctx, index.SearchParams{
			Query:    query,
			Category: req.GetString("category", ""),
			Limit:    limit,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(hits) == 0 {
			return mcpText("No matching entries."), nil
		}
		return mcpJSON(hits)
	}
}

func mcpResourceGoal(a *app.App) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g, err := a.Goal()
		var v any = g
		if errors.Is(err, journal.ErrNoGoal) {
			v = map[string]any{}
		} else if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, v)
	}
}

func mcpResourceScene(a *app.App) mcpserver.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sum, snap := a.Scene()
		return jsonResource(req.Params.URI, map[string]any{"summary": sum, "snapshot": snap})
	}
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

// mcpResult reports a routing result as text; failures are tool errors.
func mcpResult(res model.Result) *mcp.CallToolResult {
	text := res.Message
	if res.Detail != "" {
		text += "\n" + res.Detail
	}
	if res.JournalError != "" {
		text += "\n(journal not written: " + res.JournalError + ")"
	}
	if !res.OK() {
		return mcpError(text)
	}
	return mcpText(text)
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
