package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPTool_Route(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	result, err := mcpRoute(a)(ctx, makeCallToolRequest("route", map[string]any{"prompt": "create a cylinder"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "Executed 1 operation", toolText(t, result))

	result, err = mcpRoute(a)(ctx, makeCallToolRequest("route", map[string]any{"prompt": "sing a song"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = mcpRoute(a)(ctx, makeCallToolRequest("route", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "prompt is required", toolText(t, result))
}

func TestMCPTool_GoalProgressRecent(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	result, err := mcpJournal(a.AddProgress)(ctx, makeCallToolRequest("add_progress", map[string]any{"text": "early"}))
	require.NoError(t, err)
	assert.True(t, result.IsError, "progress needs a goal")

	result, err = mcpJournal(a.SetGoal)(ctx, makeCallToolRequest("set_goal", map[string]any{"text": "rig the camera"}))
	require.NoError(t, err)
	assert.Equal(t, "Goal set: rig the camera", toolText(t, result))

	result, err = mcpJournal(a.AddProgress)(ctx, makeCallToolRequest("add_progress", map[string]any{"text": "camera placed"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = mcpRecent(a)(ctx, makeCallToolRequest("recent", map[string]any{"limit": float64(2)}))
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "progress", entries[0]["kind"])
	assert.Equal(t, "goal", entries[1]["kind"])
}

func TestMCPTool_Search(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.Route(ctx, "create a plane")
	require.NoError(t, err)

	result, err := mcpSearch(a)(ctx, makeCallToolRequest("search", map[string]any{"query": "plane"}))
	require.NoError(t, err)
	assert.True(t, strings.Contains(toolText(t, result), `"create a plane"`))

	result, err = mcpSearch(a)(ctx, makeCallToolRequest("search", map[string]any{"query": "plane", "category": "export"}))
	require.NoError(t, err)
	assert.Equal(t, "No matching entries.", toolText(t, result))
}

func TestMCPResources(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	req := mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: "forgecore://goal"}}
	contents, err := mcpResourceGoal(a)(ctx, req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, "{}", contents[0].(mcp.TextResourceContents).Text)

	_, err = a.Route(ctx, "create a cone")
	require.NoError(t, err)
	req = mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: "forgecore://scene"}}
	contents, err = mcpResourceScene(a)(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"meshes":1`)
}

func TestNewMCPServer(t *testing.T) {
	s := NewMCPServer(newTestApp(t), "test")
	require.NotNil(t, s)
}
