package api

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/raw2dng/internal/prefs"
)

func newTestMCPDeps(t *testing.T) (MCPDeps, *prefs.Store) {
	t.Helper()
	store, err := prefs.Open(filepath.Join(t.TempDir(), prefs.FileName))
	require.NoError(t, err)
	return MCPDeps{Prefs: store, Version: "test"}, store
}

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "no content in result")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestMCPServer_Builds(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	assert.NotNil(t, NewMCPServer(deps))
}

func TestMCPTool_GetPreference(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpGetPreference(deps)

	result, err := handler(context.Background(), makeCallToolRequest("get_preference", map[string]interface{}{
		"key": "General.Language",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))
	assert.Equal(t, "en", toolText(t, result))

	result, err = handler(context.Background(), makeCallToolRequest("get_preference", map[string]interface{}{
		"key": "General.Missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = handler(context.Background(), makeCallToolRequest("get_preference", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPTool_SetPreference(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	handler := mcpSetPreference(deps)

	result, err := handler(context.Background(), makeCallToolRequest("set_preference", map[string]interface{}{
		"key":   "Settings.Thumbnail",
		"value": "on",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, toolText(t, result))
	assert.Equal(t, "Set Settings.Thumbnail = True", toolText(t, result))

	thumb, err := store.Thumbnail()
	require.NoError(t, err)
	assert.True(t, thumb)
}

func TestMCPTool_SetPreference_Invalid(t *testing.T) {
	deps, _ := newTestMCPDeps(t)
	handler := mcpSetPreference(deps)

	for _, args := range []map[string]interface{}{
		{"key": "Settings.DNG"},
		{"key": "Settings.DNG", "value": "sometimes"},
		{"key": "DNG", "value": "true"},
		{"key": "Settings.Sharpen", "value": "true"},
	} {
		result, err := handler(context.Background(), makeCallToolRequest("set_preference", args))
		require.NoError(t, err)
		assert.True(t, result.IsError, "args %v", args)
	}
}

func TestMCPTool_ListPreferences(t *testing.T) {
	deps, _ := newTestMCPDeps(t)

	result, err := mcpListPreferences(deps)(context.Background(), makeCallToolRequest("list_preferences", nil))
	require.NoError(t, err)

	var entries []prefs.Entry
	require.NoError(t, json.Unmarshal([]byte(toolText(t, result)), &entries))
	require.Len(t, entries, 5)
	assert.Equal(t, prefs.Entry{Section: "Settings", Key: "DNG", Value: "True"}, entries[0])
}

func TestMCPResource_Preferences(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	require.NoError(t, store.SetRotate(true))

	contents, err := mcpResourcePreferences(deps)(context.Background(), mcp.ReadResourceRequest{
		Params: mcp.ReadResourceParams{URI: "prefs://all"},
	})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "expected TextResourceContents, got %T", contents[0])
	assert.Equal(t, "prefs://all", tc.URI)

	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &got))
	assert.Equal(t, "True", got["Settings"]["Rotate"])
}

func TestMCPServer_ConcurrentCalls(t *testing.T) {
	deps, store := newTestMCPDeps(t)
	set := mcpSetPreference(deps)
	get := mcpGetPreference(deps)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			value := "False"
			if i%2 == 0 {
				value = "True"
			}
			result, err := set(context.Background(), makeCallToolRequest("set_preference", map[string]interface{}{
				"key":   "Settings.TIFF",
				"value": value,
			}))
			assert.NoError(t, err)
			assert.False(t, result.IsError)
		}(i)
		go func() {
			defer wg.Done()
			result, err := get(context.Background(), makeCallToolRequest("get_preference", map[string]interface{}{
				"key": "Settings.TIFF",
			}))
			assert.NoError(t, err)
			assert.False(t, result.IsError)
		}()
	}
	wg.Wait()

	_, err := store.TIFF()
	assert.NoError(t, err)
}
