package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/raw2dng/internal/prefs"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Prefs   Preferences
	Version string
}

// NewMCPServer creates an MCP server with the preference tools and
// resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		"raw2dng",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("raw2dng preferences: output formats (DNG, TIFF, Thumbnail, Rotate) and UI language."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_preferences",
			mcp.WithDescription("List every stored preference as section, key and value."),
		),
		mcpListPreferences(deps),
	)

	s.AddTool(
		mcp.NewTool("get_preference",
			mcp.WithDescription("Read one preference."),
			mcp.WithString("key", mcp.Description("Preference name as Section.Key (e.g. Settings.DNG)"), mcp.Required()),
		),
		mcpGetPreference(deps),
	)

	s.AddTool(
		mcp.NewTool("set_preference",
			mcp.WithDescription("Update one preference and write the preferences file."),
			mcp.WithString("key", mcp.Description("Preference name as Section.Key (e.g. General.Language)"), mcp.Required()),
			mcp.WithString("value", mcp.Description("New value; booleans accept true/false, yes/no, on/off, 1/0"), mcp.Required()),
		),
		mcpSetPreference(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"prefs://all",
			"Preferences",
			mcp.WithResourceDescription("All stored preferences as JSON, grouped by section"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourcePreferences(deps),
	)

	return s
}

func mcpListPreferences(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		b, err := json.Marshal(deps.Prefs.Entries())
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal preferences: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetPreference(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		section, key, err := prefs.SplitName(name)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		value, ok := deps.Prefs.Get(section, key)
		if !ok {
			return mcpError(fmt.Sprintf("no preference %s", name)), nil
		}
		return mcpText(value), nil
	}
}

func mcpSetPreference(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("key")
		if err != nil {
			return mcpError("key is required"), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcpError("value is required"), nil
		}
		section, key, err := prefs.SplitName(name)
		if err != nil {
			return mcpError(err.Error()), nil
		}
		if err := deps.Prefs.Set(section, key, value); err != nil {
			return mcpError(fmt.Sprintf("failed to set preference: %v", err)), nil
		}
		stored, _ := deps.Prefs.Get(section, key)
		return mcpText(fmt.Sprintf("Set %s = %s", name, stored)), nil
	}
}

func mcpResourcePreferences(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Prefs.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal preferences: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
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
