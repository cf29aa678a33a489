package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// textResult marshals v to JSON and wraps it in a CallToolResult with a
// single text content block.
func textResult(v any) *mcp.CallToolResult {
	b, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(b))
}
