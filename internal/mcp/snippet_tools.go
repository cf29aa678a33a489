package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tmm/rustdoc-twoslash/pkg/twoslash"
)

// RegisterTools wires the snippet-processing tools into the MCP server.
func RegisterTools(s *server.MCPServer, state *Server) {
	addProcessCodeBlockTool(s, state)
	addClassifySnippetTool(s, state)
	addEngineStatusTool(s, state)
}

// processResult is the structured output of process_code_block.
type processResult struct {
	Annotations []twoslash.TypeAnnotation `json:"annotations"`
	Diagnostics []twoslash.Diagnostic     `json:"diagnostics,omitempty"`
}

// processSnippet runs the pipeline for one snippet, honoring the
// enablement gate: without RUSTDOC_TWOSLASH set, the engine is never
// touched and the result carries a disabled diagnostic.
func processSnippet(ctx context.Context, state *Server, code string) processResult {
	if !twoslash.Enabled() {
		return processResult{
			Annotations: []twoslash.TypeAnnotation{},
			Diagnostics: []twoslash.Diagnostic{{
				Code:    twoslash.CodeDisabled,
				Message: "twoslash processing is disabled (set " + twoslash.EnableEnv + ")",
			}},
		}
	}

	annotations, diags := state.Service().ProcessCodeBlockDiag(ctx, code)
	if annotations == nil {
		annotations = []twoslash.TypeAnnotation{}
	}
	return processResult{Annotations: annotations, Diagnostics: diags}
}

// classifyResult is the structured output of classify_snippet.
type classifyResult struct {
	Preamble         string `json:"preamble"`
	Body             string `json:"body"`
	NeedsWrap        bool   `json:"needs_wrap"`
	Wrapped          string `json:"wrapped"`
	PreambleLen      int    `json:"preamble_len"`
	WrapperPrefixLen int    `json:"wrapper_prefix_len"`
}

// addProcessCodeBlockTool adds the process_code_block tool: the full
// classify → wrap → analyze → remap pipeline for one snippet.
func addProcessCodeBlockTool(s *server.MCPServer, state *Server) {
	tool := mcp.NewTool("process_code_block",
		mcp.WithDescription("Analyze a documentation code snippet and return hover type annotations positioned against the original snippet bytes"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The snippet text, possibly a statement fragment"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		code, ok := args["code"].(string)
		if !ok {
			return mcp.NewToolResultError("code is required"), nil
		}

		return textResult(processSnippet(ctx, state, code)), nil
	})
}

// addClassifySnippetTool adds the classify_snippet tool, exposing the
// preamble/body split and the wrapped program without running the
// engine.
func addClassifySnippetTool(s *server.MCPServer, state *Server) {
	tool := mcp.NewTool("classify_snippet",
		mcp.WithDescription("Split a snippet into its top-level item preamble and statement body, and show the wrapped program that would be analyzed"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("The snippet text"),
		),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		code, ok := args["code"].(string)
		if !ok {
			return mcp.NewToolResultError("code is required"), nil
		}

		c := twoslash.Classify(code)
		w := twoslash.Wrap(c)

		return textResult(classifyResult{
			Preamble:         c.Preamble,
			Body:             c.Body,
			NeedsWrap:        c.NeedsWrap(),
			Wrapped:          w.Text,
			PreambleLen:      w.PreambleLen,
			WrapperPrefixLen: w.WrapperPrefixLen,
		}), nil
	})
}

// addEngineStatusTool adds the engine_status tool.
func addEngineStatusTool(s *server.MCPServer, state *Server) {
	tool := mcp.NewTool("engine_status",
		mcp.WithDescription("Report whether twoslash processing is enabled and the state of the shared analysis engine"),
	)

	s.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(state.Service().Status()), nil
	})
}
