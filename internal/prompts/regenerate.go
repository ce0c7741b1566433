// Package prompts implements MCP prompt handlers for LEO.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// RegeneratePrompt handles the leo-regenerate MCP prompt.
// It walks the host through regenerating and reviewing the context files.
type RegeneratePrompt struct{}

// NewRegeneratePrompt creates a RegeneratePrompt.
func NewRegeneratePrompt() *RegeneratePrompt {
	return &RegeneratePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RegeneratePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("leo-regenerate",
		mcp.WithPromptDescription(
			"Regenerate the LEO Protocol context files from the database "+
				"and review what changed.",
		),
		mcp.WithArgument("file",
			mcp.ArgumentDescription("Regenerate only this file, e.g. CLAUDE_LEAD.md"),
		),
	)
}

// Handle processes the leo-regenerate prompt request.
func (p *RegeneratePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	target := "all context files"
	call := "`leo_generate_document` with `write: true`"
	if f := req.Params.Arguments["file"]; f != "" {
		target = "`" + f + "`"
		call = "`leo_generate_document` with `file: \"" + f + "\"` and `write: true`"
	}

	return &mcp.GetPromptResult{
		Description: "Regenerate LEO context files",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please regenerate " + target + " for the LEO Protocol.\n\n" +
						"1. Run `leo_validate_mapping` first. If it reports issues, show them " +
						"and stop: a mapped section type with no sections means content is missing.\n" +
						"2. Call " + call + ".\n" +
						"3. List the files that changed. Files already up to date are not rewritten.\n" +
						"4. Remind me that the files are generated: edits belong in the protocol " +
						"database, not in the markdown.",
				),
			},
		},
	}, nil
}
