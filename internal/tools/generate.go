package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rickfelix/ehg-leo/internal/protocol"
)

// GenerateTool handles the leo_generate_document MCP tool.
// It renders one or all LEO context documents from the database.
type GenerateTool struct {
	data      DataSource
	mapping   protocol.FileMapping
	outputDir string
}

// NewGenerateTool creates a GenerateTool. Written files go to outputDir.
func NewGenerateTool(data DataSource, mapping protocol.FileMapping, outputDir string) *GenerateTool {
	return &GenerateTool{data: data, mapping: mapping, outputDir: outputDir}
}

// Definition returns the MCP tool definition for registration.
func (t *GenerateTool) Definition() mcp.Tool {
	return mcp.NewTool("leo_generate_document",
		mcp.WithDescription(
			"Generate LEO Protocol context documents from the protocol database. "+
				"With `file`, returns that one document. Without it, generates all of "+
				strings.Join(protocol.Files, ", ")+". "+
				"Set `write` to save them to the output directory; unchanged files are left alone.",
		),
		mcp.WithString("file",
			mcp.Description("One of "+strings.Join(protocol.Files, ", ")+". Omit for all."),
		),
		mcp.WithBoolean("write",
			mcp.Description("Write the documents to disk instead of returning them"),
		),
	)
}

// Handle processes the leo_generate_document tool call.
func (t *GenerateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	file := req.GetString("file", "")
	write := req.GetBool("write", false)

	data, err := t.data.LoadData(ctx, timeNow())
	if err != nil {
		return nil, fmt.Errorf("loading protocol data: %w", err)
	}

	docs := map[string]string{}
	if file != "" {
		doc, ok := protocol.Generate(file, data, t.mapping)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Unknown file %q. Valid files: %s", file, strings.Join(protocol.Files, ", "))), nil
		}
		if !write {
			return mcp.NewToolResultText(doc), nil
		}
		docs[file] = doc
	} else {
		docs = protocol.GenerateAll(data, t.mapping)
	}

	if !write {
		var sb strings.Builder
		fmt.Fprintf(&sb, "# Generated Documents (protocol %s)\n\n", data.Protocol.Version)
		sb.WriteString("| File | Bytes |\n|------|-------|\n")
		for _, f := range protocol.Files {
			fmt.Fprintf(&sb, "| `%s` | %d |\n", f, len(docs[f]))
		}
		sb.WriteString("\nCall again with `file` to read one document, or `write: true` to save them.")
		return mcp.NewToolResultText(sb.String()), nil
	}

	changed, err := protocol.WriteDocuments(t.outputDir, docs)
	if err != nil {
		return nil, fmt.Errorf("writing documents: %w", err)
	}
	if len(changed) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("All documents in `%s` are up to date.", t.outputDir)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Wrote %d file(s) to `%s`:\n\n", len(changed), t.outputDir)
	for _, f := range changed {
		fmt.Fprintf(&sb, "- `%s`\n", f)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
