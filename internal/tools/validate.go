package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rickfelix/ehg-leo/internal/protocol"
)

// ValidateTool handles the leo_validate_mapping MCP tool.
// It checks the file mapping against the active protocol and lints the
// generated documents for repeated headings.
type ValidateTool struct {
	data    DataSource
	mapping protocol.FileMapping
}

// NewValidateTool creates a ValidateTool.
func NewValidateTool(data DataSource, mapping protocol.FileMapping) *ValidateTool {
	return &ValidateTool{data: data, mapping: mapping}
}

// Definition returns the MCP tool definition for registration.
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("leo_validate_mapping",
		mcp.WithDescription(
			"Validate the section file mapping against the active protocol: mapped "+
				"section types with no sections, section types rendered in more than one "+
				"file, and mapping keys that are not generated. Also reports duplicate "+
				"headings in the generated documents.",
		),
	)
}

// Handle processes the leo_validate_mapping tool call.
func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	data, err := t.data.LoadData(ctx, timeNow())
	if err != nil {
		return nil, fmt.Errorf("loading protocol data: %w", err)
	}

	report := Validate(data, t.mapping)
	if report.OK() {
		return mcp.NewToolResultText(fmt.Sprintf(
			"✅ Mapping is valid for protocol %s (%d sections).", data.Protocol.Version, len(data.Protocol.Sections))), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Mapping Validation: protocol %s\n\n", data.Protocol.Version)
	if len(report.Issues) > 0 {
		sb.WriteString("## Mapping Issues\n\n")
		for _, i := range report.Issues {
			fmt.Fprintf(&sb, "- **%s** %s\n", i.Kind, i)
		}
		sb.WriteString("\n")
	}
	if len(report.Duplicates) > 0 {
		sb.WriteString("## Duplicate Headings\n\n")
		for _, f := range protocol.Files {
			if dups := report.Duplicates[f]; len(dups) > 0 {
				fmt.Fprintf(&sb, "- `%s`: %s\n", f, strings.Join(dups, ", "))
			}
		}
	}
	return mcp.NewToolResultError(sb.String()), nil
}

// Report is the outcome of Validate.
type Report struct {
	Issues     []protocol.MappingIssue `json:"issues"`
	Duplicates map[string][]string     `json:"duplicate_headings"`
}

// OK reports whether nothing was found.
func (r Report) OK() bool {
	return len(r.Issues) == 0 && len(r.Duplicates) == 0
}

// Validate runs the mapping checks and the heading lint. It is shared with
// the CLI's validate command.
func Validate(data protocol.Data, mapping protocol.FileMapping) Report {
	r := Report{
		Issues:     protocol.ValidateMapping(data.Protocol, mapping),
		Duplicates: map[string][]string{},
	}
	for f, doc := range protocol.GenerateAll(data, mapping) {
		if dups := protocol.DuplicateHeadings(doc); len(dups) > 0 {
			r.Duplicates[f] = dups
		}
	}
	return r
}
