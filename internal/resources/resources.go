// Package resources implements MCP resource handlers for LEO.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (leo://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rickfelix/ehg-leo/internal/protocol"
)

// FileMappingURI addresses the active file mapping.
const FileMappingURI = "leo://protocol/file-mapping"

// Handler manages LEO resource endpoints.
type Handler struct {
	mapping protocol.FileMapping
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(mapping protocol.FileMapping) *Handler {
	return &Handler{mapping: mapping}
}

// FileMappingResource returns the MCP resource definition for the mapping.
func (h *Handler) FileMappingResource() mcp.Resource {
	return mcp.NewResource(
		FileMappingURI,
		"LEO File Mapping",
		mcp.WithResourceDescription("Section types each generated CLAUDE*.md file includes"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleFileMapping returns the active mapping as JSON.
func (h *Handler) HandleFileMapping(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(h.mapping, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling file mapping: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
