// Package tools implements the LEO MCP tool handlers.
//
// Each tool receives its dependencies through its struct (DIP) and exposes
// Definition() for registration and Handle() as the mcp-go handler.
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on the small interfaces below, not on *store.Store
// - OCP: new tools are added without modifying existing ones
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rickfelix/ehg-leo/internal/agents"
	"github.com/rickfelix/ehg-leo/internal/audit"
	"github.com/rickfelix/ehg-leo/internal/protocol"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// AgentCreator creates budget-validated sub-agents.
type AgentCreator interface {
	Create(ctx context.Context, opts agents.Options) (*agents.SubAgent, error)
}

// DataSource loads everything one generation run needs.
type DataSource interface {
	LoadData(ctx context.Context, generatedAt time.Time) (protocol.Data, error)
}

// AuditReader reads the instantiation audit log.
type AuditReader interface {
	RecentAuditEvents(ctx context.Context, ventureID string, limit int) ([]audit.Event, error)
}

// jsonResult marshals v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
