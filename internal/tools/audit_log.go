package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// AuditLogTool handles the leo_audit_log MCP tool.
type AuditLogTool struct {
	log AuditReader
}

// NewAuditLogTool creates an AuditLogTool.
func NewAuditLogTool(log AuditReader) *AuditLogTool {
	return &AuditLogTool{log: log}
}

// Definition returns the MCP tool definition for registration.
func (t *AuditLogTool) Definition() mcp.Tool {
	return mcp.NewTool("leo_audit_log",
		mcp.WithDescription(
			"Show recent sub-agent instantiation attempts, newest first, "+
				"with their outcome and the budget seen at the time.",
		),
		mcp.WithString("venture_id",
			mcp.Description("Only show attempts for this venture"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum events to return (default 20)"),
		),
	)
}

// Handle processes the leo_audit_log tool call.
func (t *AuditLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	venture := req.GetString("venture_id", "")
	limit := req.GetInt("limit", 20)

	events, err := t.log.RecentAuditEvents(ctx, venture, limit)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	if len(events) == 0 {
		return mcp.NewToolResultText("No instantiation attempts recorded."), nil
	}

	var sb strings.Builder
	sb.WriteString("| Time | Status | Agent | Venture | Budget | Error |\n")
	sb.WriteString("|------|--------|-------|---------|--------|-------|\n")
	for _, e := range events {
		ventureCell := "—"
		if e.VentureID != nil {
			ventureCell = *e.VentureID
		}
		budgetCell := "—"
		if e.BudgetRemaining != nil {
			budgetCell = fmt.Sprintf("%d (%s)", *e.BudgetRemaining, e.BudgetSource)
		}
		errCell := e.Error
		if errCell == "" {
			errCell = "—"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
			e.Timestamp.UTC().Format(time.RFC3339), e.Status, e.AgentID, ventureCell, budgetCell, errCell)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
