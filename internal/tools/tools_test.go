package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rickfelix/ehg-leo/internal/agents"
	"github.com/rickfelix/ehg-leo/internal/audit"
	"github.com/rickfelix/ehg-leo/internal/budget"
	"github.com/rickfelix/ehg-leo/internal/protocol"
	"github.com/rickfelix/ehg-leo/internal/store"
)

// --- Test helpers ---

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

// newTestStore creates a seeded store in a temp dir and pins timeNow.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("setup: create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	orig := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = orig })

	snap := &store.Snapshot{
		Protocol: &protocol.Protocol{
			ID: "p1", Version: "4.3.1",
			Sections: []protocol.Section{
				{ID: "s1", SectionType: "governance_overview", Title: "Governance", Content: "## Governance\ngov body", OrderIndex: 1},
				{ID: "s2", SectionType: "lead_role", Title: "LEAD Role", Content: "lead body", OrderIndex: 2},
			},
		},
		VisionGaps:   []protocol.VisionGap{{PatternID: "VGAP-001", IssueSummary: "X", Severity: "medium"}},
		TokenBudgets: []budget.TokenBudget{{VentureID: "v1", Allocated: 100000, Remaining: 50000}, {VentureID: "v2", Remaining: 0}},
	}
	if _, err := s.Import(context.Background(), snap); err != nil {
		t.Fatalf("setup: import: %v", err)
	}
	return s
}

func newRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- CreateAgentTool ---

func TestCreateAgentTool_Definition(t *testing.T) {
	def := NewCreateAgentTool(nil).Definition()
	if def.Name != "leo_create_agent" {
		t.Errorf("name = %q, want leo_create_agent", def.Name)
	}
}

func TestCreateAgentTool_Handle(t *testing.T) {
	s := newTestStore(t)
	factory := agents.NewFactory(s, s, agents.WithClock(func() time.Time { return fixedNow }))
	tool := NewCreateAgentTool(factory)

	tests := []struct {
		name     string
		args     map[string]any
		wantErr  bool
		contains string
	}{
		{"success", map[string]any{"venture_id": "v1", "agent_id": "TESTING"}, false, `"budget_remaining": "50000"`},
		{"exhausted", map[string]any{"venture_id": "v2", "agent_id": "TESTING"}, true, "BUDGET_EXHAUSTED"},
		{"no venture", map[string]any{"agent_id": "TESTING"}, true, "VENTURE_REQUIRED"},
		{"no budget", map[string]any{"venture_id": "v9", "agent_id": "TESTING"}, true, "BUDGET_CONFIGURATION"},
		{"no agent", map[string]any{"venture_id": "v1"}, true, "agent_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), newRequest(tt.args))
			if err != nil {
				t.Fatalf("Handle failed: %v", err)
			}
			if isErrorResult(result) != tt.wantErr {
				t.Fatalf("IsError = %v, want %v: %s", isErrorResult(result), tt.wantErr, getResultText(result))
			}
			if !strings.Contains(getResultText(result), tt.contains) {
				t.Errorf("result should contain %q, got:\n%s", tt.contains, getResultText(result))
			}
		})
	}

	// One terminal event per call that reached the factory.
	events, err := s.RecentAuditEvents(context.Background(), "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 4 {
		t.Errorf("audit events = %d, want 4", len(events))
	}
	if events[0].Status != audit.StatusBlockedNoBudgetRecord {
		t.Errorf("newest status = %s", events[0].Status)
	}
}

// --- GenerateTool ---

func TestGenerateTool_SingleFile(t *testing.T) {
	s := newTestStore(t)
	tool := NewGenerateTool(s, protocol.DefaultFileMapping(), t.TempDir())

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{"file": protocol.LeadFile}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	for _, want := range []string{"## LEAD Role", "VGAP-001", "*Generated from database: 2026-03-14*"} {
		if !strings.Contains(text, want) {
			t.Errorf("lead document missing %q", want)
		}
	}
}

func TestGenerateTool_UnknownFile(t *testing.T) {
	tool := NewGenerateTool(newTestStore(t), protocol.DefaultFileMapping(), t.TempDir())

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{"file": "README.md"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) || !strings.Contains(getResultText(result), protocol.CoreFile) {
		t.Errorf("expected error listing valid files, got %s", getResultText(result))
	}
}

func TestGenerateTool_Summary(t *testing.T) {
	tool := NewGenerateTool(newTestStore(t), protocol.DefaultFileMapping(), t.TempDir())

	result, err := tool.Handle(context.Background(), newRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := getResultText(result)
	for _, f := range protocol.Files {
		if !strings.Contains(text, "`"+f+"`") {
			t.Errorf("summary missing %s", f)
		}
	}
}

func TestGenerateTool_WriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	tool := NewGenerateTool(newTestStore(t), protocol.DefaultFileMapping(), dir)
	req := newRequest(map[string]any{"write": true})

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if !strings.Contains(getResultText(result), "Wrote 5 file(s)") {
		t.Errorf("first write: %s", getResultText(result))
	}
	if _, err := os.Stat(filepath.Join(dir, protocol.RouterFile)); err != nil {
		t.Errorf("router not written: %v", err)
	}

	result, err = tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if !strings.Contains(getResultText(result), "up to date") {
		t.Errorf("second write should change nothing: %s", getResultText(result))
	}
}

// --- ValidateTool ---

func TestValidateTool_ReportsMissingSections(t *testing.T) {
	tool := NewValidateTool(newTestStore(t), protocol.DefaultFileMapping())

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("default mapping over a two-section protocol should report issues")
	}
	if !strings.Contains(getResultText(result), "sd_types") {
		t.Errorf("report should name missing types:\n%s", getResultText(result))
	}
}

func TestValidateTool_Clean(t *testing.T) {
	mapping := protocol.FileMapping{
		protocol.CoreFile: {Sections: []string{"governance_overview"}},
		protocol.LeadFile: {Sections: []string{"lead_role"}},
	}
	tool := NewValidateTool(newTestStore(t), mapping)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) || !strings.Contains(getResultText(result), "valid") {
		t.Errorf("expected clean result, got %s", getResultText(result))
	}
}

// --- AuditLogTool ---

func TestAuditLogTool(t *testing.T) {
	s := newTestStore(t)
	tool := NewAuditLogTool(s)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(getResultText(result), "No instantiation attempts") {
		t.Errorf("empty log: %s", getResultText(result))
	}

	factory := agents.NewFactory(s, s, agents.WithClock(func() time.Time { return fixedNow }))
	if _, err := factory.Create(context.Background(), agents.Options{VentureID: "v1", AgentID: "TESTING"}); err != nil {
		t.Fatal(err)
	}

	result, err = tool.Handle(context.Background(), newRequest(map[string]any{"venture_id": "v1", "limit": float64(5)}))
	if err != nil {
		t.Fatal(err)
	}
	text := getResultText(result)
	for _, want := range []string{"SUCCEEDED", "TESTING", "50000 (venture_token_budgets)", "2026-03-14T09:26:53Z"} {
		if !strings.Contains(text, want) {
			t.Errorf("audit log missing %q:\n%s", want, text)
		}
	}
}
