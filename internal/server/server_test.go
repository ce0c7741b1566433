package server

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/rickfelix/ehg-leo/internal/agents"
	"github.com/rickfelix/ehg-leo/internal/budget"
	"github.com/rickfelix/ehg-leo/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Storage.DataDir = t.TempDir()
	cfg.Generator.OutputDir = t.TempDir()
	return cfg
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBuild_WiresStoreAndFactory(t *testing.T) {
	deps, cleanup, err := Build(testConfig(t), discard())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	if err := deps.Store.SetTokenBudget(ctx, budget.TokenBudget{VentureID: "v1", Allocated: 10, Remaining: 10}); err != nil {
		t.Fatal(err)
	}
	agent, err := deps.Factory.Create(ctx, agents.Options{VentureID: "v1", AgentID: "TESTING"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !agent.BudgetValidated() {
		t.Error("agent should be validated")
	}

	events, err := deps.Store.RecentAuditEvents(ctx, "v1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("audit events in store = %d, want 1", len(events))
	}
}

func TestBuild_StartedEventsFromConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit.EmitStarted = true
	deps, cleanup, err := Build(cfg, discard())
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	ctx := context.Background()
	_, _ = deps.Factory.Create(ctx, agents.Options{VentureID: "v1", AgentID: "TESTING"})

	events, err := deps.Store.RecentAuditEvents(ctx, "v1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("events = %d, want STARTED plus terminal", len(events))
	}
}

func TestBuild_BadMapping(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generator.FileMapping = filepath.Join(t.TempDir(), "missing.yaml")
	if _, cleanup, err := Build(cfg, discard()); err == nil {
		cleanup()
		t.Error("expected error for missing mapping file")
	}
}

func TestBuild_UnreachableNATSIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audit.NATSURL = "nats://127.0.0.1:1"
	deps, cleanup, err := Build(cfg, discard())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	defer cleanup()
	if deps.Factory == nil {
		t.Error("factory should still be built")
	}
}

func TestNew_CreatesServer(t *testing.T) {
	deps, cleanup, err := Build(testConfig(t), discard())
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if New(deps) == nil {
		t.Fatal("New() returned nil")
	}
}
