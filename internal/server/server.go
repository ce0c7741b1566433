// Package server wires all MCP components and creates the server instance.
//
// This is the composition root (DIP): it creates concrete implementations
// and injects them into the tools/prompts/resources that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rickfelix/ehg-leo/internal/agents"
	"github.com/rickfelix/ehg-leo/internal/audit"
	"github.com/rickfelix/ehg-leo/internal/config"
	"github.com/rickfelix/ehg-leo/internal/prompts"
	"github.com/rickfelix/ehg-leo/internal/protocol"
	"github.com/rickfelix/ehg-leo/internal/resources"
	"github.com/rickfelix/ehg-leo/internal/store"
	"github.com/rickfelix/ehg-leo/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Deps holds the shared dependencies the MCP server and the CLI both use.
type Deps struct {
	Config  *config.Config
	Logger  *slog.Logger
	Store   *store.Store
	Mapping protocol.FileMapping
	Factory *agents.Factory
}

// Build opens the store and creates the agent factory.
//
// Audit events always go to the store. When audit.nats_url is set they are
// also published to NATS; a NATS connection failure is logged and the
// server runs with the store sink alone.
//
// The returned cleanup function closes the NATS connection and the store.
// It is always non-nil and safe to call.
func Build(cfg *config.Config, logger *slog.Logger) (*Deps, func(), error) {
	mapping, err := cfg.FileMapping()
	if err != nil {
		return nil, noop, fmt.Errorf("loading file mapping: %w", err)
	}

	st, err := store.New(cfg.StoreConfig())
	if err != nil {
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}

	sinks := audit.MultiSink{st}
	closers := []func() error{st.Close}

	if cfg.Audit.NATSURL != "" {
		ns, err := audit.DialNATS(cfg.Audit.NATSURL, cfg.Audit.NATSSubject)
		if err != nil {
			logger.Warn("NATS audit fan-out disabled", "url", cfg.Audit.NATSURL, "error", err)
		} else {
			sinks = append(sinks, ns)
			closers = append([]func() error{ns.Close}, closers...)
			logger.Info("publishing audit events to NATS", "subject", ns.Subject())
		}
	}

	factory := agents.NewFactory(st, sinks,
		agents.WithLogger(logger),
		agents.WithStartedEvents(cfg.Audit.EmitStarted),
	)

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("cleanup failed", "error", err)
			}
		}
	}

	return &Deps{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Mapping: mapping,
		Factory: factory,
	}, cleanup, nil
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
func New(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"leo",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	createAgent := tools.NewCreateAgentTool(deps.Factory)
	s.AddTool(createAgent.Definition(), createAgent.Handle)

	generate := tools.NewGenerateTool(deps.Store, deps.Mapping, deps.Config.Generator.OutputDir)
	s.AddTool(generate.Definition(), generate.Handle)

	validate := tools.NewValidateTool(deps.Store, deps.Mapping)
	s.AddTool(validate.Definition(), validate.Handle)

	auditLog := tools.NewAuditLogTool(deps.Store)
	s.AddTool(auditLog.Definition(), auditLog.Handle)

	// --- Register prompts ---

	regenerate := prompts.NewRegeneratePrompt()
	s.AddPrompt(regenerate.Definition(), regenerate.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(deps.Mapping)
	s.AddResource(resourceHandler.FileMappingResource(), resourceHandler.HandleFileMapping)

	return s
}

// noop is the cleanup returned when nothing was opened.
func noop() {}

// serverInstructions tells the host how to use the LEO tools.
func serverInstructions() string {
	return `You have access to LEO, the protocol engine behind the LEAD → PLAN → EXEC workflow.

## SUB-AGENTS

Create every sub-agent with leo_create_agent. A venture_id is mandatory and the
venture must have a positive token or phase budget. VENTURE_REQUIRED,
BUDGET_EXHAUSTED and BUDGET_CONFIGURATION failures are permanent: do not retry,
report them to the user. Any other error may be transient.

## CONTEXT FILES

CLAUDE.md, CLAUDE_CORE.md, CLAUDE_LEAD.md, CLAUDE_PLAN.md and CLAUDE_EXEC.md are
generated from the protocol database. Never edit them by hand. Use
leo_validate_mapping before leo_generate_document, and leo_audit_log to see
recent instantiation attempts.`
}
