// leo: LEO Protocol engine.
//
// Creates budget-validated sub-agents and generates the CLAUDE*.md
// context files from the protocol database, as a CLI and as an MCP server.
//
// Usage:
//
//	leo serve                      # Start MCP server (stdio transport)
//	leo generate -o .              # Write the context files
//	leo create-agent --venture v1 --agent TESTING
//	leo import snapshot.yaml       # Seed the database
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rickfelix/ehg-leo/internal/agents"
	"github.com/rickfelix/ehg-leo/internal/config"
	"github.com/rickfelix/ehg-leo/internal/logging"
	"github.com/rickfelix/ehg-leo/internal/protocol"
	leoserver "github.com/rickfelix/ehg-leo/internal/server"
	"github.com/rickfelix/ehg-leo/internal/store"
	"github.com/rickfelix/ehg-leo/internal/tools"
)

var (
	version = "dev"
	commit  = "unknown"
)

func init() {
	// Load .env for LEO_* overrides
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("leo"),
		kong.Description("LEO Protocol engine: budgeted sub-agents and generated context files."),
		kong.UsageOnError(),
		kongVars(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}

// open loads config and builds the shared dependencies.
func (g *Globals) open() (*leoserver.Deps, func(), error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, func() {}, err
	}
	logger, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, func() {}, err
	}
	return leoserver.Build(cfg, logger)
}

func (g *Globals) out() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

// Run starts the stdio MCP server.
func (c *ServeCmd) Run(g *Globals) error {
	deps, cleanup, err := g.open()
	defer cleanup()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	leoserver.Version = version
	return server.ServeStdio(leoserver.New(deps))
}

// Run generates and writes the context files.
func (c *GenerateCmd) Run(ctx context.Context, g *Globals) error {
	deps, cleanup, err := g.open()
	defer cleanup()
	if err != nil {
		return err
	}

	data, err := deps.Store.LoadData(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("loading protocol data: %w", err)
	}

	var docs map[string]string
	if c.File != "" {
		doc, ok := protocol.Generate(c.File, data, deps.Mapping)
		if !ok {
			return fmt.Errorf("unknown file %q (valid: %s)", c.File, strings.Join(protocol.Files, ", "))
		}
		docs = map[string]string{c.File: doc}
	} else {
		docs = protocol.GenerateAll(data, deps.Mapping)
	}

	if c.DryRun {
		for _, f := range protocol.Files {
			if doc, ok := docs[f]; ok {
				fmt.Fprintf(g.out(), "==> %s <==\n%s\n", f, doc)
			}
		}
		return nil
	}

	dir := c.Out
	if dir == "" {
		dir = deps.Config.Generator.OutputDir
	}
	changed, err := protocol.WriteDocuments(dir, docs)
	if err != nil {
		return err
	}
	if len(changed) == 0 {
		fmt.Fprintf(g.out(), "All documents in %s are up to date.\n", dir)
		return nil
	}
	for _, f := range changed {
		fmt.Fprintf(g.out(), "wrote %s\n", f)
	}
	return nil
}

// Run creates one sub-agent and prints its metadata.
func (c *CreateAgentCmd) Run(ctx context.Context, g *Globals) error {
	deps, cleanup, err := g.open()
	defer cleanup()
	if err != nil {
		return err
	}

	agent, err := deps.Factory.Create(ctx, agents.Options{
		VentureID: c.Venture,
		AgentID:   c.Agent,
		AgentName: c.Name,
		AgentType: c.Type,
	})
	if err != nil {
		var ierr agents.InstantiationError
		if errors.As(err, &ierr) {
			return fmt.Errorf("%w (not retryable)", err)
		}
		return err
	}

	data, err := json.MarshalIndent(agent.Metadata(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out(), string(data))
	return nil
}

// Run imports a snapshot.
func (c *ImportCmd) Run(ctx context.Context, g *Globals) error {
	snap, err := store.LoadSnapshot(c.Snapshot)
	if err != nil {
		return err
	}

	deps, cleanup, err := g.open()
	defer cleanup()
	if err != nil {
		return err
	}

	res, err := deps.Store.Import(ctx, snap)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.out(),
		"imported protocol %s: %d sections, %d agents, %d sub-agents, %d issue patterns, %d retrospectives, %d vision gaps, %d budgets\n",
		orDash(res.Protocol), res.Sections, res.Agents, res.SubAgents,
		res.HotPatterns, res.Retrospectives, res.VisionGaps, res.Budgets)
	return nil
}

// Run validates the mapping against the active protocol.
func (c *ValidateCmd) Run(ctx context.Context, g *Globals) error {
	deps, cleanup, err := g.open()
	defer cleanup()
	if err != nil {
		return err
	}

	data, err := deps.Store.LoadData(ctx, time.Time{})
	if err != nil {
		return fmt.Errorf("loading protocol data: %w", err)
	}

	report := tools.Validate(data, deps.Mapping)
	for _, i := range report.Issues {
		fmt.Fprintf(g.out(), "%-22s %s\n", i.Kind, i)
	}
	files := make([]string, 0, len(report.Duplicates))
	for f := range report.Duplicates {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(g.out(), "%-22s %s: %s\n", "duplicate_heading", f, strings.Join(report.Duplicates[f], ", "))
	}

	if !report.OK() {
		return fmt.Errorf("%d mapping issue(s), %d file(s) with duplicate headings", len(report.Issues), len(files))
	}
	fmt.Fprintf(g.out(), "mapping is valid for protocol %s\n", data.Protocol.Version)
	return nil
}

// Run prints recent audit events.
func (c *AuditCmd) Run(ctx context.Context, g *Globals) error {
	deps, cleanup, err := g.open()
	defer cleanup()
	if err != nil {
		return err
	}

	events, err := deps.Store.RecentAuditEvents(ctx, c.Venture, c.Limit)
	if err != nil {
		return err
	}
	for _, e := range events {
		venture := "-"
		if e.VentureID != nil {
			venture = *e.VentureID
		}
		fmt.Fprintf(g.out(), "%s  %-26s %-12s %s\n",
			e.Timestamp.UTC().Format(time.RFC3339), e.Status, e.AgentID, venture)
	}
	return nil
}

// Run prints the version.
func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out(), "leo %s (%s)\n", version, commit)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
