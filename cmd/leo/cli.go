// Package main defines the CLI structure using kong.
package main

import (
	"io"

	"github.com/alecthomas/kong"
)

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Serve       ServeCmd       `cmd:"" help:"Start the MCP server (stdio transport)"`
	Generate    GenerateCmd    `cmd:"" help:"Generate the CLAUDE*.md context files"`
	CreateAgent CreateAgentCmd `cmd:"" name:"create-agent" help:"Create a budget-validated sub-agent"`
	Import      ImportCmd      `cmd:"" help:"Seed the database from a YAML snapshot"`
	Validate    ValidateCmd    `cmd:"" help:"Check the file mapping and lint generated files"`
	Audit       AuditCmd       `cmd:"" help:"Show recent instantiation attempts"`
	Version     VersionCmd     `cmd:"" help:"Show version information"`
}

// Globals are flags shared by every command.
type Globals struct {
	Config string `short:"c" type:"path" help:"Config file path (default ./leo.toml)"`

	// Stdout receives command output; os.Stdout when nil.
	Stdout io.Writer `kong:"-"`
}

// ServeCmd runs the MCP server.
type ServeCmd struct{}

// GenerateCmd renders the context files.
type GenerateCmd struct {
	Out    string `short:"o" type:"path" help:"Output directory (overrides config)"`
	File   string `short:"f" help:"Generate only this file, e.g. CLAUDE_LEAD.md"`
	DryRun bool   `help:"Print the documents instead of writing them"`
}

// CreateAgentCmd creates one sub-agent through the factory.
type CreateAgentCmd struct {
	Venture string `required:"" help:"Venture ID"`
	Agent   string `required:"" help:"Sub-agent code"`
	Name    string `help:"Human-readable name"`
	Type    string `help:"Sub-agent type"`
}

// ImportCmd loads a snapshot into the database.
type ImportCmd struct {
	Snapshot string `arg:"" type:"existingfile" help:"YAML snapshot file"`
}

// ValidateCmd runs the mapping checks.
type ValidateCmd struct{}

// AuditCmd lists audit events.
type AuditCmd struct {
	Venture string `help:"Only show this venture"`
	Limit   int    `short:"n" default:"20" help:"Maximum events"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
