package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rickfelix/ehg-leo/internal/agents"
)

// CreateAgentTool handles the leo_create_agent MCP tool.
// It is the MCP entry point to the budgeted agent factory.
type CreateAgentTool struct {
	factory AgentCreator
}

// NewCreateAgentTool creates a CreateAgentTool backed by factory.
func NewCreateAgentTool(factory AgentCreator) *CreateAgentTool {
	return &CreateAgentTool{factory: factory}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateAgentTool) Definition() mcp.Tool {
	return mcp.NewTool("leo_create_agent",
		mcp.WithDescription(
			"Create a sub-agent scoped to a venture. The venture must have a token "+
				"or phase budget with a positive balance. Every call is written to the "+
				"instantiation audit log. Venture, budget and configuration failures "+
				"are permanent: do not retry them, escalate to a human.",
		),
		mcp.WithString("venture_id",
			mcp.Required(),
			mcp.Description("Venture the sub-agent works for. There is no ventureless mode."),
		),
		mcp.WithString("agent_id",
			mcp.Required(),
			mcp.Description("Sub-agent code, e.g. TESTING or DATABASE"),
		),
		mcp.WithString("agent_name",
			mcp.Description("Human-readable name. Defaults to agent_id."),
		),
		mcp.WithString("agent_type",
			mcp.Description("Optional sub-agent type"),
		),
	)
}

// Handle processes the leo_create_agent tool call.
func (t *CreateAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := agents.Options{
		VentureID: req.GetString("venture_id", ""),
		AgentID:   req.GetString("agent_id", ""),
		AgentName: req.GetString("agent_name", ""),
		AgentType: req.GetString("agent_type", ""),
	}
	if opts.AgentID == "" && opts.AgentName == "" {
		return mcp.NewToolResultError("agent_id is required"), nil
	}

	agent, err := t.factory.Create(ctx, opts)
	if err != nil {
		var ierr agents.InstantiationError
		if errors.As(err, &ierr) {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %v. Not retryable.", failureKind(ierr), err)), nil
		}
		return nil, fmt.Errorf("creating sub-agent: %w", err)
	}

	return jsonResult(agent.Metadata())
}

// failureKind names the typed failure for the tool response.
func failureKind(err agents.InstantiationError) string {
	switch err.(type) {
	case *agents.VentureRequiredError:
		return "VENTURE_REQUIRED"
	case *agents.BudgetExhaustedError:
		return "BUDGET_EXHAUSTED"
	case *agents.BudgetConfigurationError:
		return "BUDGET_CONFIGURATION"
	default:
		return "INSTANTIATION_FAILED"
	}
}
