package agents

import (
	"strconv"
	"time"

	"github.com/rickfelix/ehg-leo/internal/budget"
)

// SubAgent is one venture-scoped task executor.
//
// Its fields are unexported and there is no exported constructor: the only
// way to obtain a validated instance is Factory.Create. A SubAgent built any
// other way (for example the zero value) reports BudgetValidated() == false.
type SubAgent struct {
	id              string
	agentID         string
	name            string
	agentType       string
	ventureID       string
	createdAt       time.Time
	budgetRemaining int64
	budgetSource    budget.Source
	budgetPhase     *int
	budgetValidated bool
}

// newSubAgent is called by Factory.Create after every check has passed.
func newSubAgent(id string, opts Options, rec *budget.Record, now time.Time) *SubAgent {
	return &SubAgent{
		id:              id,
		agentID:         opts.agentID(),
		name:            opts.displayName(),
		agentType:       opts.AgentType,
		ventureID:       opts.VentureID,
		createdAt:       now,
		budgetRemaining: rec.Remaining,
		budgetSource:    rec.Source,
		budgetPhase:     rec.Phase,
		budgetValidated: true,
	}
}

// ID is unique per instantiation.
func (a *SubAgent) ID() string { return a.id }

// AgentID is the caller-supplied agent identifier.
func (a *SubAgent) AgentID() string { return a.agentID }

func (a *SubAgent) Name() string         { return a.name }
func (a *SubAgent) Type() string         { return a.agentType }
func (a *SubAgent) VentureID() string    { return a.ventureID }
func (a *SubAgent) CreatedAt() time.Time { return a.createdAt }

// BudgetRemaining is the balance observed at creation. It is a snapshot for
// audit, not a live value.
func (a *SubAgent) BudgetRemaining() int64 { return a.budgetRemaining }

// BudgetSource names the budget table that authorised creation.
func (a *SubAgent) BudgetSource() budget.Source { return a.budgetSource }

// BudgetValidated reports whether the instance came out of Factory.Create.
func (a *SubAgent) BudgetValidated() bool {
	return a != nil && a.budgetValidated
}

// Metadata returns the creation snapshot as flat strings.
func (a *SubAgent) Metadata() map[string]string {
	md := map[string]string{
		"instance_id":      a.id,
		"agent_id":         a.agentID,
		"venture_id":       a.ventureID,
		"budget_remaining": strconv.FormatInt(a.budgetRemaining, 10),
		"budget_source":    string(a.budgetSource),
		"budget_validated": strconv.FormatBool(a.budgetValidated),
	}
	if a.agentType != "" {
		md["agent_type"] = a.agentType
	}
	if a.budgetPhase != nil {
		md["budget_phase"] = strconv.Itoa(*a.budgetPhase)
	}
	if !a.createdAt.IsZero() {
		md["created_at"] = a.createdAt.UTC().Format(time.RFC3339)
	}
	return md
}
