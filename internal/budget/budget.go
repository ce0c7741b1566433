// Package budget resolves the spendable token budget of a venture.
//
// Budgets are owned by an external allocation subsystem. This package only
// reads them: it never decrements a budget, and it makes no atomicity promise
// between a read here and a later spend elsewhere.
//
// Two sources exist, checked in priority order:
//   - the venture-wide token budget
//   - the most recent phase budget (highest phase number), as fallback
//
// A venture with neither is "unconfigured", which callers must treat as a
// zero budget (fail closed), never as unlimited.
package budget

import (
	"context"
	"strings"
)

// Source names the table a resolved budget came from.
type Source string

const (
	SourceToken Source = "venture_token_budgets"
	SourcePhase Source = "venture_phase_budgets"
)

// TokenBudget is the venture-wide budget record.
type TokenBudget struct {
	VentureID string `json:"venture_id" yaml:"venture_id"`
	Allocated int64  `json:"budget_allocated" yaml:"budget_allocated"`
	Remaining int64  `json:"budget_remaining" yaml:"budget_remaining"`
}

// PhaseBudget is a budget record scoped to one venture phase.
type PhaseBudget struct {
	VentureID string `json:"venture_id" yaml:"venture_id"`
	Phase     int    `json:"phase" yaml:"phase"`
	Allocated int64  `json:"budget_allocated" yaml:"budget_allocated"`
	Remaining int64  `json:"budget_remaining" yaml:"budget_remaining"`
}

// Record is the resolved view of whichever source answered.
type Record struct {
	VentureID string `json:"venture_id"`
	Allocated int64  `json:"budget_allocated"`
	Remaining int64  `json:"budget_remaining"`
	Phase     *int   `json:"phase,omitempty"` // nil for token budgets
	Source    Source `json:"source"`
}

// Store is the read side of the external budget store.
// Both lookups return (nil, nil) when no record exists; any error is a
// transport or data failure, not an absence.
type Store interface {
	TokenBudget(ctx context.Context, ventureID string) (*TokenBudget, error)
	// PhaseBudget returns the record with the highest phase number.
	PhaseBudget(ctx context.Context, ventureID string) (*PhaseBudget, error)
}

// Resolve looks up the budget for a venture: token budget first, then the
// most recent phase budget. It returns (nil, nil) when neither exists.
// Store errors are returned as is.
func Resolve(ctx context.Context, store Store, ventureID string) (*Record, error) {
	tb, err := store.TokenBudget(ctx, ventureID)
	if err != nil {
		return nil, err
	}
	if tb != nil {
		return &Record{
			VentureID: ventureID,
			Allocated: tb.Allocated,
			Remaining: tb.Remaining,
			Source:    SourceToken,
		}, nil
	}

	pb, err := store.PhaseBudget(ctx, ventureID)
	if err != nil {
		return nil, err
	}
	if pb != nil {
		phase := pb.Phase
		return &Record{
			VentureID: ventureID,
			Allocated: pb.Allocated,
			Remaining: pb.Remaining,
			Phase:     &phase,
			Source:    SourcePhase,
		}, nil
	}

	return nil, nil
}

// HasVenture reports whether id names a venture at all.
func HasVenture(id string) bool {
	return strings.TrimSpace(id) != ""
}

// Exhausted reports whether a resolved budget has nothing left to spend.
// Negative balances count as exhausted.
func Exhausted(r *Record) bool {
	return r == nil || r.Remaining <= 0
}
