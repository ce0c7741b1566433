package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rickfelix/ehg-leo/internal/budget"
)

var _ budget.Store = (*Store)(nil)

// TokenBudget returns the venture-wide budget, or nil when none is recorded.
func (s *Store) TokenBudget(ctx context.Context, ventureID string) (*budget.TokenBudget, error) {
	b := &budget.TokenBudget{}
	err := s.db.QueryRowContext(ctx,
		`SELECT venture_id, budget_allocated, budget_remaining
		 FROM venture_token_budgets WHERE venture_id = ?`, ventureID,
	).Scan(&b.VentureID, &b.Allocated, &b.Remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: token budget %s: %w", ventureID, err)
	}
	return b, nil
}

// PhaseBudget returns the budget of the venture's highest phase, or nil when
// the venture has no phase budgets.
func (s *Store) PhaseBudget(ctx context.Context, ventureID string) (*budget.PhaseBudget, error) {
	b := &budget.PhaseBudget{}
	err := s.db.QueryRowContext(ctx,
		`SELECT venture_id, phase, budget_allocated, budget_remaining
		 FROM venture_phase_budgets WHERE venture_id = ?
		 ORDER BY phase DESC LIMIT 1`, ventureID,
	).Scan(&b.VentureID, &b.Phase, &b.Allocated, &b.Remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: phase budget %s: %w", ventureID, err)
	}
	return b, nil
}

// SetTokenBudget inserts or replaces a venture-wide budget.
func (s *Store) SetTokenBudget(ctx context.Context, b budget.TokenBudget) error {
	if !budget.HasVenture(b.VentureID) {
		return fmt.Errorf("store: token budget: venture_id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO venture_token_budgets (venture_id, budget_allocated, budget_remaining, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(venture_id) DO UPDATE SET
		   budget_allocated = excluded.budget_allocated,
		   budget_remaining = excluded.budget_remaining,
		   updated_at = excluded.updated_at`,
		b.VentureID, b.Allocated, b.Remaining, now().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("store: set token budget %s: %w", b.VentureID, err)
	}
	return nil
}

// SetPhaseBudget inserts or replaces the budget of one venture phase.
func (s *Store) SetPhaseBudget(ctx context.Context, b budget.PhaseBudget) error {
	if !budget.HasVenture(b.VentureID) {
		return fmt.Errorf("store: phase budget: venture_id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO venture_phase_budgets (venture_id, phase, budget_allocated, budget_remaining, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(venture_id, phase) DO UPDATE SET
		   budget_allocated = excluded.budget_allocated,
		   budget_remaining = excluded.budget_remaining,
		   updated_at = excluded.updated_at`,
		b.VentureID, b.Phase, b.Allocated, b.Remaining, now().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("store: set phase budget %s/%d: %w", b.VentureID, b.Phase, err)
	}
	return nil
}
