package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rickfelix/ehg-leo/internal/audit"
)

var _ audit.Sink = (*Store)(nil)

// DefaultAuditLimit caps RecentAuditEvents when limit <= 0.
const DefaultAuditLimit = 50

// Append writes one audit event. Rows are never updated or deleted.
func (s *Store) Append(ctx context.Context, e audit.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_audit_log
		   (event_type, severity, agent_id, venture_id, status, budget_remaining, budget_source, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Type, string(e.Severity), e.AgentID, e.VentureID, string(e.Status),
		e.BudgetRemaining, e.BudgetSource, e.Error, e.Timestamp.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("store: append audit event: %w", err)
	}
	return nil
}

// RecentAuditEvents returns the newest events first. An empty ventureID
// returns events for every venture, including those with no venture.
func (s *Store) RecentAuditEvents(ctx context.Context, ventureID string, limit int) ([]audit.Event, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	query := `SELECT event_type, severity, agent_id, venture_id, status, budget_remaining, budget_source, error, created_at
	          FROM agent_audit_log`
	args := []any{}
	if ventureID != "" {
		query += ` WHERE venture_id = ?`
		args = append(args, ventureID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query audit events: %w", err)
	}
	defer rows.Close()

	events := []audit.Event{}
	for rows.Next() {
		var (
			e         audit.Event
			severity  string
			status    string
			venture   sql.NullString
			remaining sql.NullInt64
			created   string
		)
		if err := rows.Scan(&e.Type, &severity, &e.AgentID, &venture, &status,
			&remaining, &e.BudgetSource, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("store: scan audit event: %w", err)
		}
		e.Severity = audit.Severity(severity)
		e.Status = audit.Status(status)
		if venture.Valid {
			v := venture.String
			e.VentureID = &v
		}
		if remaining.Valid {
			r := remaining.Int64
			e.BudgetRemaining = &r
		}
		if ts, err := time.Parse(timeFormat, created); err == nil {
			e.Timestamp = ts
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate audit events: %w", err)
	}
	return events, nil
}
