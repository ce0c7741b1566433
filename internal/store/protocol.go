package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rickfelix/ehg-leo/internal/protocol"
)

var (
	_ protocol.ProtocolStore = (*Store)(nil)
	_ protocol.LiveData      = (*Store)(nil)
)

// HotPatternLimit caps how many issue patterns HotPatterns returns.
const HotPatternLimit = 5

// ─── Protocol ────────────────────────────────────────────────────────────────

// CurrentProtocol returns the active protocol with its sections ordered by
// order_index. It returns ErrNoProtocol when nothing is active.
func (s *Store) CurrentProtocol(ctx context.Context) (protocol.Protocol, error) {
	var p protocol.Protocol
	err := s.db.QueryRowContext(ctx,
		`SELECT id, version, title FROM protocols WHERE active = 1
		 ORDER BY created_at DESC LIMIT 1`,
	).Scan(&p.ID, &p.Version, &p.Title)
	if errors.Is(err, sql.ErrNoRows) {
		return protocol.Protocol{}, ErrNoProtocol
	}
	if err != nil {
		return protocol.Protocol{}, fmt.Errorf("store: current protocol: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_type, title, content, order_index
		 FROM protocol_sections WHERE protocol_id = ?
		 ORDER BY order_index, id`, p.ID)
	if err != nil {
		return protocol.Protocol{}, fmt.Errorf("store: protocol sections: %w", err)
	}
	defer rows.Close()

	p.Sections = []protocol.Section{}
	for rows.Next() {
		var sec protocol.Section
		if err := rows.Scan(&sec.ID, &sec.SectionType, &sec.Title, &sec.Content, &sec.OrderIndex); err != nil {
			return protocol.Protocol{}, fmt.Errorf("store: scan section: %w", err)
		}
		p.Sections = append(p.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return protocol.Protocol{}, fmt.Errorf("store: iterate sections: %w", err)
	}
	return p, nil
}

// SaveProtocol stores p with its sections and makes it the active protocol.
// Sections of a previously saved protocol with the same ID are replaced.
func (s *Store) SaveProtocol(ctx context.Context, p protocol.Protocol) error {
	if p.ID == "" {
		return fmt.Errorf("store: save protocol: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: save protocol: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveProtocolTx(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: save protocol: commit: %w", err)
	}
	return nil
}

func saveProtocolTx(ctx context.Context, tx *sql.Tx, p protocol.Protocol) error {
	if _, err := tx.ExecContext(ctx, `UPDATE protocols SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("store: save protocol: deactivate: %w", err)
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO protocols (id, version, title, active, created_at)
		 VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   version = excluded.version,
		   title = excluded.title,
		   active = 1,
		   created_at = excluded.created_at`,
		p.ID, p.Version, p.Title, now().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("store: save protocol %s: %w", p.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM protocol_sections WHERE protocol_id = ?`, p.ID); err != nil {
		return fmt.Errorf("store: save protocol: clear sections: %w", err)
	}
	for i, sec := range p.Sections {
		id := sec.ID
		if id == "" {
			id = fmt.Sprintf("%s-%d", p.ID, i)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO protocol_sections (id, protocol_id, section_type, title, content, order_index)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.ID, sec.SectionType, sec.Title, sec.Content, sec.OrderIndex,
		)
		if err != nil {
			return fmt.Errorf("store: save section %s: %w", id, err)
		}
	}
	return nil
}

// ─── Live data ───────────────────────────────────────────────────────────────

// Agents returns the phase agents ordered by code.
func (s *Store) Agents(ctx context.Context) ([]protocol.Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT agent_code, name, responsibilities, total_percentage
		 FROM leo_agents ORDER BY agent_code`)
	if err != nil {
		return nil, fmt.Errorf("store: query agents: %w", err)
	}
	defer rows.Close()

	out := []protocol.Agent{}
	for rows.Next() {
		var a protocol.Agent
		if err := rows.Scan(&a.Code, &a.Name, &a.Description, &a.Percentage); err != nil {
			return nil, fmt.Errorf("store: scan agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SubAgents returns the sub-agents, highest priority first.
func (s *Store) SubAgents(ctx context.Context) ([]protocol.SubAgent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, description, priority, activation_type
		 FROM leo_sub_agents ORDER BY priority DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("store: query sub-agents: %w", err)
	}
	defer rows.Close()

	out := []protocol.SubAgent{}
	for rows.Next() {
		var a protocol.SubAgent
		if err := rows.Scan(&a.Code, &a.Name, &a.Description, &a.Priority, &a.Activation); err != nil {
			return nil, fmt.Errorf("store: scan sub-agent: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// HotPatterns returns the most frequent issue patterns.
func (s *Store) HotPatterns(ctx context.Context) ([]protocol.HotPattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern_id, category, severity, issue_summary, occurrence_count, trend
		 FROM issue_patterns ORDER BY occurrence_count DESC, pattern_id LIMIT ?`, HotPatternLimit)
	if err != nil {
		return nil, fmt.Errorf("store: query issue patterns: %w", err)
	}
	defer rows.Close()

	out := []protocol.HotPattern{}
	for rows.Next() {
		var p protocol.HotPattern
		if err := rows.Scan(&p.PatternID, &p.Category, &p.Severity, &p.IssueSummary, &p.OccurrenceCount, &p.Trend); err != nil {
			return nil, fmt.Errorf("store: scan issue pattern: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentRetrospectives returns up to limit retrospectives, newest first.
func (s *Store) RecentRetrospectives(ctx context.Context, limit int) ([]protocol.Retrospective, error) {
	if limit <= 0 {
		limit = protocol.DefaultRetrospectiveLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT sd_id, title, key_learnings, quality_score, conducted_date
		 FROM retrospectives ORDER BY conducted_date DESC, sd_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query retrospectives: %w", err)
	}
	defer rows.Close()

	out := []protocol.Retrospective{}
	for rows.Next() {
		var (
			r       protocol.Retrospective
			lessons string
		)
		if err := rows.Scan(&r.SDID, &r.Title, &lessons, &r.QualityScore, &r.ConductedAt); err != nil {
			return nil, fmt.Errorf("store: scan retrospective: %w", err)
		}
		if err := json.Unmarshal([]byte(lessons), &r.KeyLessons); err != nil {
			return nil, fmt.Errorf("store: decode key learnings of %s: %w", r.SDID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// VisionGapInsights returns the open vision gaps ordered by pattern ID.
func (s *Store) VisionGapInsights(ctx context.Context) ([]protocol.VisionGap, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pattern_id, issue_summary, severity FROM vision_gaps ORDER BY pattern_id`)
	if err != nil {
		return nil, fmt.Errorf("store: query vision gaps: %w", err)
	}
	defer rows.Close()

	out := []protocol.VisionGap{}
	for rows.Next() {
		var g protocol.VisionGap
		if err := rows.Scan(&g.PatternID, &g.IssueSummary, &g.Severity); err != nil {
			return nil, fmt.Errorf("store: scan vision gap: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// LoadData bundles the active protocol and all live data for one
// generation run.
func (s *Store) LoadData(ctx context.Context, generatedAt time.Time) (protocol.Data, error) {
	return protocol.Collect(ctx, s, s, generatedAt)
}
