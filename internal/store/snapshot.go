package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rickfelix/ehg-leo/internal/budget"
	"github.com/rickfelix/ehg-leo/internal/protocol"
)

// Snapshot is a YAML document that seeds the database.
type Snapshot struct {
	Protocol       *protocol.Protocol       `yaml:"protocol,omitempty"`
	Agents         []protocol.Agent         `yaml:"agents,omitempty"`
	SubAgents      []protocol.SubAgent      `yaml:"sub_agents,omitempty"`
	HotPatterns    []protocol.HotPattern    `yaml:"issue_patterns,omitempty"`
	Retrospectives []protocol.Retrospective `yaml:"retrospectives,omitempty"`
	VisionGaps     []protocol.VisionGap     `yaml:"vision_gaps,omitempty"`
	TokenBudgets   []budget.TokenBudget     `yaml:"token_budgets,omitempty"`
	PhaseBudgets   []budget.PhaseBudget     `yaml:"phase_budgets,omitempty"`
}

// ImportResult holds counts of imported records.
type ImportResult struct {
	Protocol       string `json:"protocol,omitempty"`
	Sections       int    `json:"sections"`
	Agents         int    `json:"agents"`
	SubAgents      int    `json:"sub_agents"`
	HotPatterns    int    `json:"issue_patterns"`
	Retrospectives int    `json:"retrospectives"`
	VisionGaps     int    `json:"vision_gaps"`
	Budgets        int    `json:"budgets"`
}

// ParseSnapshot decodes a YAML snapshot.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: parse snapshot: %w", err)
	}
	return &snap, nil
}

// LoadSnapshot reads a YAML snapshot from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// Import writes snap in one transaction. Existing rows with the same key are
// replaced; a snapshot protocol becomes the active one.
func (s *Store) Import(ctx context.Context, snap *Snapshot) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: import: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result := &ImportResult{}
	ts := now().Format(timeFormat)

	if snap.Protocol != nil {
		if snap.Protocol.ID == "" {
			return nil, fmt.Errorf("store: import: protocol id is required")
		}
		if err := saveProtocolTx(ctx, tx, *snap.Protocol); err != nil {
			return nil, err
		}
		result.Protocol = snap.Protocol.Version
		result.Sections = len(snap.Protocol.Sections)
	}

	for _, a := range snap.Agents {
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO leo_agents (agent_code, name, responsibilities, total_percentage)
			 VALUES (?, ?, ?, ?)`,
			a.Code, a.Name, a.Description, a.Percentage); err != nil {
			return nil, fmt.Errorf("store: import agent %s: %w", a.Code, err)
		}
		result.Agents++
	}

	for _, a := range snap.SubAgents {
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO leo_sub_agents (code, name, description, priority, activation_type)
			 VALUES (?, ?, ?, ?, ?)`,
			a.Code, a.Name, a.Description, a.Priority, a.Activation); err != nil {
			return nil, fmt.Errorf("store: import sub-agent %s: %w", a.Code, err)
		}
		result.SubAgents++
	}

	for _, p := range snap.HotPatterns {
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO issue_patterns (pattern_id, category, severity, issue_summary, occurrence_count, trend)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.PatternID, p.Category, p.Severity, p.IssueSummary, p.OccurrenceCount, p.Trend); err != nil {
			return nil, fmt.Errorf("store: import issue pattern %s: %w", p.PatternID, err)
		}
		result.HotPatterns++
	}

	for _, r := range snap.Retrospectives {
		lessons := r.KeyLessons
		if lessons == nil {
			lessons = []string{}
		}
		encoded, err := json.Marshal(lessons)
		if err != nil {
			return nil, fmt.Errorf("store: import retrospective %s: %w", r.SDID, err)
		}
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO retrospectives (sd_id, title, key_learnings, quality_score, conducted_date)
			 VALUES (?, ?, ?, ?, ?)`,
			r.SDID, r.Title, string(encoded), r.QualityScore, r.ConductedAt); err != nil {
			return nil, fmt.Errorf("store: import retrospective %s: %w", r.SDID, err)
		}
		result.Retrospectives++
	}

	for _, g := range snap.VisionGaps {
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO vision_gaps (pattern_id, issue_summary, severity) VALUES (?, ?, ?)`,
			g.PatternID, g.IssueSummary, g.Severity); err != nil {
			return nil, fmt.Errorf("store: import vision gap %s: %w", g.PatternID, err)
		}
		result.VisionGaps++
	}

	for _, b := range snap.TokenBudgets {
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO venture_token_budgets (venture_id, budget_allocated, budget_remaining, updated_at)
			 VALUES (?, ?, ?, ?)`,
			b.VentureID, b.Allocated, b.Remaining, ts); err != nil {
			return nil, fmt.Errorf("store: import token budget %s: %w", b.VentureID, err)
		}
		result.Budgets++
	}

	for _, b := range snap.PhaseBudgets {
		if err := exec(ctx, tx,
			`INSERT OR REPLACE INTO venture_phase_budgets (venture_id, phase, budget_allocated, budget_remaining, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			b.VentureID, b.Phase, b.Allocated, b.Remaining, ts); err != nil {
			return nil, fmt.Errorf("store: import phase budget %s/%d: %w", b.VentureID, b.Phase, err)
		}
		result.Budgets++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: import: commit: %w", err)
	}
	return result, nil
}

func exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
