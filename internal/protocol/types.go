// Package protocol generates the LEO Protocol context documents.
//
// A generation run takes the current Protocol (versioned, ordered sections),
// a FileMapping (which section types each output file may include) and some
// live data (agents, sub-agents, hot issue patterns, recent retrospectives,
// vision-gap insights) and produces one markdown document per output file.
//
// Design principles:
//   - Pure: every generator is a function of its inputs. No I/O, no clock,
//     no mutation of the inputs. Fetching the inputs is the caller's job.
//   - Deterministic: the same inputs give byte-identical output.
//   - Nothing is lost: each mapped section is rendered exactly once, with its
//     title header exactly once.
//   - Empty means absent: an auxiliary block with no data renders as "",
//     never as a heading with nothing under it.
package protocol

import (
	"context"
	"time"
)

// Section is one titled block of protocol content.
type Section struct {
	ID          string `json:"id" yaml:"id"`
	SectionType string `json:"section_type" yaml:"section_type"`
	Title       string `json:"title" yaml:"title"`
	Content     string `json:"content" yaml:"content"`
	OrderIndex  int    `json:"order_index" yaml:"order_index"`
}

// Protocol is the versioned container of sections.
type Protocol struct {
	ID       string    `json:"id" yaml:"id"`
	Version  string    `json:"version" yaml:"version"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// FileEntry lists the section types one output file may include.
type FileEntry struct {
	Sections []string `json:"sections" yaml:"sections"`
}

// FileMapping associates output filenames with their section types.
type FileMapping map[string]FileEntry

// Agent is one of the LEAD/PLAN/EXEC phase agents.
type Agent struct {
	Code        string `json:"agent_code" yaml:"agent_code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"responsibilities" yaml:"responsibilities"`
	Percentage  int    `json:"total_percentage" yaml:"total_percentage"`
}

// SubAgent is a specialist that the phase agents can delegate to.
type SubAgent struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Priority    int    `json:"priority" yaml:"priority"`
	Activation  string `json:"activation_type,omitempty" yaml:"activation_type,omitempty"`
}

// HotPattern is a recurring issue pattern worth warning about.
type HotPattern struct {
	PatternID       string `json:"pattern_id" yaml:"pattern_id"`
	Category        string `json:"category" yaml:"category"`
	Severity        string `json:"severity" yaml:"severity"`
	IssueSummary    string `json:"issue_summary" yaml:"issue_summary"`
	OccurrenceCount int    `json:"occurrence_count" yaml:"occurrence_count"`
	Trend           string `json:"trend,omitempty" yaml:"trend,omitempty"`
}

// Retrospective is a recently completed retrospective and its lessons.
type Retrospective struct {
	SDID         string   `json:"sd_id" yaml:"sd_id"`
	Title        string   `json:"title" yaml:"title"`
	KeyLessons   []string `json:"key_learnings" yaml:"key_learnings"`
	QualityScore int      `json:"quality_score" yaml:"quality_score"`
	ConductedAt  string   `json:"conducted_date,omitempty" yaml:"conducted_date,omitempty"`
}

// VisionGap is a known documentation or process gap to remind agents about.
type VisionGap struct {
	PatternID    string `json:"pattern_id" yaml:"pattern_id"`
	IssueSummary string `json:"issue_summary" yaml:"issue_summary"`
	Severity     string `json:"severity" yaml:"severity"`
}

// Data is everything one generation run reads.
type Data struct {
	Protocol             Protocol
	Agents               []Agent
	SubAgents            []SubAgent
	HotPatterns          []HotPattern
	RecentRetrospectives []Retrospective
	VisionGapInsights    []VisionGap

	// GeneratedAt is rendered in document footers when non-zero. Callers
	// choose it; generators never read the clock.
	GeneratedAt time.Time
}

// ProtocolStore returns the protocol currently in force.
type ProtocolStore interface {
	CurrentProtocol(ctx context.Context) (Protocol, error)
}

// LiveData supplies the auxiliary lists. Each returns an empty list, never
// nil, when there is nothing to report.
type LiveData interface {
	Agents(ctx context.Context) ([]Agent, error)
	SubAgents(ctx context.Context) ([]SubAgent, error)
	HotPatterns(ctx context.Context) ([]HotPattern, error)
	RecentRetrospectives(ctx context.Context, limit int) ([]Retrospective, error)
	VisionGapInsights(ctx context.Context) ([]VisionGap, error)
}

// DefaultRetrospectiveLimit is how many retrospectives Collect asks for.
const DefaultRetrospectiveLimit = 5

// Collect fetches a full Data bundle. generatedAt is copied into the bundle
// as is; pass the zero time for footers without a date.
func Collect(ctx context.Context, ps ProtocolStore, live LiveData, generatedAt time.Time) (Data, error) {
	p, err := ps.CurrentProtocol(ctx)
	if err != nil {
		return Data{}, err
	}
	d := Data{Protocol: p, GeneratedAt: generatedAt}
	if d.Agents, err = live.Agents(ctx); err != nil {
		return Data{}, err
	}
	if d.SubAgents, err = live.SubAgents(ctx); err != nil {
		return Data{}, err
	}
	if d.HotPatterns, err = live.HotPatterns(ctx); err != nil {
		return Data{}, err
	}
	if d.RecentRetrospectives, err = live.RecentRetrospectives(ctx, DefaultRetrospectiveLimit); err != nil {
		return Data{}, err
	}
	if d.VisionGapInsights, err = live.VisionGapInsights(ctx); err != nil {
		return Data{}, err
	}
	return d, nil
}
