package protocol

import (
	"fmt"
	"strings"
)

// Truncation budgets for free-text table fields.
const (
	descriptionWidth = 80
	summaryWidth     = 60
	lessonWidth      = 80
)

// Headings of the auxiliary blocks.
const (
	AgentTableHeading    = "Agent Responsibilities"
	SubAgentTableHeading = "Available Sub-Agents"
	HotPatternsHeading   = "Hot Issue Patterns"
	RecentLessonsHeading = "Recent Lessons"
	LeadVisionHeading    = "Current Vision Gaps"
	ExecVisionHeading    = "Implementation Reminders — Active Vision Gaps"
)

// AgentTable renders the phase agents and their workload split.
func AgentTable(agents []Agent) string {
	if len(agents) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("| Agent | Code | Responsibilities | % Split |\n")
	sb.WriteString("|-------|------|------------------|---------|\n")
	for _, a := range agents {
		fmt.Fprintf(&sb, "| %s | %s | %s | %d%% |\n",
			cell(a.Name), cell(a.Code), cell(truncate(a.Description, descriptionWidth)), a.Percentage)
	}
	return headed(AgentTableHeading, sb.String())
}

// SubAgentTable renders the available sub-agents.
func SubAgentTable(subAgents []SubAgent) string {
	if len(subAgents) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("| Sub-Agent | Code | Purpose | Priority |\n")
	sb.WriteString("|-----------|------|---------|----------|\n")
	for _, s := range subAgents {
		fmt.Fprintf(&sb, "| %s | %s | %s | %d |\n",
			cell(s.Name), cell(s.Code), cell(truncate(s.Description, descriptionWidth)), s.Priority)
	}
	return headed(SubAgentTableHeading, sb.String())
}

// HotPatterns renders recurring issue patterns.
func HotPatterns(patterns []HotPattern) string {
	if len(patterns) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("| Pattern | Category | Severity | Count | Trend | Summary |\n")
	sb.WriteString("|---------|----------|----------|-------|-------|---------|\n")
	for _, p := range patterns {
		trend := p.Trend
		if trend == "" {
			trend = "-"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %d | %s | %s |\n",
			cell(p.PatternID), cell(p.Category), cell(p.Severity), p.OccurrenceCount,
			cell(trend), cell(truncate(p.IssueSummary, summaryWidth)))
	}
	return headed(HotPatternsHeading, sb.String())
}

// RecentLessons renders the key learnings of recent retrospectives.
func RecentLessons(retros []Retrospective) string {
	if len(retros) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, r := range retros {
		label := r.SDID
		if label == "" {
			label = "retrospective"
		}
		fmt.Fprintf(&sb, "- **%s** %s", label, truncate(r.Title, lessonWidth))
		if r.QualityScore > 0 {
			fmt.Fprintf(&sb, " (quality %d)", r.QualityScore)
		}
		sb.WriteString("\n")
		for _, lesson := range r.KeyLessons {
			if strings.TrimSpace(lesson) == "" {
				continue
			}
			fmt.Fprintf(&sb, "  - %s\n", truncate(strings.Join(strings.Fields(lesson), " "), lessonWidth))
		}
	}
	return headed(RecentLessonsHeading, sb.String())
}

// LeadVisionGaps renders vision gaps as a table for the LEAD document.
func LeadVisionGaps(gaps []VisionGap) string {
	if len(gaps) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("| Pattern | Issue | Severity |\n")
	sb.WriteString("|---------|-------|----------|\n")
	for _, g := range gaps {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n",
			cell(g.PatternID), cell(truncate(g.IssueSummary, descriptionWidth)), cell(g.Severity))
	}
	return headed(LeadVisionHeading, sb.String())
}

// ExecVisionGaps renders vision gaps as reminders for the EXEC document.
func ExecVisionGaps(gaps []VisionGap) string {
	if len(gaps) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, g := range gaps {
		fmt.Fprintf(&sb, "- **%s**: %s\n", g.PatternID, truncate(strings.Join(strings.Fields(g.IssueSummary), " "), descriptionWidth))
	}
	return headed(ExecVisionHeading, sb.String())
}
