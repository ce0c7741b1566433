package protocol

import "fmt"

// Canonical output filenames.
const (
	RouterFile = "CLAUDE.md"
	CoreFile   = "CLAUDE_CORE.md"
	LeadFile   = "CLAUDE_LEAD.md"
	PlanFile   = "CLAUDE_PLAN.md"
	ExecFile   = "CLAUDE_EXEC.md"
)

// RouterSectionType is the section type the router document embeds. It is
// owned by the router and should not appear in any FileMapping entry.
const RouterSectionType = "session_prologue"

// Files lists every generated document in generation order.
var Files = []string{RouterFile, CoreFile, LeadFile, PlanFile, ExecFile}

const primeDirective = `## ⚠️ PRIME DIRECTIVE

Every Strategic Directive moves through LEAD → PLAN → EXEC, in that order.
Work only from the context file that matches your current phase, and never
start implementation before the PLAN phase has handed off an approved PRD.
Sub-agents are created through the budgeted agent factory and always belong
to a venture; there is no ventureless fallback.`

const contextLoading = "## Context Loading\n\n" +
	"| File | Load when |\n" +
	"|------|-----------|\n" +
	"| `" + CoreFile + "` | Always, at the start of every session |\n" +
	"| `" + LeadFile + "` | LEAD phase: directive approval and strategic validation |\n" +
	"| `" + PlanFile + "` | PLAN phase: PRD creation, verification and handoffs |\n" +
	"| `" + ExecFile + "` | EXEC phase: implementation and testing |\n" +
	"\n" +
	"Load only what the current phase needs. Each file is generated from the\n" +
	"protocol database; edit the database, not the files."

// GenerateRouter renders CLAUDE.md: the Prime Directive, the context loading
// table and any session prologue sections.
func GenerateRouter(data Data) string {
	blocks := []string{
		"# " + RouterFile + " - LEO Protocol Context Router",
		primeDirective,
		contextLoading,
	}
	blocks = append(blocks, formatSections(sectionsOfType(data.Protocol.Sections, RouterSectionType))...)
	blocks = append(blocks, footer(data, "first, then the phase file named above"))
	return joinBlocks(blocks...)
}

// GenerateCore renders CLAUDE_CORE.md.
func GenerateCore(data Data, mapping FileMapping) string {
	return assemble(CoreFile, "LEO Protocol Core Context", data, mapping,
		"at the start of every session",
		AgentTable(data.Agents),
		SubAgentTable(data.SubAgents),
		HotPatterns(data.HotPatterns),
		RecentLessons(data.RecentRetrospectives),
	)
}

// GenerateLead renders CLAUDE_LEAD.md.
func GenerateLead(data Data, mapping FileMapping) string {
	return assemble(LeadFile, "LEAD Phase Operations", data, mapping,
		"when working in the LEAD phase",
		LeadVisionGaps(data.VisionGapInsights),
	)
}

// GeneratePlan renders CLAUDE_PLAN.md.
func GeneratePlan(data Data, mapping FileMapping) string {
	return assemble(PlanFile, "PLAN Phase Operations", data, mapping,
		"when working in the PLAN phase",
	)
}

// GenerateExec renders CLAUDE_EXEC.md.
func GenerateExec(data Data, mapping FileMapping) string {
	return assemble(ExecFile, "EXEC Phase Operations", data, mapping,
		"when working in the EXEC phase",
		ExecVisionGaps(data.VisionGapInsights),
	)
}

// Generate renders one document by filename. ok is false for names that
// are not in Files.
func Generate(file string, data Data, mapping FileMapping) (doc string, ok bool) {
	switch file {
	case RouterFile:
		return GenerateRouter(data), true
	case CoreFile:
		return GenerateCore(data, mapping), true
	case LeadFile:
		return GenerateLead(data, mapping), true
	case PlanFile:
		return GeneratePlan(data, mapping), true
	case ExecFile:
		return GenerateExec(data, mapping), true
	default:
		return "", false
	}
}

// GenerateAll renders every document, keyed by filename.
func GenerateAll(data Data, mapping FileMapping) map[string]string {
	docs := make(map[string]string, len(Files))
	for _, f := range Files {
		docs[f], _ = Generate(f, data, mapping)
	}
	return docs
}

// assemble is the shared shape of the mapped documents: title, mapped
// sections in protocol order, auxiliary blocks, footer.
func assemble(file, title string, data Data, mapping FileMapping, loadHint string, aux ...string) string {
	blocks := []string{"# " + file + " - " + title}
	blocks = append(blocks, formatSections(SectionsByMapping(data.Protocol.Sections, file, mapping))...)
	blocks = append(blocks, aux...)
	blocks = append(blocks, footer(data, loadHint))
	return joinBlocks(blocks...)
}

// footer is the fixed trailer with the protocol version.
func footer(data Data, loadHint string) string {
	version := data.Protocol.Version
	if version == "" {
		version = "unknown"
	}
	out := "---\n\n"
	if !data.GeneratedAt.IsZero() {
		out += fmt.Sprintf("*Generated from database: %s*\n", data.GeneratedAt.UTC().Format("2006-01-02"))
	}
	out += fmt.Sprintf("*Protocol Version: %s*\n", version)
	out += fmt.Sprintf("*Load this file %s*", loadHint)
	return out
}
