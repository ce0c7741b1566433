package protocol

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// FormatSection renders a section as "## {title}\n\n{content}".
//
// Content that already starts with a "## {title}" line (case-insensitive,
// leading blank lines and surrounding whitespace allowed) has that line removed first, so the
// header appears exactly once whether or not the author embedded it.
func FormatSection(s Section) string {
	title := strings.TrimSpace(s.Title)
	content := s.Content

	if title != "" {
		dup := regexp.MustCompile(`(?i)\A\s*##[ \t]+` + regexp.QuoteMeta(title) + `[ \t]*(?:\r?\n|\z)`)
		if loc := dup.FindStringIndex(content); loc != nil {
			content = strings.TrimLeft(content[loc[1]:], "\r\n")
		}
	}

	return "## " + title + "\n\n" + content
}

// SectionsByMapping returns the sections whose type is listed for fileKey,
// in the order they appear in sections. Unknown keys and empty entries
// yield an empty slice.
func SectionsByMapping(sections []Section, fileKey string, mapping FileMapping) []Section {
	entry, ok := mapping[fileKey]
	if !ok || len(entry.Sections) == 0 {
		return []Section{}
	}

	allowed := make(map[string]bool, len(entry.Sections))
	for _, t := range entry.Sections {
		allowed[t] = true
	}

	out := make([]Section, 0, len(entry.Sections))
	for _, s := range sections {
		if allowed[s.SectionType] {
			out = append(out, s)
		}
	}
	return out
}

// sectionsOfType is SectionsByMapping for a fixed type list.
func sectionsOfType(sections []Section, types ...string) []Section {
	return SectionsByMapping(sections, "", FileMapping{"": {Sections: types}})
}

// formatSections renders each section and joins them as blocks.
func formatSections(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, FormatSection(s))
	}
	return out
}

// headed prefixes body with a level-2 heading, or returns "" for an empty
// body. Every optional block goes through here.
func headed(heading, body string) string {
	body = strings.TrimRight(body, " \t\r\n")
	if body == "" {
		return ""
	}
	return "## " + heading + "\n\n" + body
}

// joinBlocks joins non-empty blocks with one blank line and ends the
// document with a single newline.
func joinBlocks(blocks ...string) string {
	kept := make([]string, 0, len(blocks))
	for _, b := range blocks {
		b = strings.TrimRight(b, " \t\r\n")
		if strings.TrimSpace(b) == "" {
			continue
		}
		kept = append(kept, b)
	}
	if len(kept) == 0 {
		return ""
	}
	return strings.Join(kept, "\n\n") + "\n"
}

// truncate shortens s to at most max runes, marking the cut with "...".
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= 3 {
		return string([]rune(s)[:max])
	}
	return strings.TrimRight(string([]rune(s)[:max-3]), " ") + "..."
}

// cell makes s safe inside a markdown table cell.
func cell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
