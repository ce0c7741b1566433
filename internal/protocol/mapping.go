package protocol

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed mapping.yaml
var defaultMappingYAML []byte

// DefaultFileMapping returns the mapping shipped with the binary.
func DefaultFileMapping() FileMapping {
	m, err := ParseFileMapping(defaultMappingYAML)
	if err != nil {
		panic(fmt.Sprintf("protocol: embedded mapping.yaml is invalid: %v", err))
	}
	return m
}

// ParseFileMapping decodes a YAML (or JSON) file mapping.
func ParseFileMapping(data []byte) (FileMapping, error) {
	m := FileMapping{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("protocol: parse file mapping: %w", err)
	}
	return m, nil
}

// LoadFileMapping reads a file mapping from path.
func LoadFileMapping(path string) (FileMapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("protocol: read file mapping: %w", err)
	}
	return ParseFileMapping(data)
}

// Issue kinds reported by ValidateMapping.
const (
	IssueMissingSectionType = "missing_section_type"
	IssueOverlap            = "overlap"
	IssueUnknownFile        = "unknown_file"
	IssueRouterSection      = "router_section"
)

// MappingIssue is one data-integrity problem in a mapping.
type MappingIssue struct {
	Kind        string `json:"kind"`
	File        string `json:"file"`
	SectionType string `json:"section_type,omitempty"`
	Detail      string `json:"detail"`
}

func (i MappingIssue) String() string {
	return fmt.Sprintf("%s: %s", i.File, i.Detail)
}

// ValidateMapping checks a mapping against a protocol. It reports
//   - mapped section types with no section in the protocol
//   - section types claimed by more than one file (including the router)
//   - mapping keys that are not a generated file
//   - router entries other than RouterSectionType, which CLAUDE.md never renders
//
// The generators tolerate all of these; this is for authoring tools.
// Issues come back sorted by file, then section type.
func ValidateMapping(p Protocol, m FileMapping) []MappingIssue {
	present := make(map[string]bool)
	for _, s := range p.Sections {
		present[s.SectionType] = true
	}
	known := make(map[string]bool, len(Files))
	for _, f := range Files {
		known[f] = true
	}

	files := make([]string, 0, len(m))
	for f := range m {
		files = append(files, f)
	}
	sort.Strings(files)

	owner := map[string]string{RouterSectionType: RouterFile}
	var issues []MappingIssue
	for _, f := range files {
		if !known[f] {
			issues = append(issues, MappingIssue{
				Kind:   IssueUnknownFile,
				File:   f,
				Detail: "not a generated file; its sections are never rendered",
			})
		}
		for _, t := range m[f].Sections {
			if f == RouterFile && t != RouterSectionType {
				issues = append(issues, MappingIssue{
					Kind:        IssueRouterSection,
					File:        f,
					SectionType: t,
					Detail:      fmt.Sprintf("section type %q is never rendered: %s only embeds %s sections", t, RouterFile, RouterSectionType),
				})
				continue
			}
			if !present[t] {
				issues = append(issues, MappingIssue{
					Kind:        IssueMissingSectionType,
					File:        f,
					SectionType: t,
					Detail:      fmt.Sprintf("section type %q has no section in protocol %s", t, p.Version),
				})
			}
			if prev, ok := owner[t]; ok && prev != f {
				issues = append(issues, MappingIssue{
					Kind:        IssueOverlap,
					File:        f,
					SectionType: t,
					Detail:      fmt.Sprintf("section type %q is also rendered in %s", t, prev),
				})
				continue
			}
			owner[t] = f
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].SectionType < issues[j].SectionType
	})
	return issues
}
