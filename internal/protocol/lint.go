package protocol

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one markdown heading found in a document.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

var markdown = goldmark.New()

// Headings parses md and returns its headings in document order.
func Headings(md string) []Heading {
	src := []byte(md)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var out []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var b bytes.Buffer
		inlineText(h, src, &b)
		out = append(out, Heading{Level: h.Level, Text: strings.TrimSpace(b.String())})
		return ast.WalkSkipChildren, nil
	})
	return out
}

// DuplicateHeadings returns the level-2 heading texts that occur more than
// once in md, in order of first occurrence.
func DuplicateHeadings(md string) []string {
	seen := make(map[string]int)
	var order []string
	for _, h := range Headings(md) {
		if h.Level != 2 {
			continue
		}
		if seen[h.Text] == 0 {
			order = append(order, h.Text)
		}
		seen[h.Text]++
	}

	var dups []string
	for _, t := range order {
		if seen[t] > 1 {
			dups = append(dups, t)
		}
	}
	return dups
}

func inlineText(n ast.Node, src []byte, b *bytes.Buffer) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			inlineText(c, src, b)
		}
	}
}
