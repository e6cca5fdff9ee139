// Package textfmt turns loosely structured plain-text posts into HTML.
//
// Text is split into paragraphs on blank lines. Each paragraph is matched
// against an ordered list of rules and the first rule that matches decides
// how it is rendered.
package textfmt

import (
	"html"
	"regexp"
	"strings"
)

// Kind is the block type a paragraph is rendered as.
type Kind int

const (
	// Paragraph is the fallback; its lines are joined with <br>.
	Paragraph Kind = iota
	// Heading is a single line containing a colon.
	Heading
	// BulletList starts with "-" or "*".
	BulletList
	// NumberedList starts with digits followed by a dot.
	NumberedList
	// Blockquote starts with ">".
	Blockquote
)

func (k Kind) String() string {
	switch k {
	case Heading:
		return "heading"
	case BulletList:
		return "bullet-list"
	case NumberedList:
		return "numbered-list"
	case Blockquote:
		return "blockquote"
	default:
		return "paragraph"
	}
}

var (
	numberedStart  = regexp.MustCompile(`^\d+\.`)
	numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)
)

type rule struct {
	kind   Kind
	match  func(p string) bool
	render func(p string, esc func(string) string) string
}

// rules is evaluated in order; the paragraph rule matches everything.
var rules = []rule{
	{
		kind: Heading,
		match: func(p string) bool {
			return strings.Contains(p, ":") && !strings.Contains(p, "\n")
		},
		render: func(p string, esc func(string) string) string {
			return "<h2>" + esc(p) + "</h2>"
		},
	},
	{
		kind: BulletList,
		match: func(p string) bool {
			return strings.HasPrefix(p, "-") || strings.HasPrefix(p, "*")
		},
		render: func(p string, esc func(string) string) string {
			// Only lines that carry a marker lose their first character;
			// unmarked continuation lines become items with only whitespace trimmed.
			return list("ul", p, esc, func(line string) string {
				if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
					line = line[1:]
				}
				return strings.TrimSpace(line)
			})
		},
	},
	{
		kind: NumberedList,
		match: func(p string) bool {
			return numberedStart.MatchString(strings.TrimSpace(p))
		},
		render: func(p string, esc func(string) string) string {
			return list("ol", p, esc, func(line string) string {
				return numberedPrefix.ReplaceAllString(line, "")
			})
		},
	},
	{
		kind: Blockquote,
		match: func(p string) bool {
			return strings.HasPrefix(p, ">")
		},
		render: func(p string, esc func(string) string) string {
			return "<blockquote>" + esc(strings.TrimSpace(p[1:])) + "</blockquote>"
		},
	},
	{
		kind:  Paragraph,
		match: func(string) bool { return true },
		render: func(p string, esc func(string) string) string {
			return "<p>" + esc(p) + "</p>"
		},
	},
}

func list(tag, p string, esc func(string) string, item func(string) string) string {
	var b strings.Builder
	b.WriteString("<" + tag + ">")
	for _, line := range strings.Split(p, "\n") {
		b.WriteString("<li>")
		b.WriteString(esc(item(line)))
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

// Classify reports which rule a single paragraph falls under.
func Classify(paragraph string) Kind {
	return match(paragraph).kind
}

func match(p string) rule {
	for _, r := range rules {
		if r.match(p) {
			return r
		}
	}
	return rules[len(rules)-1]
}

// Renderer formats plain-text posts. With Escape set, characters that are
// significant in HTML are escaped before the text is wrapped in markup.
type Renderer struct {
	Escape bool
}

// Render formats raw with escaping enabled.
func Render(raw string) string {
	return Renderer{Escape: true}.Render(raw)
}

// Render converts raw to HTML. It accepts any input; the empty string
// renders to the empty string.
func (r Renderer) Render(raw string) string {
	esc := func(s string) string { return s }
	if r.Escape {
		esc = html.EscapeString
	}

	var b strings.Builder
	for _, p := range strings.Split(raw, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		b.WriteString(match(p).render(p, esc))
	}

	out := strings.ReplaceAll(b.String(), "</p>\n<p>", "</p><p>")
	return strings.ReplaceAll(out, "\n", "<br>")
}
