// Package sanitize cleans free-text fields that end up in terminal output and
// in the QA report prompt. It strips control characters, XML/HTML tags and
// markdown structure so a label cannot pose as part of the prompt.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLabelLength is the maximum allowed length of a label, in runes.
const MaxLabelLength = 120

// Pre-compiled regular expressions for performance.
var (
	// reXMLTag matches XML/HTML tags including those with attributes and self-closing tags.
	// It also matches XML processing instructions like <?xml ...?>.
	reXMLTag = regexp.MustCompile(`<[/?!]?[a-zA-Z][a-zA-Z0-9]*(?:\s+[^>]*)?/?>|<\?[^?]*\?>`)

	// reMarkdownHeading matches markdown heading markers at the start of the label.
	reMarkdownHeading = regexp.MustCompile(`^#{1,6}\s+`)

	// reTripleBacktick matches triple (or more) backtick sequences used in code fences.
	reTripleBacktick = regexp.MustCompile("```+")

	// reWhitespace matches runs of whitespace, including newlines.
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Label sanitizes an investigation label for storage and display.
//
// The pipeline runs in this order:
//  1. Strip ASCII control characters (newlines and tabs become spaces)
//  2. Strip XML/HTML tags
//  3. Collapse whitespace to single spaces
//  4. Drop a leading markdown heading marker
//  5. Collapse triple backticks to a single backtick
//  6. Trim and truncate to MaxLabelLength runes
func Label(input string) string {
	if input == "" {
		return ""
	}

	s := stripControlChars(input)
	s = reXMLTag.ReplaceAllString(s, "")
	s = reWhitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = reMarkdownHeading.ReplaceAllString(s, "")
	s = reTripleBacktick.ReplaceAllString(s, "`")

	if utf8.RuneCountInString(s) > MaxLabelLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxLabelLength]))
	}
	return s
}

// stripControlChars removes ASCII control characters (0x00-0x1F, 0x7F).
// Newlines and tabs are turned into spaces so words stay separated.
func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t' || r == '\r':
			b.WriteRune(' ')
		case r < 0x20 || r == 0x7f:
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
