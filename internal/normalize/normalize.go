// Package normalize turns the text extracted from a bill version file into
// the canonical plain text that is indexed and scanned for citations.
package normalize

import (
	"regexp"
	"strings"
)

// Sentinel is the marker GPO appends to the end of every bill text.
const Sentinel = "<all>"

var (
	lineBreaks  = regexp.MustCompile(`[\n\t]`)
	whitespace  = regexp.MustCompile(`\s{2,}`)
	pageRules   = regexp.MustCompile(`_{2,}`)
	splitWords  = regexp.MustCompile(`(\w)-\s+(\w)`)
	quoteTokens = strings.NewReplacer("``", `"`, "''", `"`)
)

// Text applies the cleanup steps in order. Each step assumes the previous
// ones already ran: hyphen rejoining only sees single spaces because line
// breaks were collapsed first.
func Text(raw string) string {
	text := strings.ReplaceAll(raw, Sentinel, "")
	text = lineBreaks.ReplaceAllString(text, " ")
	text = whitespace.ReplaceAllString(text, " ")
	text = quoteTokens.Replace(text)
	text = pageRules.ReplaceAllString(text, "")
	text = splitWords.ReplaceAllString(text, "$1$2")
	return strings.TrimSpace(text)
}
