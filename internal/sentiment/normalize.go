package sentiment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	repeatedBang     = regexp.MustCompile(`!{2,}`)
	repeatedQuestion = regexp.MustCompile(`\?{2,}`)
	repeatedDots     = regexp.MustCompile(`\.{3,}`)
)

// Normalize canonicalizes text before scoring. It lowercases, trims, collapses runs
// of "!" and "?" to one, runs of three or more dots to "...", and every run of
// whitespace to a single space. Invalid UTF-8 and blank input yield "".
//
// Normalize is idempotent.
func Normalize(text string) string {
	if !utf8.ValidString(text) {
		return ""
	}

	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return ""
	}

	text = repeatedBang.ReplaceAllString(text, "!")
	text = repeatedQuestion.ReplaceAllString(text, "?")
	text = repeatedDots.ReplaceAllString(text, "...")

	return strings.Join(strings.Fields(text), " ")
}
