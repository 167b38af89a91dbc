// Package plaintext derives word counts, character counts, and previews
// from HTML document bodies. The tag stripper is non-validating: unmatched
// angle brackets pass through without error, so every function is total
// over arbitrary input.
package plaintext

import "strings"

// Ellipsis is appended to previews that were truncated.
const Ellipsis = "..."

// Strip removes HTML tags from s and unescapes the small entity set used
// by the canonical document grammar. Text outside tags is kept verbatim.
func Strip(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return unescape(b.String())
}

func unescape(s string) string {
	r := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
	)
	return r.Replace(s)
}

// CountWords returns the number of whitespace-separated words in the
// tag-stripped text. Empty or whitespace-only input yields 0.
func CountWords(html string) int {
	return len(strings.Fields(Strip(html)))
}

// CountChars returns the length in runes of the tag-stripped text.
func CountChars(html string) int {
	return len([]rune(Strip(html)))
}

// Preview returns the tag-stripped text truncated to maxLen runes, with a
// trailing ellipsis when truncation occurred.
func Preview(html string, maxLen int) string {
	text := strings.TrimSpace(Strip(html))
	runes := []rune(text)
	if maxLen < 0 {
		maxLen = 0
	}
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + Ellipsis
}
