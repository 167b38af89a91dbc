package htmlmd

import "strings"

// ToMarkdown projects canonical HTML onto the Markdown subset. Headings
// h1-h3, bold, italic, links, list items, paragraphs, and line breaks are
// rewritten; every other tag is dropped with its text content kept.
// The result is trimmed of leading and trailing whitespace.
func ToMarkdown(html string) string {
	var b strings.Builder
	var hrefs []string

	// Headings and list items are line-prefix constructs; make sure they
	// start on a fresh line without doubling newlines between blocks.
	ensureNewline := func() {
		s := b.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			b.WriteString("\n")
		}
	}

	for _, t := range tokenize(StripPlaceholder(html)) {
		switch t.kind {
		case tokenText:
			b.WriteString(unescape(t.text))

		case tokenOpen:
			switch t.name {
			case "h1":
				ensureNewline()
				b.WriteString("# ")
			case "h2":
				ensureNewline()
				b.WriteString("## ")
			case "h3":
				ensureNewline()
				b.WriteString("### ")
			case "strong", "b":
				b.WriteString("**")
			case "em", "i":
				b.WriteString("*")
			case "a":
				hrefs = append(hrefs, t.attrs["href"])
				b.WriteString("[")
			case "li":
				ensureNewline()
				b.WriteString("- ")
			}
			// ul/ol containers are unwrapped; unknown tags are dropped.

		case tokenClose:
			switch t.name {
			case "h1", "h2", "h3", "p", "li":
				b.WriteString("\n")
			case "strong", "b":
				b.WriteString("**")
			case "em", "i":
				b.WriteString("*")
			case "a":
				href := ""
				if n := len(hrefs); n > 0 {
					href = hrefs[n-1]
					hrefs = hrefs[:n-1]
				}
				b.WriteString("](" + href + ")")
			}

		case tokenSelfClose:
			if t.name == "br" {
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String())
}
