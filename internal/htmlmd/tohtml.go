package htmlmd

import "strings"

// ToHTML renders the Markdown subset back into canonical HTML. Line-leading
// #/##/### become headings, "- " lines become list items with adjacent
// items coalesced into one <ul>, and the inline spans **bold**, *italic*,
// and [text](url) are rewritten. Newlines that did not terminate a block
// become <br>. Empty input maps to empty output.
func ToHTML(md string) string {
	if md == "" {
		return ""
	}

	lines := strings.Split(md, "\n")
	var b strings.Builder
	prevInline := false

	for i := 0; i < len(lines); {
		line := lines[i]

		if text, level, ok := headingLine(line); ok {
			b.WriteString("<h")
			b.WriteByte('0' + byte(level))
			b.WriteString(">")
			b.WriteString(inline(text))
			b.WriteString("</h")
			b.WriteByte('0' + byte(level))
			b.WriteString(">")
			prevInline = false
			i++
			continue
		}

		if _, ok := listItemLine(line); ok {
			b.WriteString("<ul>")
			for i < len(lines) {
				item, more := listItemLine(lines[i])
				if !more {
					break
				}
				b.WriteString("<li>" + inline(item) + "</li>")
				i++
			}
			b.WriteString("</ul>")
			prevInline = false
			continue
		}

		if prevInline {
			b.WriteString("<br>")
		}
		b.WriteString(inline(line))
		prevInline = true
		i++
	}
	return b.String()
}

func headingLine(line string) (text string, level int, ok bool) {
	switch {
	case strings.HasPrefix(line, "### "):
		return line[4:], 3, true
	case strings.HasPrefix(line, "## "):
		return line[3:], 2, true
	case strings.HasPrefix(line, "# "):
		return line[2:], 1, true
	}
	return "", 0, false
}

func listItemLine(line string) (item string, ok bool) {
	if strings.HasPrefix(line, "- ") {
		return line[2:], true
	}
	return "", false
}

// inline rewrites **bold**, *italic*, and [text](url) spans. Unterminated
// markers pass through unchanged.
func inline(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], "**") {
			if j := strings.Index(s[i+2:], "**"); j >= 0 {
				b.WriteString("<strong>" + inline(s[i+2:i+2+j]) + "</strong>")
				i += j + 4
				continue
			}
		}
		if s[i] == '*' {
			if j := strings.IndexByte(s[i+1:], '*'); j >= 0 {
				b.WriteString("<em>" + inline(s[i+1:i+1+j]) + "</em>")
				i += j + 2
				continue
			}
		}
		if s[i] == '[' {
			if mid := strings.Index(s[i:], "]("); mid > 0 {
				if end := strings.IndexByte(s[i+mid:], ')'); end > 0 {
					text := s[i+1 : i+mid]
					href := s[i+mid+2 : i+mid+end]
					b.WriteString(`<a href="` + href + `">` + inline(text) + `</a>`)
					i += mid + end + 1
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
