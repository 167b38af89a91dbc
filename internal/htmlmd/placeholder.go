package htmlmd

import "strings"

// PlaceholderClass marks the element the render surface shows while a
// document is empty. It is display chrome, never content, and must be
// stripped before HTML from the surface is treated as canonical.
const PlaceholderClass = "placeholder"

// StripPlaceholder removes a leading placeholder element (an element whose
// class attribute contains PlaceholderClass) together with its content.
// Input without a leading placeholder is returned unchanged.
func StripPlaceholder(html string) string {
	trimmed := strings.TrimLeft(html, " \t\r\n")
	if !strings.HasPrefix(trimmed, "<") {
		return html
	}
	gt := strings.IndexByte(trimmed, '>')
	if gt < 0 {
		return html
	}
	tok := parseTag(trimmed[1:gt])
	if tok.kind == tokenClose || !hasClass(tok.attrs, PlaceholderClass) {
		return html
	}
	rest := trimmed[gt+1:]
	if tok.kind == tokenSelfClose {
		return rest
	}
	closing := "</" + tok.name + ">"
	end := strings.Index(strings.ToLower(rest), closing)
	if end < 0 {
		// Unterminated placeholder: everything shown was chrome.
		return ""
	}
	return rest[end+len(closing):]
}

func hasClass(attrs map[string]string, class string) bool {
	if attrs == nil {
		return false
	}
	for _, c := range strings.Fields(attrs["class"]) {
		if c == class {
			return true
		}
	}
	return false
}
