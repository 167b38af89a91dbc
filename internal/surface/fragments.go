package surface

import "strings"

// HTML fragments synthesized for insertHTML commands. Attribute values are
// escaped here; the host inserts the markup verbatim.

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func imageFragment(url, alt string) string {
	return `<img src="` + escapeAttr(url) + `" alt="` + escapeAttr(alt) + `">`
}

func linkFragment(url, text string) string {
	if text == "" {
		text = url
	}
	return `<a href="` + escapeAttr(url) + `">` + escapeText(text) + `</a>`
}

func tableFragment(rows, cols int) string {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	var b strings.Builder
	b.WriteString("<table><tbody>")
	for r := 0; r < rows; r++ {
		b.WriteString("<tr>")
		for c := 0; c < cols; c++ {
			b.WriteString("<td><br></td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")
	return b.String()
}

func codeBlockFragment(language string) string {
	cls := ""
	if language != "" {
		cls = ` class="language-` + escapeAttr(language) + `"`
	}
	return "<pre><code" + cls + "><br></code></pre>"
}
