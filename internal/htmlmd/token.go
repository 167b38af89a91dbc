// Package htmlmd converts between the canonical HTML document subset and
// its Markdown projection. Both directions are deterministic and total:
// anything outside the recognized grammar passes through as text, and no
// input can produce an error.
//
// The Markdown grammar is intentionally narrow. Nested lists, tables,
// images, code blocks, and blockquotes have no Markdown form here and are
// lost on an HTML to Markdown round trip. That is a scope boundary of the
// document format, not a defect to be fixed.
package htmlmd

import "strings"

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenOpen
	tokenClose
	tokenSelfClose
)

type token struct {
	kind  tokenKind
	name  string
	attrs map[string]string
	text  string
}

// Tags that never have a closing counterpart.
var voidTags = map[string]bool{
	"br":  true,
	"hr":  true,
	"img": true,
}

// tokenize splits s into tag and text tokens. It is non-validating: a '<'
// with no matching '>' turns the remainder into text, and tag soup inside
// the brackets yields a token with whatever name could be read.
func tokenize(s string) []token {
	var toks []token
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			toks = append(toks, token{kind: tokenText, text: s})
			break
		}
		if lt > 0 {
			toks = append(toks, token{kind: tokenText, text: s[:lt]})
			s = s[lt:]
		}
		gt := strings.IndexByte(s, '>')
		if gt < 0 {
			// Dangling bracket: keep the rest as literal text.
			toks = append(toks, token{kind: tokenText, text: s})
			break
		}
		toks = append(toks, parseTag(s[1:gt]))
		s = s[gt+1:]
	}
	return toks
}

// parseTag interprets the text between '<' and '>'.
func parseTag(inner string) token {
	t := token{kind: tokenOpen}
	inner = strings.TrimSpace(inner)
	if strings.HasPrefix(inner, "/") {
		t.kind = tokenClose
		inner = strings.TrimSpace(inner[1:])
	}
	if strings.HasSuffix(inner, "/") {
		t.kind = tokenSelfClose
		inner = strings.TrimSpace(inner[:len(inner)-1])
	}

	nameEnd := len(inner)
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			nameEnd = i
			break
		}
	}
	t.name = strings.ToLower(inner[:nameEnd])
	if t.kind == tokenOpen && voidTags[t.name] {
		t.kind = tokenSelfClose
	}
	if t.kind != tokenClose {
		t.attrs = parseAttrs(inner[nameEnd:])
	}
	return t
}

// parseAttrs reads name="value", name='value', and bare attributes.
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != '=' && !isSpace(s[i]) {
			i++
		}
		name := strings.ToLower(s[start:i])
		if name == "" {
			i++
			continue
		}
		if i >= len(s) || s[i] != '=' {
			attrs[name] = ""
			continue
		}
		i++ // skip '='
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			quote := s[i]
			i++
			vstart := i
			for i < len(s) && s[i] != quote {
				i++
			}
			attrs[name] = s[vstart:i]
			if i < len(s) {
				i++ // closing quote
			}
		} else {
			vstart := i
			for i < len(s) && !isSpace(s[i]) {
				i++
			}
			attrs[name] = s[vstart:i]
		}
	}
	return attrs
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// unescape reverses the entity set the canonical grammar produces.
func unescape(s string) string {
	r := strings.NewReplacer(
		"&nbsp;", " ",
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
	)
	return r.Replace(s)
}
