package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// HTMLLoader handles saved congress.gov article pages. Every
// <pre class="styled"> block is rendered in the scraper's list form so the
// result parses exactly like a fresh scrape. Pages without such a block fall
// back to their visible body text.
type HTMLLoader struct{}

func (l *HTMLLoader) Load(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html %s: %w", filename, err)
	}

	if text := ArticleText(doc); text != "" {
		return text, nil
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	return textContent(root), nil
}

// ArticleText renders every <pre class="styled"> under n, joined by a single
// space. It returns "" when there is none.
func ArticleText(n *html.Node) string {
	var parts []string
	for _, pre := range findStyledPre(n) {
		parts = append(parts, RenderContents(pre))
	}
	return strings.Join(parts, " ")
}

// RenderContents renders the children of n as a list literal: text nodes
// become quoted strings with escaped control characters, elements are
// serialized as HTML.
//
//	['\n[', <a href="/congressional-record/...">Page S1</a>, ']\nFrom ...']
func RenderContents(n *html.Node) string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		var item string
		switch c.Type {
		case html.TextNode:
			item = quoteText(c.Data)
		case html.ElementNode:
			var buf bytes.Buffer
			if err := html.Render(&buf, c); err != nil {
				continue
			}
			item = buf.String()
		default:
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(item)
		first = false
	}
	sb.WriteByte(']')
	return sb.String()
}

// quoteText quotes s with single quotes, or double quotes when s holds a
// single quote and no double quote, escaping backslashes, the chosen quote
// and control characters.
func quoteText(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(quote):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0xa0):
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}

func findStyledPre(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "pre" && hasClass(n, "styled") {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// textContent returns the visible text under n, skipping non-content elements.
func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
