package retrieval

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TextFromHTML returns the visible text of an HTML document, one block per
// line. Script, style and similar non-content elements are dropped.
func TextFromHTML(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var sb strings.Builder
	collectText(doc, &sb, 0)
	return normalizeLines(sb.String()), nil
}

func collectText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 100 {
		return
	}

	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "iframe", "svg", "template":
			return
		}
	}

	block := n.Type == html.ElementNode && isBlock(n.Data)
	if block {
		sb.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb, depth+1)
	}
	if block {
		sb.WriteString("\n")
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "ul", "ol", "tr", "table", "section", "article",
		"h1", "h2", "h3", "h4", "h5", "h6", "title", "pre", "blockquote":
		return true
	}
	return false
}

func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
