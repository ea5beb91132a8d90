package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Document is the readable part of a fetched page.
type Document struct {
	Title string
	Text  string
}

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "header": true, "footer": true, "aside": true,
	"iframe": true, "form": true, "button": true, "svg": true,
}

// blocks start a new line so sentence segmentation sees paragraph breaks.
var blocks = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "ul": true, "ol": true, "blockquote": true, "pre": true,
	"figcaption": true, "tr": true, "br": true, "hr": true,
}

// Source line breaks inside text nodes are layout, not structure.
var lineBreaks = strings.NewReplacer("\n", " ", "\r", " ")

// FromHTML extracts the article body of an HTML page. It looks for
// <article>, then <main>, then <body>, and drops navigation, footers,
// scripts and consent banners. Text is NFC-normalized with one line per
// block element.
func FromHTML(input []byte) Document {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return Document{}
	}
	doc := Document{Title: normalizeLine(textOf(findFirst(findFirst(root, "head"), "title")))}

	content := findFirst(root, "article")
	if content == nil {
		content = findFirst(root, "main")
	}
	if content == nil {
		content = findFirst(root, "body")
	}
	if content == nil {
		return doc
	}
	var b strings.Builder
	walk(&b, content)
	doc.Text = normalizeLines(b.String())
	return doc
}

func walk(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skipped[name] || isConsentBanner(n) {
			return
		}
		if blocks[name] {
			b.WriteByte('\n')
		}
	}
	if n.Type == html.TextNode {
		b.WriteString(lineBreaks.Replace(n.Data))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
	if n.Type == html.ElementNode && blocks[strings.ToLower(n.Data)] {
		b.WriteByte('\n')
	}
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

// isConsentBanner matches cookie and consent overlays by id/class/role hints.
func isConsentBanner(n *html.Node) bool {
	for _, attr := range n.Attr {
		switch strings.ToLower(attr.Key) {
		case "id", "class", "role", "aria-label":
		default:
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, hint := range []string{"cookie", "consent", "gdpr"} {
			if strings.Contains(val, hint) {
				return true
			}
		}
	}
	return false
}

// normalizeLines collapses whitespace inside each line and drops empty lines.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if l := normalizeLine(line); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func normalizeLine(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
