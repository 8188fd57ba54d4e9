package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var blockTags = map[string]struct{}{
	"p":          {},
	"li":         {},
	"blockquote": {},
	"section":    {},
}

// Normalize flattens a content region into newline-separated text blocks.
// Images become "[image: src]" placeholders, preferring the lazy-load data-src attribute.
func Normalize(root *html.Node) string {
	if root == nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				if piece, ok := emit(c); ok {
					parts = append(parts, piece)
				}
			}
			walk(c)
		}
	}
	walk(root)

	return strings.Join(parts, "\n")
}

// ContentRegion succeeds on the first selector that matches an element and returns its
// normalized text, which may be empty.
func ContentRegion(selector string) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			return "", false
		}
		return Normalize(sel.Nodes[0]), true
	}
}

// PickContent normalizes the first matching content region or returns ContentNotFound.
func PickContent(doc *goquery.Document, selectors []string) string {
	strategies := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		strategies = append(strategies, ContentRegion(sel))
	}
	if value, ok := FirstOf(doc, strategies...); ok {
		return value
	}
	return ContentNotFound
}

// BlockText joins the node's trimmed text fragments with single spaces.
func BlockText(n *html.Node) string {
	var words []string
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			if t := strings.TrimSpace(cur.Data); t != "" {
				words = append(words, t)
			}
			return
		}
		if cur.Type == html.ElementNode && (cur.Data == "script" || cur.Data == "style") {
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(words, " ")
}

func emit(n *html.Node) (string, bool) {
	name := strings.ToLower(n.Data)
	if name == "img" {
		src := attr(n, "data-src")
		if src == "" {
			src = attr(n, "src")
		}
		if src == "" {
			return "", false
		}
		return "[image: " + src + "]", true
	}

	if _, ok := blockTags[name]; !ok {
		return "", false
	}
	text := BlockText(n)
	return text, text != ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
