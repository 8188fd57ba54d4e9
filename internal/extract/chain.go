// Package extract holds the pure HTML extraction steps shared by article strategies.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	TitleNotFound   = "(title not found)"
	ContentNotFound = "(content not found)"
)

// Strategy extracts one value from a document; ok reports success.
type Strategy func(doc *goquery.Document) (value string, ok bool)

// FirstOf runs strategies in priority order and returns the first success.
func FirstOf(doc *goquery.Document, strategies ...Strategy) (string, bool) {
	if doc == nil {
		return "", false
	}
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		if value, ok := strategy(doc); ok {
			return value, true
		}
	}
	return "", false
}

// SelectorText succeeds when the first element matching selector has non-empty trimmed text.
func SelectorText(selector string) Strategy {
	return func(doc *goquery.Document) (string, bool) {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text == "" {
			return "", false
		}
		return text, true
	}
}

// PickFirst resolves selectors in order and falls back to sentinel when none yields text.
func PickFirst(doc *goquery.Document, selectors []string, sentinel string) string {
	strategies := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		strategies = append(strategies, SelectorText(sel))
	}
	if value, ok := FirstOf(doc, strategies...); ok {
		return value
	}
	return sentinel
}
