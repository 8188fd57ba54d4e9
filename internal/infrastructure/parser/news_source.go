package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"DailyDigest/internal/ports"
)

// NewsSource scrapes the aggregator page for article links under a path prefix.
type NewsSource struct {
	getter  pageGetter
	pageURL string
	baseURL string
	prefix  string
	logger  *slog.Logger
}

var _ ports.LinkSource = (*NewsSource)(nil)

// NewNewsSource wires the aggregator page and the base used to absolutize relative links.
func NewNewsSource(client *http.Client, userAgent, pageURL, baseURL, prefix string, log *slog.Logger) *NewsSource {
	return &NewsSource{
		getter:  pageGetter{client: client, userAgent: userAgent},
		pageURL: pageURL,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		prefix:  prefix,
		logger:  log,
	}
}

// Links returns de-duplicated absolute URLs in page order.
func (n *NewsSource) Links(ctx context.Context) ([]string, error) {
	raw, err := n.getter.get(ctx, n.pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch news page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse news page: %w", err)
	}

	links := collectLinks(doc, n.baseURL, n.prefix)
	if n.logger != nil {
		n.logger.Info("news links collected", "page", n.pageURL, "count", len(links))
	}
	return links, nil
}

func collectLinks(doc *goquery.Document, baseURL, prefix string) []string {
	seen := map[string]struct{}{}
	var links []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || !strings.HasPrefix(href, prefix) {
			return
		}

		full := absolute(baseURL, href)
		if _, ok := seen[full]; ok {
			return
		}
		seen[full] = struct{}{}
		links = append(links, full)
	})

	return links
}

func absolute(baseURL, href string) string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return baseURL + href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return baseURL + href
	}
	return base.ResolveReference(ref).String()
}
