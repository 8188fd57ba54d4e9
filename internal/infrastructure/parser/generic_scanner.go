package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/extract"
	"DailyDigest/internal/scanner"
)

// GenericScanner reads any web page: <title> plus every paragraph.
type GenericScanner struct {
	getter pageGetter
	logger *slog.Logger
}

var _ scanner.Strategy = (*GenericScanner)(nil)

func NewGenericScanner(client *http.Client, userAgent string, log *slog.Logger) *GenericScanner {
	return &GenericScanner{
		getter: pageGetter{client: client, userAgent: userAgent},
		logger: log,
	}
}

func (g *GenericScanner) Name() string {
	return "generic"
}

// Fetch never reports a publish time; the title falls back to the URL.
func (g *GenericScanner) Fetch(ctx context.Context, rawURL string) (domain.Article, error) {
	raw, err := g.getter.get(ctx, rawURL)
	if err != nil {
		return domain.Article{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse document: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = rawURL
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := extract.BlockText(p.Nodes[0]); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if g.logger != nil {
		g.logger.Debug("generic article extracted", "url", rawURL, "paragraphs", len(paragraphs))
	}

	return domain.Article{
		URL:     rawURL,
		Title:   title,
		Content: strings.Join(paragraphs, "\n"),
		Source:  g.Name(),
	}, nil
}
