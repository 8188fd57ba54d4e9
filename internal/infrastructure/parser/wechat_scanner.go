package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/extract"
	"DailyDigest/internal/scanner"
)

var (
	wechatTitleSelectors = []string{
		"#activity-name",
		"h1.rich_media_title",
		"h2.rich_media_title_text",
		"div.rich_media_title",
	}
	wechatContentSelectors = []string{"#js_content", "div.rich_media_content"}
)

// WeChatScanner extracts official-account articles: title, body blocks and publish time.
type WeChatScanner struct {
	getter   pageGetter
	location *time.Location
	logger   *slog.Logger
}

var _ scanner.Strategy = (*WeChatScanner)(nil)

// NewWeChatScanner wires an HTTP client; loc is used for script-embedded publish times.
func NewWeChatScanner(client *http.Client, userAgent string, loc *time.Location, log *slog.Logger) *WeChatScanner {
	return &WeChatScanner{
		getter:   pageGetter{client: client, userAgent: userAgent},
		location: loc,
		logger:   log,
	}
}

// Name identifies the strategy inside the registry.
func (w *WeChatScanner) Name() string {
	return "wechat"
}

// Fetch downloads the page and applies the selector chains.
func (w *WeChatScanner) Fetch(ctx context.Context, rawURL string) (domain.Article, error) {
	raw, err := w.getter.get(ctx, rawURL)
	if err != nil {
		return domain.Article{}, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse document: %w", err)
	}

	article := domain.Article{
		URL:     rawURL,
		Title:   extract.PickFirst(doc, wechatTitleSelectors, extract.TitleNotFound),
		Content: extract.PickContent(doc, wechatContentSelectors),
		Source:  w.Name(),
	}
	if ts, ok := extract.PublishTime(raw, w.location); ok {
		article.PublishedAt = &ts
	}

	w.debug("wechat article extracted", "url", rawURL, "title", article.Title, "chars", len([]rune(article.Content)))
	return article, nil
}

func (w *WeChatScanner) debug(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
