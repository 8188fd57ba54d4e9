package scanner

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

// Strategy extracts an article from one kind of page (WeChat, generic, etc.).
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, rawURL string) (domain.Article, error)
}

type entry struct {
	hostPattern string
	strategy    Strategy
}

// Registry dispatches URLs to strategies by host substring, in registration order.
type Registry struct {
	entries  []entry
	fallback Strategy
}

var _ ports.ArticleFetcher = (*Registry)(nil)

// NewRegistry builds a registry whose unmatched URLs go to fallback.
func NewRegistry(fallback Strategy) *Registry {
	return &Registry{fallback: fallback}
}

// Register binds a strategy to URLs whose host contains hostPattern.
func (r *Registry) Register(hostPattern string, strategy Strategy) {
	r.entries = append(r.entries, entry{hostPattern: strings.ToLower(hostPattern), strategy: strategy})
}

// Resolve returns the strategy for a URL or an error if nothing applies.
func (r *Registry) Resolve(rawURL string) (Strategy, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	host := strings.ToLower(parsed.Host)

	for _, e := range r.entries {
		if e.hostPattern != "" && strings.Contains(host, e.hostPattern) {
			return e.strategy, nil
		}
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("no scanner registered for %s", host)
}

// Fetch resolves the strategy and extracts the article.
func (r *Registry) Fetch(ctx context.Context, rawURL string) (domain.Article, error) {
	strategy, err := r.Resolve(rawURL)
	if err != nil {
		return domain.Article{}, err
	}

	article, err := strategy.Fetch(ctx, rawURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("%s: %w", strategy.Name(), err)
	}
	if article.Source == "" {
		article.Source = strategy.Name()
	}
	return article, nil
}
