package scanner

import (
	"context"
	"errors"
	"testing"

	"DailyDigest/internal/domain"
)

type stubStrategy struct {
	name string
	err  error
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Fetch(_ context.Context, rawURL string) (domain.Article, error) {
	if s.err != nil {
		return domain.Article{}, s.err
	}
	return domain.Article{URL: rawURL, Title: s.name}, nil
}

func TestResolveByHost(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(stubStrategy{name: "generic"})
	reg.Register("mp.weixin.qq.com", stubStrategy{name: "wechat"})

	cases := map[string]string{
		"https://mp.weixin.qq.com/s/abc":          "wechat",
		"https://MP.WEIXIN.QQ.COM/s?__biz=1":      "wechat",
		"https://example.org/mp.weixin.qq.com/s/": "generic",
		"https://blog.example.com/post":           "generic",
	}
	for rawURL, want := range cases {
		strategy, err := reg.Resolve(rawURL)
		if err != nil {
			t.Fatalf("resolve %s: %v", rawURL, err)
		}
		if strategy.Name() != want {
			t.Fatalf("resolve %s: expected %s, got %s", rawURL, want, strategy.Name())
		}
	}
}

func TestResolveWithoutFallback(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(nil)
	if _, err := reg.Resolve("https://example.com"); err == nil {
		t.Fatalf("expected error without fallback")
	}
	if _, err := reg.Resolve("://bad"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFetchStampsSource(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(stubStrategy{name: "generic"})
	article, err := reg.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if article.Source != "generic" || article.URL != "https://example.com/a" {
		t.Fatalf("unexpected article: %+v", article)
	}

	boom := errors.New("boom")
	reg = NewRegistry(stubStrategy{name: "generic", err: boom})
	if _, err := reg.Fetch(context.Background(), "https://example.com/a"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped strategy error, got %v", err)
	}
}
