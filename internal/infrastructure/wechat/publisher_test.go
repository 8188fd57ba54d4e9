package wechat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"DailyDigest/internal/domain"
)

type fakePlatform struct {
	mu        sync.Mutex
	calls     []string
	draftBody string
	tokenErr  bool
	draftCode int
	sendCode  int
}

func (f *fakePlatform) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/cgi-bin/token", func(w http.ResponseWriter, r *http.Request) {
		f.record("token")
		if r.URL.Query().Get("appid") != "app" || r.URL.Query().Get("grant_type") != "client_credential" {
			t.Errorf("unexpected token query: %s", r.URL.RawQuery)
		}
		if f.tokenErr {
			_, _ = io.WriteString(w, `{"errcode":40013,"errmsg":"invalid appid"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"tok","expires_in":7200}`)
	})
	mux.HandleFunc("/cgi-bin/material/add_material", func(w http.ResponseWriter, r *http.Request) {
		f.record("thumb")
		if r.URL.Query().Get("type") != "image" || r.URL.Query().Get("access_token") != "tok" {
			t.Errorf("unexpected upload query: %s", r.URL.RawQuery)
		}
		file, header, err := r.FormFile("media")
		if err != nil {
			t.Errorf("media field: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "thumb.jpg" {
			t.Errorf("unexpected filename %s", header.Filename)
		}
		_, _ = io.WriteString(w, `{"media_id":"thumb-1","url":"http://img"}`)
	})
	mux.HandleFunc("/cgi-bin/draft/add", func(w http.ResponseWriter, r *http.Request) {
		f.record("draft")
		raw, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.draftBody = string(raw)
		f.mu.Unlock()
		if f.draftCode != 0 {
			_, _ = io.WriteString(w, `{"errcode":45009,"errmsg":"quota"}`)
			return
		}
		_, _ = io.WriteString(w, `{"media_id":"draft-1"}`)
	})
	send := func(name string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.record(name)
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode %s: %v", name, err)
			}
			if body["msgtype"] != "mpnews" {
				t.Errorf("unexpected msgtype in %s: %v", name, body["msgtype"])
			}
			if f.sendCode != 0 {
				_, _ = io.WriteString(w, `{"errcode":48001,"errmsg":"unauthorized"}`)
				return
			}
			_, _ = io.WriteString(w, `{"errcode":0,"errmsg":"ok"}`)
		}
	}
	mux.HandleFunc("/cgi-bin/message/mass/preview", send("preview"))
	mux.HandleFunc("/cgi-bin/message/mass/sendall", send("sendall"))
	return mux
}

func (f *fakePlatform) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakePlatform) trace() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.calls, ",")
}

func thumbFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := os.WriteFile(path, []byte{0xff, 0xd8, 0xff}, 0o644); err != nil {
		t.Fatalf("write thumb: %v", err)
	}
	return path
}

func newTestPublisher(t *testing.T, platform *fakePlatform, mode, openID string) *Publisher {
	t.Helper()
	srv := httptest.NewServer(platform.handler(t))
	t.Cleanup(srv.Close)
	return NewPublisher(Options{
		AppID:         "app",
		AppSecret:     "secret",
		PreviewOpenID: openID,
		Mode:          mode,
		ThumbPath:     thumbFile(t),
		Title:         "Daily",
		APIBase:       srv.URL + "/",
	}, srv.Client(), nil)
}

func TestPublishModes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		mode   string
		openID string
		status domain.PublishStatus
		trace  string
	}{
		{ModeDraftOnly, "", domain.PublishDraft, "token,thumb,draft"},
		{ModePreview, "open-1", domain.PublishPreview, "token,thumb,draft,preview"},
		{ModePreview, "", domain.PublishDraft, "token,thumb,draft"},
		{ModeSendAll, "", domain.PublishSent, "token,thumb,draft,sendall"},
		{"bogus", "", domain.PublishDraft, "token,thumb,draft"},
	}
	for _, tc := range cases {
		platform := &fakePlatform{}
		pub := newTestPublisher(t, platform, tc.mode, tc.openID)

		res := pub.Publish(context.Background(), "<p>hello & welcome</p>")
		if res.Status != tc.status {
			t.Fatalf("mode %s: expected %s, got %s", tc.mode, tc.status, res.Status)
		}
		if res.MediaID != "draft-1" {
			t.Fatalf("mode %s: expected draft media id, got %q", tc.mode, res.MediaID)
		}
		if got := platform.trace(); got != tc.trace {
			t.Fatalf("mode %s: expected calls %s, got %s", tc.mode, tc.trace, got)
		}
	}
}

func TestPublishDraftKeepsRawHTML(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{}
	pub := newTestPublisher(t, platform, ModeDraftOnly, "")
	pub.Publish(context.Background(), "<p>a & b</p>")

	if !strings.Contains(platform.draftBody, `"content":"<p>a & b</p>"`) {
		t.Fatalf("html was escaped in draft body: %s", platform.draftBody)
	}
	if !strings.Contains(platform.draftBody, `"thumb_media_id":"thumb-1"`) {
		t.Fatalf("thumb id missing from draft body: %s", platform.draftBody)
	}
}

func TestPublishFailures(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{tokenErr: true}
	pub := newTestPublisher(t, platform, ModeDraftOnly, "")
	if res := pub.Publish(context.Background(), "x"); res.Status != "token_error:40013" {
		t.Fatalf("expected token error status, got %s", res.Status)
	}

	platform = &fakePlatform{draftCode: 45009}
	pub = newTestPublisher(t, platform, ModeDraftOnly, "")
	if res := pub.Publish(context.Background(), "x"); res.Status != "draft_error:45009" {
		t.Fatalf("expected draft error status, got %s", res.Status)
	}

	platform = &fakePlatform{sendCode: 48001}
	pub = newTestPublisher(t, platform, ModeSendAll, "")
	res := pub.Publish(context.Background(), "x")
	if res.Status != "send_error:48001" || res.MediaID != "draft-1" {
		t.Fatalf("expected send error with media id, got %+v", res)
	}
}

func TestPublishThumbMissing(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{}
	pub := newTestPublisher(t, platform, ModeDraftOnly, "")
	pub.opts.ThumbPath = filepath.Join(t.TempDir(), "absent.jpg")

	if res := pub.Publish(context.Background(), "x"); res.Status != domain.PublishThumbMissing {
		t.Fatalf("expected thumb_missing, got %s", res.Status)
	}
	if got := platform.trace(); got != "token" {
		t.Fatalf("expected only token call, got %s", got)
	}
}

func TestPublishSkipped(t *testing.T) {
	t.Parallel()

	platform := &fakePlatform{}
	pub := newTestPublisher(t, platform, ModeNone, "")
	if res := pub.Publish(context.Background(), "x"); res.Status != domain.PublishSkipped {
		t.Fatalf("expected skipped for mode none, got %s", res.Status)
	}

	pub = NewPublisher(Options{Mode: ModeDraftOnly}, nil, nil)
	if res := pub.Publish(context.Background(), "x"); res.Status != domain.PublishSkipped {
		t.Fatalf("expected skipped without credentials, got %s", res.Status)
	}
	if platform.trace() != "" {
		t.Fatalf("no api calls expected, got %s", platform.trace())
	}
}

func TestErrorCode(t *testing.T) {
	t.Parallel()

	if got := ErrorCode(&APIError{Code: 40001}); got != 40001 {
		t.Fatalf("expected api code, got %d", got)
	}
	if got := ErrorCode(errors.New("dial tcp: refused")); got != -1 {
		t.Fatalf("expected -1 for transport error, got %d", got)
	}
}
