package wechat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"DailyDigest/internal/domain"
	"DailyDigest/internal/ports"
)

// Publish modes.
const (
	ModeNone      = "none"
	ModeDraftOnly = "draft_only"
	ModePreview   = "preview"
	ModeSendAll   = "sendall"
)

const transportErrorCode = -1

// APIError is a non-zero errcode reported by the platform.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.Code, e.Message)
}

// Options configures the official-account draft.
type Options struct {
	AppID         string
	AppSecret     string
	PreviewOpenID string
	Mode          string
	ThumbPath     string
	Title         string
	Author        string
	Digest        string
	APIBase       string
}

// Publisher creates drafts and optionally previews or broadcasts them.
type Publisher struct {
	opts   Options
	client *http.Client
	logger *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires credentials; a nil client gets a 20s timeout.
func NewPublisher(opts Options, client *http.Client, log *slog.Logger) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if opts.Mode == "" {
		opts.Mode = ModeDraftOnly
	}
	opts.APIBase = strings.TrimSuffix(opts.APIBase, "/")
	return &Publisher{opts: opts, client: client, logger: log}
}

// Publish never returns an error: every failing step maps to a tagged status.
func (p *Publisher) Publish(ctx context.Context, html string) domain.PublishResult {
	if p.opts.AppID == "" || p.opts.AppSecret == "" {
		p.warn("wechat credentials missing, publishing skipped")
		return domain.PublishResult{Status: domain.PublishSkipped}
	}
	if p.opts.Mode == ModeNone {
		p.info("publish mode none, wechat api not called")
		return domain.PublishResult{Status: domain.PublishSkipped}
	}

	token, err := p.accessToken(ctx)
	if err != nil {
		p.logError("access token request failed", err)
		return failed("token_error", err, "")
	}

	if _, err := os.Stat(p.opts.ThumbPath); err != nil {
		p.logError("thumbnail file not found", err, "path", p.opts.ThumbPath)
		return domain.PublishResult{Status: domain.PublishThumbMissing}
	}
	thumbID, err := p.uploadThumb(ctx, token)
	if err != nil {
		p.logError("thumbnail upload failed", err)
		return failed("thumb_upload_error", err, "")
	}
	p.info("thumbnail uploaded", "thumb_media_id", thumbID)

	mediaID, err := p.addDraft(ctx, token, thumbID, html)
	if err != nil {
		p.logError("draft creation failed", err)
		return failed("draft_error", err, "")
	}
	p.info("draft created", "media_id", mediaID)

	switch p.opts.Mode {
	case ModeDraftOnly:
		return domain.PublishResult{Status: domain.PublishDraft, MediaID: mediaID}
	case ModePreview:
		if p.opts.PreviewOpenID == "" {
			p.logError("preview mode requires a preview open id, keeping draft", nil)
			return domain.PublishResult{Status: domain.PublishDraft, MediaID: mediaID}
		}
		body := map[string]any{
			"touser":  p.opts.PreviewOpenID,
			"mpnews":  map[string]string{"media_id": mediaID},
			"msgtype": "mpnews",
		}
		if err := p.post(ctx, "/cgi-bin/message/mass/preview", token, body, nil); err != nil {
			p.logError("preview failed", err)
			return failed("preview_error", err, mediaID)
		}
		p.info("preview sent", "open_id", p.opts.PreviewOpenID)
		return domain.PublishResult{Status: domain.PublishPreview, MediaID: mediaID}
	case ModeSendAll:
		body := map[string]any{
			"filter":  map[string]bool{"is_to_all": true},
			"mpnews":  map[string]string{"media_id": mediaID},
			"msgtype": "mpnews",
		}
		if err := p.post(ctx, "/cgi-bin/message/mass/sendall", token, body, nil); err != nil {
			p.logError("broadcast failed", err)
			return failed("send_error", err, mediaID)
		}
		p.warn("broadcast sent to all subscribers", "media_id", mediaID)
		return domain.PublishResult{Status: domain.PublishSent, MediaID: mediaID}
	default:
		p.logError("unknown publish mode, keeping draft", nil, "mode", p.opts.Mode)
		return domain.PublishResult{Status: domain.PublishDraft, MediaID: mediaID}
	}
}

type apiStatus struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

func (s apiStatus) err() error {
	if s.ErrCode == 0 {
		return nil
	}
	return &APIError{Code: s.ErrCode, Message: s.ErrMsg}
}

func (p *Publisher) accessToken(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("grant_type", "client_credential")
	query.Set("appid", p.opts.AppID)
	query.Set("secret", p.opts.AppSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.opts.APIBase+"/cgi-bin/token?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	var resp struct {
		apiStatus
		AccessToken string `json:"access_token"`
	}
	if err := p.do(req, &resp); err != nil {
		return "", err
	}
	if err := resp.err(); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("empty access token")
	}
	return resp.AccessToken, nil
}

func (p *Publisher) uploadThumb(ctx context.Context, token string) (string, error) {
	file, err := os.Open(p.opts.ThumbPath)
	if err != nil {
		return "", fmt.Errorf("open thumbnail: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("media", filepath.Base(p.opts.ThumbPath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy thumbnail: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	endpoint := p.endpoint("/cgi-bin/material/add_material", token) + "&type=image"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var resp struct {
		apiStatus
		MediaID string `json:"media_id"`
	}
	if err := p.do(req, &resp); err != nil {
		return "", err
	}
	if err := resp.err(); err != nil {
		return "", err
	}
	return resp.MediaID, nil
}

func (p *Publisher) addDraft(ctx context.Context, token, thumbID, html string) (string, error) {
	body := map[string]any{
		"articles": []map[string]any{{
			"title":                 p.opts.Title,
			"author":                p.opts.Author,
			"content":               html,
			"digest":                p.opts.Digest,
			"thumb_media_id":        thumbID,
			"need_open_comment":     0,
			"only_fans_can_comment": 0,
		}},
	}

	var resp struct {
		MediaID string `json:"media_id"`
	}
	if err := p.post(ctx, "/cgi-bin/draft/add", token, body, &resp); err != nil {
		return "", err
	}
	return resp.MediaID, nil
}

// post sends JSON without HTML escaping and decodes the reply into out when set.
func (p *Publisher) post(ctx context.Context, path, token string, payload any, out any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(path, token), &buf)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	raw, err := p.read(req)
	if err != nil {
		return err
	}
	var status apiStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := status.err(); err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (p *Publisher) do(req *http.Request, out any) error {
	raw, err := p.read(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (p *Publisher) read(req *http.Request) ([]byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wechat http status %s", resp.Status)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

func (p *Publisher) endpoint(path, token string) string {
	return p.opts.APIBase + path + "?access_token=" + url.QueryEscape(token)
}

func failed(prefix string, err error, mediaID string) domain.PublishResult {
	return domain.PublishResult{
		Status:  domain.PublishStatus(fmt.Sprintf("%s:%d", prefix, ErrorCode(err))),
		MediaID: mediaID,
	}
}

// ErrorCode extracts the platform errcode, or -1 for transport failures.
func ErrorCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return transportErrorCode
}

func (p *Publisher) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Publisher) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Publisher) logError(msg string, err error, args ...any) {
	if p.logger == nil {
		return
	}
	if err != nil {
		args = append(args, "error", err)
	}
	p.logger.Error(msg, args...)
}
