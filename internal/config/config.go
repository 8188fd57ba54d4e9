package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"
	// Embedded zone database so scheduler.timezone resolves on minimal images.
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "Local"
	defaultPath      = "config/settings.yaml"
	configPathEnv    = "DAILY_DIGEST_CONFIG"
	openAIKeyEnv     = "OPENAI_API_KEY"
	openAIBaseEnv    = "OPENAI_BASE_URL"
	openAIModelEnv   = "OPENAI_MODEL"
	wechatAppIDEnv   = "WECHAT_APP_ID"
	wechatSecretEnv  = "WECHAT_APP_SECRET"
	wechatOpenIDEnv  = "WECHAT_PREVIEW_OPENID"
	wechatModeEnv    = "WECHAT_PUBLISH_MODE"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	seenDSNEnv       = "SEEN_DSN"
	logLevelEnv      = "LOG_LEVEL"
)

// ErrMissingAPIKey is fatal at startup.
var ErrMissingAPIKey = errors.New("openai api key is not configured (openai.apiKey / OPENAI_API_KEY)")

// Config holds high-level settings required across the application.
type Config struct {
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Rewrite   RewriteConfig   `yaml:"rewrite"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Sources   SourcesConfig   `yaml:"sources"`
	Digest    DigestConfig    `yaml:"digest"`
	Output    OutputConfig    `yaml:"output"`
	Seen      SeenConfig      `yaml:"seen"`
	WeChat    WeChatConfig    `yaml:"wechat"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	ExtraInfo string          `yaml:"extraInfo"`
}

// OpenAIConfig defines how to contact the chat completion API.
type OpenAIConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// RewriteConfig tunes the summary and commentary prompts. Empty models use openai.model.
type RewriteConfig struct {
	SummaryModel       string  `yaml:"summaryModel"`
	SummaryTemperature float32 `yaml:"summaryTemperature"`
	ExpandModel        string  `yaml:"expandModel"`
	ExpandTemperature  float32 `yaml:"expandTemperature"`
	ChunkSize          int     `yaml:"chunkSize"`
	SummaryLength      int     `yaml:"summaryLength"`
	CommentaryLength   string  `yaml:"commentaryLength"`
	Language           string  `yaml:"language"`
}

// FetchConfig bounds article downloads.
type FetchConfig struct {
	UserAgent      string        `yaml:"userAgent"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	PlatformHost   string        `yaml:"platformHost"`
}

// SourcesConfig describes where article links come from.
type SourcesConfig struct {
	NewsURL    string `yaml:"newsUrl"`
	BaseURL    string `yaml:"baseUrl"`
	LinkPrefix string `yaml:"linkPrefix"`
	URLsFile   string `yaml:"urlsFile"`
}

// DigestConfig controls the rendered document.
type DigestConfig struct {
	Title  string   `yaml:"title"`
	Labels []string `yaml:"labels"`
}

// OutputConfig names the digest files.
type OutputConfig struct {
	Dir          string `yaml:"dir"`
	MarkdownFile string `yaml:"markdownFile"`
	HTMLFile     string `yaml:"htmlFile"`
}

// SeenConfig selects the seen-set backend: json, sqlite or postgres.
type SeenConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// WeChatConfig wires the official-account publishing API.
type WeChatConfig struct {
	AppID         string `yaml:"appId"`
	AppSecret     string `yaml:"appSecret"`
	PreviewOpenID string `yaml:"previewOpenId"`
	PublishMode   string `yaml:"publishMode"`
	ThumbPath     string `yaml:"thumbPath"`
	Title         string `yaml:"title"`
	Author        string `yaml:"author"`
	Digest        string `yaml:"digest"`
	APIBase       string `yaml:"apiBase"`
}

// Enabled reports whether both credentials are present.
func (w WeChatConfig) Enabled() bool {
	return w.AppID != "" && w.AppSecret != ""
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIBase  string `yaml:"apiBase"`
}

// Enabled reports whether a run report can be sent.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines when the daily run fires.
type SchedulerConfig struct {
	At       string         `yaml:"at"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	return time.Local
}

// LoggingConfig sets verbosity and the optional log directory.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// ResolvePath picks the settings path: explicit flag, then env, then default.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if v := os.Getenv(configPathEnv); v != "" {
		return v
	}
	return defaultPath
}

// Load reads YAML configuration (if present), .env files and environment overrides.
func Load(path string, envFiles ...string) Config {
	cfg := defaultConfig()

	if raw, err := os.ReadFile(path); err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
	} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
		log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		cfg = defaultConfig()
	}

	loadEnvFiles(envFiles)
	cfg.applyEnvOverrides()
	cfg.fillGaps()
	cfg.bindTimezone()

	return cfg
}

// Validate reports configuration problems that must stop the process.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func loadEnvFiles(paths []string) {
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("config: cannot load env file %s: %v", p, err)
		}
	}
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{openAIKeyEnv, &c.OpenAI.APIKey},
		{openAIBaseEnv, &c.OpenAI.BaseURL},
		{openAIModelEnv, &c.OpenAI.Model},
		{wechatAppIDEnv, &c.WeChat.AppID},
		{wechatSecretEnv, &c.WeChat.AppSecret},
		{wechatOpenIDEnv, &c.WeChat.PreviewOpenID},
		{wechatModeEnv, &c.WeChat.PublishMode},
		{telegramTokenEnv, &c.Telegram.BotToken},
		{telegramChatEnv, &c.Telegram.ChatID},
		{seenDSNEnv, &c.Seen.DSN},
		{logLevelEnv, &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// fillGaps restores defaults for values a settings file blanked out.
func (c *Config) fillGaps() {
	def := defaultConfig()
	if len(c.Digest.Labels) == 0 {
		c.Digest.Labels = def.Digest.Labels
	}
	if c.Digest.Title == "" {
		c.Digest.Title = def.Digest.Title
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Output.MarkdownFile == "" {
		c.Output.MarkdownFile = def.Output.MarkdownFile
	}
	if c.Output.HTMLFile == "" {
		c.Output.HTMLFile = def.Output.HTMLFile
	}
	if c.Seen.Backend == "" {
		c.Seen.Backend = def.Seen.Backend
	}
	if c.Seen.Path == "" {
		c.Seen.Path = def.Seen.Path
	}
	if c.Fetch.PlatformHost == "" {
		c.Fetch.PlatformHost = def.Fetch.PlatformHost
	}
	if c.Scheduler.At == "" {
		c.Scheduler.At = def.Scheduler.At
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc = time.Local
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	return Config{
		OpenAI: OpenAIConfig{
			Model:   "gpt-4o",
			Timeout: 90 * time.Second,
		},
		Rewrite: RewriteConfig{
			SummaryTemperature: 0.7,
			ExpandTemperature:  0.8,
			ChunkSize:          3000,
			SummaryLength:      80,
			CommentaryLength:   "200-300 characters",
			Language:           "Simplified Chinese",
		},
		Fetch: FetchConfig{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			ConnectTimeout: 5 * time.Second,
			ReadTimeout:    20 * time.Second,
			PlatformHost:   "mp.weixin.qq.com",
		},
		Sources: SourcesConfig{
			NewsURL:    "https://sanhua.himrr.com/daily-news",
			BaseURL:    "https://sanhua.himrr.com",
			LinkPrefix: "/news/",
			URLsFile:   "config/urls.txt",
		},
		Digest: DigestConfig{
			Title:  "Daily AI Digest",
			Labels: []string{"News", "Tech", "Cases"},
		},
		Output: OutputConfig{
			Dir:          "data/output",
			MarkdownFile: "digest_latest.md",
			HTMLFile:     "digest_latest.html",
		},
		Seen: SeenConfig{
			Backend: "json",
			Path:    "data/seen.json",
		},
		WeChat: WeChatConfig{
			PublishMode: "draft_only",
			ThumbPath:   "config/thumb.jpg",
			Title:       "Daily AI Digest",
			Author:      "GSCC",
			Digest:      "AI-rewritten news digest",
			APIBase:     "https://api.weixin.qq.com",
		},
		Telegram: TelegramConfig{
			APIBase: "https://api.telegram.org",
		},
		Scheduler: SchedulerConfig{At: "08:00", Timezone: defaultTimezone},
		Logging:   LoggingConfig{Level: "info", Dir: "data/logs"},
		ExtraInfo: "I think the key to this technology is...",
	}
}
