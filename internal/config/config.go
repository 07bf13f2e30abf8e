package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Sina         SinaConfig         `yaml:"sina"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Push         PushConfig         `yaml:"push"`
	Telegram     TelegramConfig     `yaml:"telegram"`
	WeChat       WeChatConfig       `yaml:"wechat"`
	Web          WebConfig          `yaml:"web"`
	Logging      LoggingConfig      `yaml:"logging"`
}

type SinaConfig struct {
	QuoteURL       string `yaml:"quote_url"`
	SuggestURL     string `yaml:"suggest_url"`
	ChartURL       string `yaml:"chart_url"`
	Referer        string `yaml:"referer"`
	TimeoutSeconds *int   `yaml:"timeout_seconds"`
}

type SubscriptionConfig struct {
	Path string `yaml:"path"`
}

type PushConfig struct {
	Timezone string    `yaml:"timezone"`
	Triggers []Trigger `yaml:"triggers"`
}

// Trigger is one wall-clock push slot. Days is a cron day-of-week field
// (0-6 with 0 as Sunday, or SUN-SAT), At is HH:MM in the push timezone.
type Trigger struct {
	Days string `yaml:"days"`
	At   string `yaml:"at"`
}

// CronSpec returns the standard five-field cron spec for the trigger.
func (t Trigger) CronSpec() (string, error) {
	at, err := time.Parse("15:04", strings.TrimSpace(t.At))
	if err != nil {
		return "", fmt.Errorf("invalid at %q: %w", t.At, err)
	}
	days := strings.TrimSpace(t.Days)
	if days == "" || strings.ContainsAny(days, " \t") {
		return "", fmt.Errorf("invalid days %q", t.Days)
	}
	spec := fmt.Sprintf("%d %d * * %s", at.Minute(), at.Hour(), days)
	if _, err := cron.ParseStandard(spec); err != nil {
		return "", fmt.Errorf("invalid days %q: %w", t.Days, err)
	}
	return spec, nil
}

func (t Trigger) String() string {
	return t.Days + " " + t.At
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
}

type WeChatConfig struct {
	Enabled         bool   `yaml:"enabled"`
	HotLoginStorage string `yaml:"hot_login_storage"`
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultTriggers are the Shanghai session open, midday break, close,
// the US open and the US close on the following morning.
var DefaultTriggers = []Trigger{
	{Days: "1-5", At: "09:35"},
	{Days: "1-5", At: "11:31"},
	{Days: "1-5", At: "15:01"},
	{Days: "1-5", At: "23:00"},
	{Days: "2-6", At: "05:01"},
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(cfg)
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Default returns a config with every default applied, as used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	applyEnv(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Sina.QuoteURL == "" {
		cfg.Sina.QuoteURL = "https://hq.sinajs.cn"
	}
	if cfg.Sina.SuggestURL == "" {
		cfg.Sina.SuggestURL = "https://suggest3.sinajs.cn"
	}
	if cfg.Sina.ChartURL == "" {
		cfg.Sina.ChartURL = "http://image.sinajs.cn"
	}
	if cfg.Sina.Referer == "" {
		cfg.Sina.Referer = "https://finance.sina.com.cn"
	}
	if cfg.Sina.TimeoutSeconds == nil {
		timeout := 15
		cfg.Sina.TimeoutSeconds = &timeout
	}
	if cfg.Subscription.Path == "" {
		cfg.Subscription.Path = "data/subscription.json"
	}
	if cfg.Push.Timezone == "" {
		cfg.Push.Timezone = "Asia/Shanghai"
	}
	if len(cfg.Push.Triggers) == 0 {
		cfg.Push.Triggers = append([]Trigger(nil), DefaultTriggers...)
	}
	if cfg.WeChat.HotLoginStorage == "" {
		cfg.WeChat.HotLoginStorage = "data/wechat-storage.json"
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 8080
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
	}
	if c.Sina.TimeoutSeconds != nil && *c.Sina.TimeoutSeconds < 0 {
		return fmt.Errorf("sina.timeout_seconds must not be negative")
	}
	for i, t := range c.Push.Triggers {
		if _, err := t.CronSpec(); err != nil {
			return fmt.Errorf("push.triggers[%d]: %w", i, err)
		}
	}
	return nil
}

// PushLocation is the timezone push triggers are evaluated in.
func (c *Config) PushLocation() *time.Location {
	loc, err := time.LoadLocation(c.Push.Timezone)
	if err != nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return loc
}

func (c *Config) SinaTimeout() time.Duration {
	if c.Sina.TimeoutSeconds == nil {
		return 0
	}
	return time.Duration(*c.Sina.TimeoutSeconds) * time.Second
}
