package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath             = "config.toml"
	DefaultHTTPAddr               = ":8080"
	DefaultCacheDir               = "data/media"
	DefaultSizeLimitBytes         = 20 << 20
	DefaultLocateTimeoutSeconds   = 5
	DefaultDownloadTimeoutSeconds = 60
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Telegram TelegramConfig `toml:"telegram"`
	Media    MediaConfig    `toml:"media"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type TelegramConfig struct {
	BotToken string `toml:"bot_token"`
	// WebhookSecret, when set, is registered with Telegram and verified
	// against the X-Telegram-Bot-Api-Secret-Token header on every update.
	WebhookSecret string `toml:"webhook_secret"`
	// AdminChatID receives a notification when the service starts.
	AdminChatID int64 `toml:"admin_chat_id"`
}

type MediaConfig struct {
	// BaseURL is the externally visible root of this service, used to
	// build cached media URLs and the webhook callback URL.
	BaseURL  string `toml:"base_url"`
	CacheDir string `toml:"cache_dir"`
	// SizeLimitBytes is the inclusive threshold separating cached
	// delivery from direct passthrough. Zero means always pass through.
	SizeLimitBytes         int64 `toml:"size_limit_bytes"`
	LocateTimeoutSeconds   int   `toml:"locate_timeout_seconds"`
	DownloadTimeoutSeconds int   `toml:"download_timeout_seconds"`
}

func (c MediaConfig) LocateTimeout() time.Duration {
	return time.Duration(c.LocateTimeoutSeconds) * time.Second
}

func (c MediaConfig) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Media: MediaConfig{
			CacheDir:               DefaultCacheDir,
			SizeLimitBytes:         DefaultSizeLimitBytes,
			LocateTimeoutSeconds:   DefaultLocateTimeoutSeconds,
			DownloadTimeoutSeconds: DefaultDownloadTimeoutSeconds,
		},
	}

	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, cfg.validate()
		}
		return Config{}, fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Telegram.BotToken) == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if strings.TrimSpace(c.Media.BaseURL) == "" {
		return fmt.Errorf("media.base_url is required")
	}
	if c.Media.SizeLimitBytes < 0 {
		return fmt.Errorf("media.size_limit_bytes must not be negative")
	}
	if c.Media.LocateTimeoutSeconds <= 0 {
		return fmt.Errorf("media.locate_timeout_seconds must be positive")
	}
	if c.Media.DownloadTimeoutSeconds <= 0 {
		return fmt.Errorf("media.download_timeout_seconds must be positive")
	}
	return nil
}
