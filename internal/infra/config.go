package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. After LoadConfig the gateway
// token may be overridden through environment variables so it never
// has to live in the file.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Gateway struct {
		WSURL     string `yaml:"ws_url"`
		RestURL   string `yaml:"rest_url"`
		Token     string `yaml:"token"`
		InboxSize int    `yaml:"inbox_size"`
	} `yaml:"gateway"`

	Orders struct {
		DefaultImageURL string `yaml:"default_image_url"`
		ImageCache      bool   `yaml:"image_cache"`
	} `yaml:"orders"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Gateway.WSURL == "" || (!hasPrefix(c.Gateway.WSURL, "ws://") && !hasPrefix(c.Gateway.WSURL, "wss://")) {
		return fmt.Errorf("invalid gateway WS URL: %s", c.Gateway.WSURL)
	}
	if c.Gateway.RestURL == "" || (!hasPrefix(c.Gateway.RestURL, "http://") && !hasPrefix(c.Gateway.RestURL, "https://")) {
		return fmt.Errorf("invalid gateway REST URL: %s", c.Gateway.RestURL)
	}
	if c.Gateway.Token == "" {
		return fmt.Errorf("gateway token is required")
	}
	if c.Gateway.InboxSize <= 0 {
		c.Gateway.InboxSize = 256
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overwrites settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if token := os.Getenv("ORDER_BOT_TOKEN"); token != "" {
		cfg.Gateway.Token = token
	}
	if ws := os.Getenv("ORDER_BOT_WS_URL"); ws != "" {
		cfg.Gateway.WSURL = ws
	}
	if rest := os.Getenv("ORDER_BOT_REST_URL"); rest != "" {
		cfg.Gateway.RestURL = rest
	}
}
