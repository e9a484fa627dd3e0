package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend  BackendConfig  `json:"backend"`
	Widget   WidgetConfig   `json:"widget"`
	Session  SessionConfig  `json:"session"`
	Terminal TerminalConfig `json:"terminal"`
	Log      LogConfig      `json:"log"`
	mu       sync.RWMutex
}

// BackendConfig points at the chat/order API.
type BackendConfig struct {
	BaseURL        string `json:"base_url" env:"SHOPCHAT_BACKEND_BASE_URL"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"SHOPCHAT_BACKEND_TIMEOUT_SECONDS"`
}

type WidgetConfig struct {
	Host             string `json:"host" env:"SHOPCHAT_WIDGET_HOST"`
	Port             int    `json:"port" env:"SHOPCHAT_WIDGET_PORT"`
	Title            string `json:"title" env:"SHOPCHAT_WIDGET_TITLE"`
	MaxMessageLength int    `json:"max_message_length" env:"SHOPCHAT_WIDGET_MAX_MESSAGE_LENGTH"`
	SendsPerMinute   int    `json:"sends_per_minute" env:"SHOPCHAT_WIDGET_SENDS_PER_MINUTE"`
	HistoryTTLHours  int    `json:"history_ttl_hours" env:"SHOPCHAT_WIDGET_HISTORY_TTL_HOURS"`
}

// SessionConfig selects where the terminal client keeps the user identifier.
// Backend is one of "file", "sqlite" or "memory".
type SessionConfig struct {
	Backend string `json:"backend" env:"SHOPCHAT_SESSION_BACKEND"`
	Path    string `json:"path" env:"SHOPCHAT_SESSION_PATH"`
}

type TerminalConfig struct {
	Prompt      string `json:"prompt" env:"SHOPCHAT_TERMINAL_PROMPT"`
	HistoryFile string `json:"history_file" env:"SHOPCHAT_TERMINAL_HISTORY_FILE"`
}

type LogConfig struct {
	Level string `json:"level" env:"SHOPCHAT_LOG_LEVEL"`
	JSON  bool   `json:"json" env:"SHOPCHAT_LOG_JSON"`
}

const (
	SessionBackendFile   = "file"
	SessionBackendSQLite = "sqlite"
	SessionBackendMemory = "memory"
)

func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 60,
		},
		Widget: WidgetConfig{
			Host:             "0.0.0.0",
			Port:             18800,
			Title:            "Interlux Assistant",
			MaxMessageLength: 4000,
			SendsPerMinute:   20,
			HistoryTTLHours:  24,
		},
		Session: SessionConfig{
			Backend: SessionBackendFile,
			Path:    "~/.shopchat/session",
		},
		Terminal: TerminalConfig{
			Prompt:      "you> ",
			HistoryFile: "~/.shopchat/history",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads path (JSON, YAML or TOML by extension) over the defaults and
// then applies SHOPCHAT_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Support full config from env var (for containers)
	if cfgJSON := os.Getenv("SHOPCHAT_CONFIG_JSON"); cfgJSON != "" {
		if err := json.Unmarshal([]byte(cfgJSON), cfg); err != nil {
			return nil, fmt.Errorf("parsing SHOPCHAT_CONFIG_JSON: %w", err)
		}
		if err := env.Parse(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode routes YAML and TOML through a generic map so the json tags stay the
// single source of key names.
func decode(path string, data []byte, cfg *Config) error {
	var raw map[string]interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return err
		}
	default:
		return json.Unmarshal(data, cfg)
	}

	normalized, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, cfg)
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that would make the client unusable.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("backend.base_url: missing host")
	}
	if c.Widget.Port <= 0 || c.Widget.Port > 65535 {
		return fmt.Errorf("widget.port: %d out of range", c.Widget.Port)
	}
	switch c.Session.Backend {
	case SessionBackendFile, SessionBackendSQLite, SessionBackendMemory:
	default:
		return fmt.Errorf("session.backend: unknown backend %q", c.Session.Backend)
	}
	return nil
}

func (c *Config) BackendTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Backend.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// HistoryTTL is how long a conversation is kept for replay. Unset means a day.
func (w WidgetConfig) HistoryTTL() time.Duration {
	if w.HistoryTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(w.HistoryTTLHours) * time.Hour
}

func (c *Config) SessionPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Session.Path)
}

func (c *Config) TerminalHistoryFile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Terminal.HistoryFile)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
