package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	API           APIConfig           `koanf:"api"`
	Poll          PollConfig          `koanf:"poll"`
	Call          CallConfig          `koanf:"call"`
	Data          DataConfig          `koanf:"data"`
	Notifications NotificationsConfig `koanf:"notifications"`
	Log           LogConfig           `koanf:"log"`
}

type APIConfig struct {
	BaseURL string `koanf:"base_url"`
	Timeout int    `koanf:"timeout"` // seconds
}

type PollConfig struct {
	IntervalSeconds int `koanf:"interval_seconds"`
}

// CallConfig shapes the incoming-call screen. Track and button widths are in
// the same abstract pixel units the slide controls use; commit_proximity is
// how close to the end of the track a release must be to fire.
type CallConfig struct {
	RingDelayMS     int `koanf:"ring_delay_ms"`
	CommitProximity int `koanf:"commit_proximity"`
	TrackWidth      int `koanf:"track_width"`
	ButtonWidth     int `koanf:"button_width"`
	DragStep        int `koanf:"drag_step"`
}

type DataConfig struct {
	Dir string `koanf:"dir"`
}

type NotificationsConfig struct {
	Desktop bool `koanf:"desktop"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// Load builds the configuration from defaults, an optional YAML file, and
// CALLBACKD_-prefixed environment variables, in that precedence order.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath == "" {
		configPath = DefaultConfigPath()
	}
	configPath = expandPath(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("CALLBACKD_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CALLBACKD_")), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Data.Dir = expandPath(cfg.Data.Dir)
	cfg.Log.File = expandPath(cfg.Log.File)
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("config: api.base_url is required (set CALLBACKD_API__BASE_URL or add to config file)")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("config: api.timeout must be positive")
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("config: poll.interval_seconds must be positive")
	}
	if c.Call.RingDelayMS <= 0 {
		return fmt.Errorf("config: call.ring_delay_ms must be positive")
	}
	if c.Call.TrackWidth <= c.Call.ButtonWidth {
		return fmt.Errorf("config: call.track_width must exceed call.button_width")
	}
	if c.Call.CommitProximity < 0 || c.Call.CommitProximity >= c.Call.TrackWidth-c.Call.ButtonWidth {
		return fmt.Errorf("config: call.commit_proximity must lie within the slide travel")
	}
	return nil
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
