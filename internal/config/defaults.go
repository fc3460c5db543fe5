package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"api": map[string]interface{}{
			"base_url": "http://localhost:8001",
			"timeout":  15,
		},
		"poll": map[string]interface{}{
			"interval_seconds": 60,
		},
		"call": map[string]interface{}{
			"ring_delay_ms":    3000,
			"commit_proximity": 50,
			"track_width":      320,
			"button_width":     60,
			"drag_step":        24,
		},
		"data": map[string]interface{}{
			"dir": "~/.callbackd",
		},
		"notifications": map[string]interface{}{
			"desktop": true,
		},
		"log": map[string]interface{}{
			"level": "info",
			"file":  "~/.callbackd/callbackd.log",
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func DefaultConfigPath() string {
	return "~/.callbackd/config.yaml"
}
