package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// GameConfig holds the tunables for a linkduel client.
type GameConfig struct {
	// TotalRounds is the per-game round count (and deck length).
	TotalRounds int `json:"total_rounds"`
	// DebounceMS is the URL write coalescing window in milliseconds.
	DebounceMS int `json:"debounce_ms"`
	// MaxTokenLength caps the encoded link token.
	MaxTokenLength int `json:"max_token_length"`
	// DataDir is where game backups and the current link live.
	DataDir string `json:"data_dir"`
	// ShareBaseURL prefixes generated share links.
	ShareBaseURL string `json:"share_base_url"`
	// DiscordWebhookURL, when set, receives "your move" notifications.
	DiscordWebhookURL string `json:"discord_webhook_url"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the configuration from the given path. Missing
// keys fall back to defaults; a missing file is not an error.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		c := defaults()
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			cfg = &c
			return
		}
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		applyDefaults(&c)
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global configuration, or defaults when no
// config was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		c := defaults()
		return &c
	}
	return cfg
}

// Debounce returns the configured debounce window as a duration.
func (c *GameConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func defaults() GameConfig {
	return GameConfig{
		TotalRounds:    5,
		DebounceMS:     300,
		MaxTokenLength: 8192,
		DataDir:        defaultDataDir(),
		ShareBaseURL:   "https://linkduel.example/play",
	}
}

func applyDefaults(c *GameConfig) {
	d := defaults()
	if c.TotalRounds <= 0 {
		c.TotalRounds = d.TotalRounds
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = d.DebounceMS
	}
	if c.MaxTokenLength <= 0 {
		c.MaxTokenLength = d.MaxTokenLength
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.ShareBaseURL == "" {
		c.ShareBaseURL = d.ShareBaseURL
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linkduel"
	}
	return home + "/.linkduel"
}
