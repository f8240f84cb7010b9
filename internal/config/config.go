package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DefaultVolume float64 `json:"default_volume"` // linear 0..1
	VolumeStep    float64 `json:"volume_step"`
	SimpleMode    bool    `json:"simple_mode"`
	KeyBindings   KeyMap  `json:"key_bindings"`
}

// KeyMap defines keyboard shortcuts. Arrow keys are named "up",
// "down", "left", "right"; the space bar is "space".
type KeyMap struct {
	PlayPause  string `json:"play_pause"`
	Mute       string `json:"mute"`
	Next       string `json:"next"`
	Previous   string `json:"previous"`
	VolumeUp   string `json:"volume_up"`
	VolumeDown string `json:"volume_down"`
	Quit       string `json:"quit"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		DefaultVolume: 0.75,
		VolumeStep:    0.05,
		SimpleMode:    false,
		KeyBindings: KeyMap{
			PlayPause:  "space",
			Mute:       "p",
			Next:       "right",
			Previous:   "left",
			VolumeUp:   "up",
			VolumeDown: "down",
			Quit:       "q",
		},
	}
}

// Load reads configuration from path, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save marshals and saves configuration to path.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects out-of-range values.
func (c *Config) Validate() error {
	if c.DefaultVolume < 0 || c.DefaultVolume > 1 {
		return fmt.Errorf("default_volume must be in [0, 1], got %v", c.DefaultVolume)
	}
	if c.VolumeStep <= 0 || c.VolumeStep > 1 {
		return fmt.Errorf("volume_step must be in (0, 1], got %v", c.VolumeStep)
	}
	return nil
}

// Path returns the config file path. A .env file in the working
// directory is loaded first so CUEPLAY_CONFIG can live there.
func Path() string {
	_ = godotenv.Load()

	if path := os.Getenv("CUEPLAY_CONFIG"); path != "" {
		return path
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "cueplay", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "cueplay", "config.json")
}
