// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game  GameConfig  `toml:"game"`
	Audio AudioConfig `toml:"audio"`
	Keys  KeysConfig  `toml:"keys"`
	Log   LogConfig   `toml:"log"`
}

// GameConfig maps drilling settings.
type GameConfig struct {
	Band            *string `toml:"band"`
	Start           *int    `toml:"start"`
	End             *int    `toml:"end"`
	TierRequirement *int    `toml:"tier-requirement"`
	Policy          *string `toml:"policy"`
	Shuffle         *bool   `toml:"shuffle"`
	WritingRequired *bool   `toml:"writing-required"`
	EasyMode        *bool   `toml:"easy-mode"`
	Label           *string `toml:"label"`
	Traditional     *bool   `toml:"traditional"`
	ShowPinyin      *bool   `toml:"show-pinyin"`
}

// AudioConfig maps pronunciation settings.
type AudioConfig struct {
	Enabled *bool   `toml:"enabled"`
	Command *string `toml:"command"`
}

// KeysConfig maps hotkeys.
type KeysConfig struct {
	Slots  *string `toml:"slots"`
	Replay *string `toml:"replay"`
}

// LogConfig maps diagnostics settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
