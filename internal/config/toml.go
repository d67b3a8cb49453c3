// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Profile ProfileConfig `toml:"profile"`
	Aim     AimConfig     `toml:"aim"`
	Typing  TypingConfig  `toml:"typing"`
	Audio   AudioConfig   `toml:"audio"`
	Server  ServerConfig  `toml:"server"`
}

// ProfileConfig identifies the local player.
type ProfileConfig struct {
	Name *string `toml:"name"`
}

// AimConfig maps aim trainer settings.
type AimConfig struct {
	Duration  *int `toml:"duration"`
	Countdown *int `toml:"countdown"`
	Targets   *int `toml:"targets"`
}

// TypingConfig maps typing drill settings.
type TypingConfig struct {
	Countdown *int    `toml:"countdown"`
	WordsFile *string `toml:"words-file"`
}

// AudioConfig maps sound settings.
type AudioConfig struct {
	Enabled *bool `toml:"enabled"`
	Volume  *int  `toml:"volume"`
}

// ServerConfig maps settings of the serve command.
type ServerConfig struct {
	HTTPAddr  *string `toml:"http-addr"`
	SSHAddr   *string `toml:"ssh-addr"`
	HostKey   *string `toml:"host-key"`
	RateRPS   *int    `toml:"rate-rps"`
	RateBurst *int    `toml:"rate-burst"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads a .env file when present and applies TUIDRILL_* variables on top of the
// server section. Environment wins over the file.
func LoadEnv(cfg *FileConfig) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	if v := strings.TrimSpace(os.Getenv("TUIDRILL_HTTP_ADDR")); v != "" {
		cfg.Server.HTTPAddr = &v
	}
	if v := strings.TrimSpace(os.Getenv("TUIDRILL_SSH_ADDR")); v != "" {
		cfg.Server.SSHAddr = &v
	}
	if v := strings.TrimSpace(os.Getenv("TUIDRILL_HOST_KEY")); v != "" {
		cfg.Server.HostKey = &v
	}
	if v := strings.TrimSpace(os.Getenv("TUIDRILL_RATE_RPS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TUIDRILL_RATE_RPS: %w", err)
		}
		cfg.Server.RateRPS = &n
	}
	if v := strings.TrimSpace(os.Getenv("TUIDRILL_RATE_BURST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TUIDRILL_RATE_BURST: %w", err)
		}
		cfg.Server.RateBurst = &n
	}
	return nil
}
