package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuidrill/internal/config"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/wordlist"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("expected the template to decode: %v", err)
	}
	if cfg.Aim.Duration != nil || cfg.Server.HTTPAddr != nil {
		t.Fatalf("expected every value commented out, got %+v", cfg)
	}
}

func TestApplyIntConfigKeepsChangedFlags(t *testing.T) {
	var countdown int
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&countdown, "countdown", 3, "")
	fromFile := 7

	applyIntConfig(cmd, "countdown", &countdown, &fromFile)
	if countdown != 7 {
		t.Fatalf("expected config value applied, got %d", countdown)
	}
	if err := cmd.Flags().Set("countdown", "1"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyIntConfig(cmd, "countdown", &countdown, &fromFile)
	if countdown != 1 {
		t.Fatalf("expected explicit flag to win, got %d", countdown)
	}
	applyIntConfig(cmd, "countdown", &countdown, nil)
	if countdown != 1 {
		t.Fatalf("nil config must not change the value")
	}
}

func TestLoadVocabularyFallsBackToBuiltIn(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	vocab, err := loadVocabulary("")
	if err != nil {
		t.Fatalf("expected built-in words, got %v", err)
	}
	if len(vocab.Easy) != len(wordlist.Default().Easy) {
		t.Fatalf("expected the built-in vocabulary")
	}
	if _, err := loadVocabulary(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected an explicit missing file to fail")
	}
}

func TestValidateAimConfig(t *testing.T) {
	if err := validateAimConfig(game.DefaultAimConfig()); err != nil {
		t.Fatalf("default config must be valid: %v", err)
	}
	bad := []game.AimConfig{
		{Duration: 0, Countdown: 3, Targets: 3},
		{Duration: time.Second, Countdown: -1, Targets: 3},
		{Duration: time.Second, Countdown: 0, Targets: 0},
	}
	for _, cfg := range bad {
		if err := validateAimConfig(cfg); err == nil {
			t.Fatalf("expected %+v rejected", cfg)
		}
	}
}

func TestResolvePlayerName(t *testing.T) {
	cmd := newRootCmd()
	t.Setenv("USER", "")
	playerName = ""
	if got := resolvePlayerName(cmd, nil); got != defaultPlayer {
		t.Fatalf("expected default player, got %q", got)
	}
	fromFile := "ann"
	if got := resolvePlayerName(cmd, &fromFile); got != "ann" {
		t.Fatalf("expected config name, got %q", got)
	}
	t.Setenv("USER", "bob")
	if got := resolvePlayerName(cmd, nil); got != "bob" {
		t.Fatalf("expected $USER, got %q", got)
	}
}
