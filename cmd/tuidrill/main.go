// Package main provides the CLI entrypoint for tuidrill.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuidrill/internal/audio"
	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/config"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/logging"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/store"
	"github.com/verte-zerg/tuidrill/internal/tui"
	"github.com/verte-zerg/tuidrill/internal/wordlist"
)

const (
	defaultPlayer      = "player"
	defaultAimDuration = 60
	defaultCountdown   = 3
	defaultTargets     = 3
	defaultVolume      = 70
	defaultLogLevel    = "info"
)

var (
	playerName string
	logLevel   string

	aimDuration  int
	aimCountdown int
	aimTargets   int

	typingCountdown int
	wordsFile       string

	soundEnabled bool
	soundVolume  int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuidrill",
		Short:         "Terminal aim trainer and zombie typing drill",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTypingCmd,
	}

	rootCmd.PersistentFlags().StringVar(&playerName, "player", "", "player name (default: $USER)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	addTypingFlags(rootCmd)

	rootCmd.AddCommand(newAimCmd())
	rootCmd.AddCommand(newTypingCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newFriendsCmd())
	rootCmd.AddCommand(newCoinsCmd())
	rootCmd.AddCommand(newTasksCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

func addSoundFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&soundEnabled, "sound", true, "play the gun shot sound")
	cmd.Flags().IntVar(&soundVolume, "volume", defaultVolume, "sound volume (0-100)")
}

func addTypingFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&typingCountdown, "countdown", defaultCountdown, "seconds before each wave")
	cmd.Flags().StringVar(&wordsFile, "words-file", "", "custom vocabulary file")
	addSoundFlags(cmd)
}

func newTypingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typing",
		Short: "Play the zombie typing drill",
		Args:  cobra.NoArgs,
		RunE:  runTypingCmd,
	}
	addTypingFlags(cmd)
	return cmd
}

func newAimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aim",
		Short: "Play the aim trainer",
		Args:  cobra.NoArgs,
		RunE:  runAimCmd,
	}
	cmd.Flags().IntVar(&aimDuration, "duration", defaultAimDuration, "session length in seconds")
	cmd.Flags().IntVar(&aimCountdown, "countdown", defaultCountdown, "seconds before the session starts")
	cmd.Flags().IntVar(&aimTargets, "targets", defaultTargets, "targets on the field")
	addSoundFlags(cmd)
	return cmd
}

// app holds what every command that touches the database needs.
type app struct {
	cfg      config.FileConfig
	st       *store.Store
	svc      *backend.Service
	user     model.User
	log      *log.Logger
	closeLog func() error
}

// openApp loads the config, opens the store and resolves the local player.
// TUI commands log to a file because the terminal belongs to the program.
func openApp(cmd *cobra.Command, tuiOwnsTerminal bool) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: fileCfg}
	if tuiOwnsTerminal {
		logger, closeLog, err := logging.OpenFile(config.DefaultLogPath(), logLevel)
		if err != nil {
			return nil, err
		}
		a.log, a.closeLog = logger, closeLog
	} else {
		logger, err := logging.New(os.Stderr, logLevel)
		if err != nil {
			return nil, err
		}
		a.log = logger
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.st = st
	a.svc = backend.New(st, a.log)

	name := resolvePlayerName(cmd, fileCfg.Profile.Name)
	user, err := a.svc.EnsureUser(context.Background(), name)
	if err != nil {
		a.close()
		return nil, err
	}
	a.user = user
	return a, nil
}

func (a *app) close() {
	if a.st != nil {
		if cerr := a.st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

func resolvePlayerName(cmd *cobra.Command, fromFile *string) string {
	name := playerName
	applyStringConfig(cmd, "player", &name, fromFile)
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSpace(os.Getenv("USER"))
	}
	if name == "" {
		name = defaultPlayer
	}
	return name
}

func runTypingCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	applyIntConfig(cmd, "countdown", &typingCountdown, a.cfg.Typing.Countdown)
	applyStringConfig(cmd, "words-file", &wordsFile, a.cfg.Typing.WordsFile)
	if typingCountdown < 0 {
		return fmt.Errorf("--countdown must be >= 0")
	}
	vocab, err := loadVocabulary(wordsFile)
	if err != nil {
		return err
	}

	snd, stop := openSound(cmd, a.cfg.Audio, a.log)
	defer stop()

	m := tui.NewTypingModel(game.TypingConfig{Countdown: typingCountdown}, generator.New(vocab), gameOptions(a, snd))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func runAimCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	applyIntConfig(cmd, "duration", &aimDuration, a.cfg.Aim.Duration)
	applyIntConfig(cmd, "countdown", &aimCountdown, a.cfg.Aim.Countdown)
	applyIntConfig(cmd, "targets", &aimTargets, a.cfg.Aim.Targets)
	cfg := game.AimConfig{
		Duration:  time.Duration(aimDuration) * time.Second,
		Countdown: aimCountdown,
		Targets:   aimTargets,
	}
	if err := validateAimConfig(cfg); err != nil {
		return err
	}

	snd, stop := openSound(cmd, a.cfg.Audio, a.log)
	defer stop()

	m := tui.NewAimModel(cfg, generator.New(wordlist.Default()), gameOptions(a, snd))
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func gameOptions(a *app, snd tui.Sound) tui.Options {
	return tui.Options{
		User:     a.user,
		Recorder: a.svc,
		Sound:    snd,
		Log:      a.log,
	}
}

func validateAimConfig(cfg game.AimConfig) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("--duration must be > 0")
	}
	if cfg.Countdown < 0 {
		return fmt.Errorf("--countdown must be >= 0")
	}
	if cfg.Targets <= 0 {
		return fmt.Errorf("--targets must be > 0")
	}
	return nil
}

// loadVocabulary reads path, or the default word file when it exists, and
// falls back to the built-in words.
func loadVocabulary(path string) (wordlist.Vocabulary, error) {
	explicit := path != ""
	if !explicit {
		path = config.DefaultWordListPath()
	}
	vocab, err := wordlist.LoadVocabulary(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return wordlist.Default(), nil
		}
		return wordlist.Vocabulary{}, fmt.Errorf("failed to load word list %s: %w", path, err)
	}
	return vocab, nil
}

// openSound starts the speaker and renders the gun sample in the background.
// A missing audio device only disables the sound.
func openSound(cmd *cobra.Command, cfg config.AudioConfig, logger *log.Logger) (tui.Sound, func()) {
	applyBoolConfig(cmd, "sound", &soundEnabled, cfg.Enabled)
	applyIntConfig(cmd, "volume", &soundVolume, cfg.Volume)
	if !soundEnabled {
		return nil, func() {}
	}
	out := audio.NewOutput()
	if err := out.Initialize(); err != nil {
		logger.Warn("audio unavailable, sound disabled", "err", err)
		return nil, func() {}
	}
	gun := audio.NewGun(out, soundVolume)
	gun.Load()
	return gun, out.Close
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuidrill configuration
# Uncomment a value to enable it. CLI flags override config values.

[profile]
# name = "ann"              # Player name (default: $USER)

[aim]
# duration = %d             # Session length in seconds
# countdown = %d             # Seconds before the session starts
# targets = %d               # Targets on the field

[typing]
# countdown = %d             # Seconds before each wave
# words-file = %q

[audio]
# enabled = true
# volume = %d               # 0-100

[server]
# http-addr = %q
# ssh-addr = ":2222"         # Leave empty to disable the SSH host
# host-key = %q
# rate-rps = %d
# rate-burst = %d
`,
		defaultAimDuration,
		defaultCountdown,
		defaultTargets,
		defaultCountdown,
		config.DefaultWordListPath(),
		defaultVolume,
		defaultHTTPAddr,
		config.DefaultHostKeyPath(),
		defaultRateRPS,
		defaultRateBurst,
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func writeOut(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
