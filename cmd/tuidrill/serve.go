package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuidrill/internal/backend"
	"github.com/verte-zerg/tuidrill/internal/config"
	"github.com/verte-zerg/tuidrill/internal/game"
	"github.com/verte-zerg/tuidrill/internal/generator"
	"github.com/verte-zerg/tuidrill/internal/logging"
	"github.com/verte-zerg/tuidrill/internal/model"
	"github.com/verte-zerg/tuidrill/internal/server"
	"github.com/verte-zerg/tuidrill/internal/store"
	"github.com/verte-zerg/tuidrill/internal/tui"
	"github.com/verte-zerg/tuidrill/internal/wordlist"
)

const (
	defaultHTTPAddr  = ":8080"
	defaultRateRPS   = 5
	defaultRateBurst = 10
)

var (
	serveHTTPAddr  string
	serveSSHAddr   string
	serveHostKey   string
	serveRateRPS   int
	serveRateBurst int
	serveDBPath    string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard API, live score feed and SSH drills",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveHTTPAddr, "http-addr", defaultHTTPAddr, "HTTP listen address")
	cmd.Flags().StringVar(&serveSSHAddr, "ssh-addr", "", "SSH listen address (empty disables SSH)")
	cmd.Flags().StringVar(&serveHostKey, "host-key", config.DefaultHostKeyPath(), "SSH host key path, created when missing")
	cmd.Flags().IntVar(&serveRateRPS, "rate-rps", defaultRateRPS, "write requests per second per client")
	cmd.Flags().IntVar(&serveRateBurst, "rate-burst", defaultRateBurst, "write request burst per client")
	cmd.Flags().StringVar(&serveDBPath, "db", config.DefaultDBPath(), "database path")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.LoadEnv(&fileCfg); err != nil {
		return err
	}
	applyStringConfig(cmd, "http-addr", &serveHTTPAddr, fileCfg.Server.HTTPAddr)
	applyStringConfig(cmd, "ssh-addr", &serveSSHAddr, fileCfg.Server.SSHAddr)
	applyStringConfig(cmd, "host-key", &serveHostKey, fileCfg.Server.HostKey)
	applyIntConfig(cmd, "rate-rps", &serveRateRPS, fileCfg.Server.RateRPS)
	applyIntConfig(cmd, "rate-burst", &serveRateBurst, fileCfg.Server.RateBurst)
	if serveRateRPS <= 0 || serveRateBurst <= 0 {
		return fmt.Errorf("--rate-rps and --rate-burst must be > 0")
	}

	logger, err := logging.New(os.Stderr, logLevel)
	if err != nil {
		return err
	}
	st, err := store.Open(serveDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	vocab, err := loadVocabulary("")
	if err != nil {
		return err
	}
	aimCfg := game.DefaultAimConfig()
	if fileCfg.Aim.Duration != nil {
		aimCfg.Duration = time.Duration(*fileCfg.Aim.Duration) * time.Second
	}
	if fileCfg.Aim.Targets != nil {
		aimCfg.Targets = *fileCfg.Aim.Targets
	}
	if fileCfg.Aim.Countdown != nil {
		aimCfg.Countdown = *fileCfg.Aim.Countdown
	}
	if err := validateAimConfig(aimCfg); err != nil {
		return fmt.Errorf("invalid [aim] config: %w", err)
	}
	typingCfg := game.DefaultTypingConfig()
	if fileCfg.Typing.Countdown != nil {
		if *fileCfg.Typing.Countdown < 0 {
			return fmt.Errorf("invalid [typing] config: countdown must be >= 0")
		}
		typingCfg.Countdown = *fileCfg.Typing.Countdown
	}

	srv := server.New(backend.New(st, logger), server.Config{
		HTTPAddr:    serveHTTPAddr,
		SSHAddr:     serveSSHAddr,
		HostKeyPath: serveHostKey,
		RateRPS:     serveRateRPS,
		RateBurst:   serveRateBurst,
		Games:       newGameFactory(vocab, aimCfg, typingCfg),
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// newGameFactory gives every SSH session its own generator. Remote sessions
// have no sound.
func newGameFactory(vocab wordlist.Vocabulary, aimCfg game.AimConfig, typingCfg game.TypingConfig) server.GameFactory {
	return func(mode model.Mode, opts tui.Options) tea.Model {
		if mode == model.ModeAim {
			return tui.NewAimModel(aimCfg, generator.New(vocab), opts)
		}
		return tui.NewTypingModel(typingCfg, generator.New(vocab), opts)
	}
}
