package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/plvacc/vdgs/internal/config"
	"github.com/plvacc/vdgs/internal/logging"
	"github.com/plvacc/vdgs/internal/vacdm"
	"github.com/plvacc/vdgs/internal/vatsim"
	"github.com/plvacc/vdgs/internal/vdgs"
)

// The run function is like the main function, except that it takes in operating system fundamentals as arguments, and returns an error.
//
// It shows the departure slot of one VATSIM pilot and keeps it refreshed until interrupted.
func run(ctx context.Context, args []string, getenv func(key string) string, stdout io.Writer) error {
	// The configured log level is not known yet
	startLogger := slog.New(logging.NewTerminalHandler(os.Stderr, slog.LevelWarn))

	cfg, err := config.Load(getenv, startLogger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.StringVar(&cfg.VatsimCID, "cid", cfg.VatsimCID, "VATSIM CID of the pilot")
	flags.DurationVar(&cfg.RefreshInterval, "interval", cfg.RefreshInterval, "Board refresh interval")
	flags.BoolVar(&cfg.SkipAirborneCheck, "skip-airborne-check", cfg.SkipAirborneCheck, "Keep showing the slot after departure")
	flags.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Timeout per HTTP request (0 disables it)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level written to stderr (default info)")
	once := flags.Bool("once", false, "Refresh the board once and exit")
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.ValidateBoard(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	servers := vacdm.DefaultServers
	if len(cfg.VacdmServers) > 0 {
		if servers, err = vacdm.ParseServers(cfg.VacdmServers); err != nil {
			return fmt.Errorf("invalid %s: %w", config.EnvVacdmServers, err)
		}
	}

	level, err := logging.ParseLevel(cfg.LogLevel, slog.LevelInfo)
	if err != nil {
		return err
	}
	logger := slog.New(logging.NewTerminalHandler(os.Stderr, level))

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	members := vatsim.NewClient(
		vatsim.WithHttpClient(httpClient),
		vatsim.WithMembersURL(cfg.VatsimMembersURL),
		vatsim.WithDataURL(cfg.VatsimDataURL),
	)
	slots := vacdm.NewClient(
		vacdm.WithHttpClient(httpClient),
		vacdm.WithServers(servers),
		vacdm.WithLogger(logger),
	)

	monitor := vdgs.NewMonitor(members, slots, logger, cfg, stdout)

	if *once {
		return monitor.RefreshOnce(ctx)
	}

	logger.Info("VDGS board starting", "cid", cfg.VatsimCID, "slot_servers", len(servers))
	if err := monitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("board refresh loop failed: %w", err)
	}

	logger.Info("VDGS board stopped")
	return nil
}
