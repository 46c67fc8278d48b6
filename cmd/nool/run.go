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
	"github.com/plvacc/vdgs/internal/httpjson"
	"github.com/plvacc/vdgs/internal/logging"
	"github.com/plvacc/vdgs/internal/nool"
	"github.com/plvacc/vdgs/internal/vacdm"
)

// The run function is like the main function, except that it takes in operating system fundamentals as arguments, and returns an error.
//
// It fetches the vACDM airport directory and prints one line per airport VDGS endpoint.
// A failed directory fetch is reported on stdout and returned as *nool.DiscoveryError.
func run(ctx context.Context, args []string, getenv func(key string) string, stdout io.Writer) error {
	// The configured log level is not known yet
	startLogger := slog.New(logging.NewTerminalHandler(os.Stderr, slog.LevelWarn))

	cfg, err := config.Load(getenv, startLogger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags take precedence over the environment
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.StringVar(&cfg.DiscoveryURL, "discovery-url", cfg.DiscoveryURL, "vACDM directory listing the airport VDGS endpoints")
	flags.IntVar(&cfg.Parallelism, "parallelism", cfg.Parallelism, "Number of airports polled at once")
	flags.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Timeout per HTTP request (0 disables it)")
	flags.StringVar(&cfg.OutputFormat, "output", cfg.OutputFormat, "Report format: text, csv or json")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Minimum log level written to stderr (default error)")
	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.ValidateNool(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel, slog.LevelError)
	if err != nil {
		return err
	}
	logger := slog.New(logging.NewTerminalHandler(os.Stderr, level))

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Debug("configuration loaded",
		"discovery_url", cfg.DiscoveryURL,
		"parallelism", cfg.Parallelism,
		"timeout", cfg.RequestTimeout,
		"output", cfg.OutputFormat)

	client := vacdm.NewClient(
		vacdm.WithHttpClient(&http.Client{Timeout: cfg.RequestTimeout}),
		vacdm.WithDirectoryURL(cfg.DiscoveryURL),
		vacdm.WithLogger(logger),
	)

	report, err := nool.NewReporter(cfg.OutputFormat, stdout)
	if err != nil {
		return err
	}

	poller := nool.NewPoller(client, logger, cfg.Parallelism)
	if _, err := poller.Run(ctx, report); err != nil {
		var discoveryErr *nool.DiscoveryError
		if errors.As(err, &discoveryErr) {
			fmt.Fprintf(stdout, "Error fetching airport list: %s\n", httpjson.SingleLine(discoveryErr.Err.Error()))
		}
		return err
	}

	return nil
}
