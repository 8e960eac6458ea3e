package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"contentpulse/internal/app"
	"contentpulse/internal/config"
	"contentpulse/internal/logging"
)

var opts struct {
	Addr   string `short:"a" long:"addr" description:"HTTP listen address (overrides config)"`
	Config string `short:"c" long:"config" description:"path to YAML config file"`
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Config != "" {
		_ = os.Setenv("CONTENTPULSE_CONFIG", opts.Config)
	}

	cfg := config.Load()
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}

	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
