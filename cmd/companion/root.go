package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"mindsukoon.app/companion/common/id"
	"mindsukoon.app/companion/common/logger"
	"mindsukoon.app/companion/common/otel"
	"mindsukoon.app/companion/core/config"
)

func execute() {
	rootCmd := &cobra.Command{
		Use:           "companion",
		Short:         "MindSukoon mental health support companion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newIngestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every subcommand sets up before doing work.
type app struct {
	cfg       config.Config
	telemetry *otel.Telemetry
	redis     *redis.Client
}

// setup loads config and routes logs to stderr so stdout stays a clean
// conversation.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(config.ServiceTypeCLI)
	if err != nil {
		return nil, err
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("initialize otel: %w", err)
	}

	logger.SetupWriter(cfg, os.Stderr)

	if err := id.Init(3); err != nil {
		return nil, fmt.Errorf("initialize id generator: %w", err)
	}

	rt := &app{cfg: cfg, telemetry: telemetry}

	if cfg.Redis.Enabled() {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "redis unreachable, continuing without it", "error", err)
			_ = client.Close()
		} else {
			rt.redis = client
		}
	}

	return rt, nil
}

func (rt *app) close(ctx context.Context) {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.telemetry != nil {
		if err := rt.telemetry.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "otel shutdown error", "error", err)
		}
	}
}
