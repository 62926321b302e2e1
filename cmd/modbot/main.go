package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"sentinel-modbot/internal/bot"
	"sentinel-modbot/internal/config"
	"sentinel-modbot/internal/metrics"
	"sentinel-modbot/internal/ops"
	"sentinel-modbot/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var flagConfig = cli.StringFlag{
	Name:  "config",
	Usage: "YAML configuration file (defaults to $CONFIG_PATH, then config.yaml)",
}

var flagLogLevel = cli.StringFlag{
	Name:  "log-level",
	Usage: "Override the configured log level (debug, info, warn, error)",
}

var app = cli.Command{
	Name:  "modbot",
	Usage: "Discord moderation bot",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLogLevel,
	},
	Commands: []*cli.Command{
		{
			Name:   "check",
			Usage:  "Validate the configuration and print a summary",
			Action: cliCheck,
		},
	},
	Action: cliRun,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, fmt.Errorf("couldn't load config: %w", err)
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := config.BuildLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("couldn't build logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("storage init failed: %w", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	botSvc, err := bot.New(cfg, logger, store, m)
	if err != nil {
		return fmt.Errorf("bot init failed: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if err := botSvc.Start(ctx); err != nil {
		return fmt.Errorf("bot start failed: %w", err)
	}
	defer botSvc.Close()
	logger.Info("bot started", zap.String("prefix", cfg.Prefix), zap.Int("banned_words", len(cfg.BannedWords)))

	if cfg.Health.Enabled {
		g.Go(func() error {
			return ops.Serve(ctx, cfg.Health.Addr, ops.NewRouter(reg, botSvc.Ready), logger)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown requested")
		return nil
	})
	return g.Wait()
}

func cliCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Commands))
	for name := range cfg.Commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("prefix:         %s\n", cfg.Prefix)
	fmt.Printf("commands:       %v\n", names)
	fmt.Printf("banned words:   %d\n", len(cfg.BannedWords))
	fmt.Printf("action log:     %s\n", orUnset(cfg.LogChannels.Action))
	fmt.Printf("message log:    %s\n", orUnset(cfg.LogChannels.Message))
	fmt.Printf("user log:       %s\n", orUnset(cfg.LogChannels.User))
	fmt.Printf("eval enabled:   %t\n", cfg.Eval.Enabled)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
