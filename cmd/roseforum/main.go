package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Luiz-altf4/Rose-Forum/internal/config"
	"github.com/Luiz-altf4/Rose-Forum/internal/forum"
	"github.com/Luiz-altf4/Rose-Forum/internal/identity"
	"github.com/Luiz-altf4/Rose-Forum/internal/logger"
	"github.com/Luiz-altf4/Rose-Forum/internal/metrics"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/database"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/memory"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/redisstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// app holds what every command needs once the store is open.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	forum    *forum.Forum
	closers  []func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	if err := a.cliApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "roseforum:", err)
		os.Exit(1)
	}
}

func (a *app) cliApp() *cli.App {
	return &cli.App{
		Name:  "roseforum",
		Usage: "local forum with posts, threaded comments, votes, friends and chat",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "storage", Usage: "backend: memory, sqlite, postgres or redis (overrides config)"},
			&cli.BoolFlag{Name: "debug", Usage: "development logging"},
			&cli.StringFlag{Name: "as", Usage: "act under this author name instead of the stored identity"},
		},
		Before:   a.setup,
		After:    a.teardown,
		Commands: a.commands(),
	}
}

func (a *app) setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.IsSet("storage") {
		cfg.Storage = c.String("storage")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logger.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	zap.ReplaceGlobals(a.log)

	store, err := a.openStore(c.Context)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	instrumented := metrics.NewInstrumentedStore(store, a.registry)

	a.forum = forum.New(instrumented, forum.Options{
		Logger:           a.log,
		ChatHistoryLimit: cfg.ChatHistoryLimit,
		ChatReplyDelay:   cfg.ChatReplyDelay,
		AutosaveDelay:    cfg.DraftAutosaveDelay,
	})

	if name := c.String("as"); name != "" {
		c.Context = identity.WithName(c.Context, name)
	}
	return nil
}

func (a *app) openStore(ctx context.Context) (storage.Store, error) {
	switch a.cfg.Storage {
	case "memory":
		a.log.Info("using in-memory storage")
		return memory.NewStoreWithQuota(a.cfg.QuotaBytes), nil

	case "sqlite":
		store, err := database.Open("sqlite3", a.cfg.SQLitePath, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil

	case "postgres":
		dsn, err := a.cfg.PostgresDSN()
		if err != nil {
			return nil, err
		}
		store, err := database.Open("postgres", dsn, a.log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		return store, nil

	case "redis":
		store, err := redisstore.Dial(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB, a.cfg.Redis.Prefix)
		if err != nil {
			return nil, err
		}
		a.log.Info("using redis storage", zap.String("addr", a.cfg.Redis.Addr))
		a.closers = append(a.closers, store.Close)
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage %q", a.cfg.Storage)
}

func (a *app) teardown(c *cli.Context) error {
	if a.forum != nil {
		a.forum.Close()
	}
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return firstErr
}
