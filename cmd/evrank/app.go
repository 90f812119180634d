package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rushteam/evrank/config"
	"github.com/rushteam/evrank/core"
	"github.com/rushteam/evrank/logging"
	"github.com/rushteam/evrank/metrics"
	"github.com/rushteam/evrank/model"
	"github.com/rushteam/evrank/rank"
	"github.com/rushteam/evrank/store"
)

// app 持有进程级依赖；每个子命令在 PersistentPreRunE 之后使用。
type app struct {
	configPath string

	cfg     *config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	store   core.Store
	ranker  *rank.Ranker
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.metrics = metrics.New()

	st, err := openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	a.store = st
	logger.Debug("store ready", "backend", st.Name())

	coeffs := model.NewCoefficientStore(st,
		model.WithKeyPrefix(cfg.Store.KeyPrefix),
		model.WithLogger(logger),
		model.WithMetrics(a.metrics),
	)
	a.ranker = rank.NewRanker(coeffs,
		rank.WithLogger(logger),
		rank.WithMetrics(a.metrics),
	)
	return nil
}

func (a *app) close(_ *cobra.Command, _ []string) error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func openStore(ctx context.Context, cfg config.StoreConfig) (core.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendRedis:
		st, err := store.NewRedisStoreFromURL(ctx, cfg.URL, store.RedisOptions{
			DialTimeout: cfg.DialTimeout(),
			ReadTimeout: cfg.ReadTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}
