package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniPOS/internal/billing"
	"MiniPOS/internal/catalog"
	"MiniPOS/internal/config"
	"MiniPOS/internal/sale"
	"MiniPOS/pkg/kit"
)

const service = "minipos"

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	reg     *prometheus.Registry
	store   *catalog.Store
	archive *billing.Archive

	closers []func() error
}

func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := flags.loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := kit.NewLogger(service, cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &app{
		cfg:     cfg,
		log:     log,
		reg:     prometheus.NewRegistry(),
		archive: billing.NewArchive(cfg.Bills.Dir),
	}

	backend, err := a.openBackend()
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	a.store = catalog.NewStore(ctx, backend, log, catalog.WithMetrics(catalog.NewMetrics(a.reg)))
	return a, nil
}

func (a *app) openBackend() (catalog.Backend, error) {
	switch a.cfg.Catalog.Backend {
	case config.BackendSQLite:
		db, err := catalog.NewSQLiteBackend(a.cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.log.Info("catalog backend", zap.String("kind", "sqlite"), zap.String("path", a.cfg.Catalog.SQLitePath))
		return db, nil
	case config.BackendMemory:
		a.log.Info("catalog backend", zap.String("kind", "memory"))
		return catalog.NewMemBackend(), nil
	default:
		a.log.Info("catalog backend", zap.String("kind", "file"), zap.String("path", a.cfg.Catalog.File))
		return catalog.NewFileBackend(a.cfg.Catalog.File), nil
	}
}

func (a *app) saleDeps() sale.Deps {
	return sale.Deps{
		Stock:   a.store,
		Bills:   a.archive,
		Log:     a.log,
		Metrics: sale.NewMetrics(a.reg),
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
