package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"MiniPOS/internal/auth"
	"MiniPOS/internal/billing"
	"MiniPOS/internal/catalog"
	"MiniPOS/internal/dashboard"
	"MiniPOS/internal/sale"
	"MiniPOS/pkg/kit"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return runServer(ctx, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func runServer(ctx context.Context, a *app) error {
	creds, err := auth.NewCredentials(a.cfg.Auth.Username, a.cfg.Auth.Password, bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	jwt := auth.NewTokenMaker(a.cfg.Auth.JWTSecret)

	h := dashboard.NewHandler(dashboard.Deps{
		Auth:    &auth.Server{Log: a.log, Creds: creds, JWT: jwt, TokenTTL: a.cfg.Auth.TokenTTL},
		JWT:     jwt,
		Catalog: &catalog.Server{Store: a.store, Log: a.log},
		Sales:   &sale.Server{Sales: sale.NewRegistry(a.saleDeps(), sale.WithMaxAge(a.cfg.Sales.MaxAge)), Log: a.log},
		Bills:   &billing.Server{Archive: a.archive, Log: a.log},
	}, dashboard.HTTPDeps{
		Log:            a.log,
		Registry:       a.reg,
		MetricsEnabled: a.cfg.Metrics.Enabled,
		MetricsToken:   a.cfg.Metrics.Token,
	})

	return kit.RunHTTPServer(ctx, a.cfg.Server.Addr, h, a.log, a.cfg.Server.ShutdownTimeout)
}
