package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bmaxtar/storefront/internal/app"
	"github.com/bmaxtar/storefront/internal/version"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := app.LoadConfig()
			log.WithFields(log.Fields{
				"version": version.GetVersion(),
				"driver":  cfg.StorageDriver,
				"addr":    cfg.HTTPAddr,
			}).Info("starting storefront")

			if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
