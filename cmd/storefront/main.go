package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bmaxtar/storefront/internal/version"
)

func main() {
	setupLogger()

	root := &cobra.Command{
		Use:     "storefront",
		Short:   "Storefront catalog service",
		Long:    "Storefront serves a product catalog over HTTP, manages schema migrations and runs query showcase scenarios.",
		Version: version.String(),
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newShowcaseCmd())

	if err := root.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func setupLogger() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	level, err := log.ParseLevel(os.Getenv("STOREFRONT_LOG_LEVEL"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
