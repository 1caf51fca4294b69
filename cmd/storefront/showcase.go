package main

import (
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bmaxtar/storefront/internal/app"
	"github.com/bmaxtar/storefront/internal/service/showcase"
)

func newShowcaseCmd() *cobra.Command {
	var useMemory bool

	cmd := &cobra.Command{
		Use:   "showcase [step]",
		Short: "Run query showcase scenarios",
		Long:  "Runs the query demonstration scenarios against the configured storage. Pass a step name to run a single scenario.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg := app.LoadConfig()
			if useMemory {
				cfg.StorageDriver = app.StorageDriverMemory
			}

			deps, err := app.NewDependencies(ctx, cfg)
			if err != nil {
				return err
			}
			defer deps.Close()

			sc := showcase.New(deps.Repos, deps.Raw, deps.Metrics, log.WithField("component", "showcase"))
			if len(args) == 1 {
				return sc.RunStep(ctx, args[0])
			}

			log.WithField("steps", strings.Join(sc.StepNames(), ", ")).Info("running all showcase steps")
			return sc.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&useMemory, "memory", false, "use the in-memory storage with demo data")

	return cmd
}
