package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bioimagesuiteweb/bisresample/batch"
	"github.com/bioimagesuiteweb/bisresample/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Resample images as they arrive in the watch directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lib, closeLib, err := openLibrary(ctx)
		if err != nil {
			return err
		}
		defer closeLib()

		metrics := watch.NewMetrics()
		runner := &batch.Runner{Library: lib, Workers: conf.Workers, Logger: logger}
		w := watch.New(conf.Watch, runner, baseValues(), metrics, logger.Named("watch"))

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return w.Run(gctx) })
		if conf.Metrics.Enabled {
			srv := watch.NewServer(conf.Metrics, metrics, logger.Named("metrics"))
			g.Go(func() error { return srv.Run(gctx) })
		}
		return g.Wait()
	},
}
