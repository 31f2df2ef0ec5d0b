package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/batch"
)

var batchOpts struct {
	outDir  string
	workers int
}

var batchCmd = &cobra.Command{
	Use:   "batch FILE...",
	Short: "Resample many images in parallel",
	Long: `Resample every FILE into --outdir as <name>_resampled.bisobj.

Parameters come from the "defaults" section of the config file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lib, closeLib, err := openLibrary(ctx)
		if err != nil {
			return err
		}
		defer closeLib()

		workers := conf.Workers
		if cmd.Flags().Changed("workers") {
			workers = batchOpts.workers
		}
		r := &batch.Runner{
			Library: lib,
			Workers: workers,
			Logger:  logger,
		}

		failed := 0
		for _, res := range r.Run(ctx, batch.Jobs(args, batchOpts.outDir, baseValues())) {
			if !res.OK {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "FAIL %s: %v\n", res.Job.Input, res.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s -> %s (%s, %s)\n",
				res.Job.Input, res.Job.Output, res.Output, res.Elapsed.Round(time.Millisecond))
		}
		if failed > 0 {
			logger.Warn("batch finished with failures", zap.Int("failed", failed), zap.Int("total", len(args)))
			return fmt.Errorf("%d of %d jobs failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchOpts.outDir, "outdir", "o", ".", "Output directory")
	batchCmd.Flags().IntVarP(&batchOpts.workers, "workers", "w", 2, "Parallel jobs (default from config)")
}
