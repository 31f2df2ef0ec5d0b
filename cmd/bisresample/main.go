// Command bisresample resamples serialized images through the biswasm
// computation library.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bioimagesuiteweb/bisresample/biswasm"
	"github.com/bioimagesuiteweb/bisresample/config"
	"github.com/bioimagesuiteweb/bisresample/engine"
	"github.com/bioimagesuiteweb/bisresample/module"
	"github.com/bioimagesuiteweb/bisresample/resample"
)

var (
	configPath  string
	libraryPath string
	logLevel    string
	verbose     bool

	conf   config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bisresample",
	Short: "Resample images onto a new voxel grid",
	Long: `bisresample runs the resampleImage module of the biswasm library.

Images are serialized bisweb objects (.bisobj). The library itself is a
WebAssembly binary given with --library or the "library" config key.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		conf = config.Config{}
		if err := config.Load(&conf, configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if libraryPath != "" {
			conf.Library = libraryPath
		}
		if logLevel != "" {
			conf.LogLevel = logLevel
		}

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(conf.LogLevel)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		engine.SetLogger(logger.Named("engine"))
		biswasm.SetLogger(logger.Named("biswasm"))
		module.SetLogger(logger.Named("module"))
		resample.SetLogger(logger.Named("resample"))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file or directory (default: ., configs, ~/.bisweb)")
	rootCmd.PersistentFlags().StringVarP(&libraryPath, "library", "l", "", "Path to the biswasm library (.wasm)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(describeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
