// Package config loads the bisresample configuration from a YAML file and
// BISRESAMPLE_* environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

const (
	EnvPrefix = "BISRESAMPLE"
	FileName  = "bisresample.yaml"
)

type Config struct {
	// Library is the path of the compiled biswasm library.
	Library          string  `fig:"library"`
	MemoryLimitPages uint32  `fig:"memoryLimitPages" default:"16384"`
	LogLevel         string  `fig:"logLevel" default:"info"`
	Workers          int     `fig:"workers" default:"2"`
	Watch            Watch   `fig:"watch"`
	Metrics          Metrics `fig:"metrics"`
	// Defaults override module parameter defaults, keyed by varname.
	Defaults map[string]string `fig:"defaults"`
}

type Watch struct {
	Dir    string        `fig:"dir" default:"incoming"`
	OutDir string        `fig:"outDir" default:"resampled"`
	Suffix string        `fig:"suffix" default:".bisobj"`
	Settle time.Duration `fig:"settle" default:"500ms"`
}

type Metrics struct {
	Enabled   bool   `fig:"enabled"`
	Port      int    `fig:"port" default:"9090"`
	URLPrefix string `fig:"urlPrefix"`
}

// Load reads the configuration file from path, or from the default
// locations when path is empty. A missing file is not an error: env
// variables and defaults still apply.
func Load(cfg *Config, path string) error {
	var dirs []string
	file := FileName
	if path != "" {
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			dirs = []string{filepath.Dir(path)}
			file = filepath.Base(path)
		} else {
			dirs = []string{path}
		}
	} else {
		dirs = append(dirs, ".", "configs")
		if home, err := os.UserHomeDir(); err == nil {
			dirs = append(dirs, filepath.Join(home, ".bisweb"))
		}
	}

	err := fig.Load(cfg, fig.File(file), fig.Dirs(dirs...), fig.UseEnv(EnvPrefix))
	if errors.Is(err, fig.ErrFileNotFound) {
		return LoadEnv(cfg)
	}
	return err
}

// LoadEnv fills cfg from the environment and defaults only. fig always reads
// a file, so an empty one is loaded from a scratch directory.
func LoadEnv(cfg *Config) error {
	dir, err := os.MkdirTemp("", "bisresample-config-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{}\n"), 0o600); err != nil {
		return err
	}
	return fig.Load(cfg, fig.File(FileName), fig.Dirs(dir), fig.UseEnv(EnvPrefix))
}
