package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Engine owns the wazero runtime the library runs on.
type Engine struct {
	runtime   wazero.Runtime
	stdout    io.Writer
	stderr    io.Writer
	closers   []io.Closer
	hostMu    sync.Mutex
	hostReady map[string]bool
}

// Config holds configuration for engine creation
type Config struct {
	// Stdout and Stderr receive the library's console output. When nil,
	// output is logged line by line, stdout at debug and stderr at warn.
	// Parallel instances share them, so they must be safe for concurrent use.
	Stdout io.Writer
	Stderr io.Writer

	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	// 256 = 16MB, 1024 = 64MB, 4096 = 256MB
	MemoryLimitPages uint32
}

// NewEngine creates a new wazero-based engine. cfg may be nil.
func NewEngine(ctx context.Context, cfg *Config) (*Engine, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		if cfg.MemoryLimitPages > 65536 {
			return nil, errors.InvalidInput(errors.PhaseLoad,
				fmt.Sprintf("memory limit %d pages exceeds 65536", cfg.MemoryLimitPages))
		}
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	e := &Engine{
		runtime:   wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		stdout:    cfg.Stdout,
		stderr:    cfg.Stderr,
		hostReady: make(map[string]bool),
	}
	if e.stdout == nil {
		w := &zapio.Writer{Log: Logger().Named("guest"), Level: zap.DebugLevel}
		e.stdout = &syncWriter{w: w}
		e.closers = append(e.closers, w)
	}
	if e.stderr == nil {
		w := &zapio.Writer{Log: Logger().Named("guest"), Level: zap.WarnLevel}
		e.stderr = &syncWriter{w: w}
		e.closers = append(e.closers, w)
	}
	return e, nil
}

// Compile compiles a library binary and checks its exports against the ABI.
func (e *Engine) Compile(ctx context.Context, wasm []byte) (*Library, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Detail("compile library").
			Cause(err).
			Build()
	}

	if err := checkExports(compiled); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	hosts := make(map[string]bool)
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		hosts[module] = true
		Logger().Debug("library import", zap.String("module", module), zap.String("name", name))
	}
	for module := range hosts {
		if err := e.ensureHost(ctx, module); err != nil {
			_ = compiled.Close(ctx)
			return nil, err
		}
	}

	_, hasJSDel := compiled.ExportedFunctions()[ExportJSDel]
	Logger().Debug("library compiled",
		zap.Int("bytes", len(wasm)),
		zap.Int("exports", len(compiled.ExportedFunctions())),
		zap.Bool("jsdel_array", hasJSDel))

	return &Library{
		engine:   e,
		compiled: compiled,
		hasJSDel: hasJSDel,
	}, nil
}

// Close releases the runtime. All instances must be closed before calling this.
func (e *Engine) Close(ctx context.Context) error {
	err := e.runtime.Close(ctx)
	for _, c := range e.closers {
		_ = c.Close()
	}
	e.closers = nil
	return err
}

// ensureHost instantiates the host module named by an import, once per engine.
// Safe for concurrent calls.
func (e *Engine) ensureHost(ctx context.Context, module string) error {
	e.hostMu.Lock()
	defer e.hostMu.Unlock()

	if e.hostReady[module] || e.runtime.Module(module) != nil {
		e.hostReady[module] = true
		return nil
	}

	var err error
	switch module {
	case wasiModule:
		err = instantiateWASI(ctx, e.runtime)
	case envModule:
		err = instantiateEnv(ctx, e.runtime)
	default:
		return errors.New(errors.PhaseCompile, errors.KindNotFound).
			Path(module).
			Detail("library imports unknown host module").
			Build()
	}
	if err != nil {
		return errors.New(errors.PhaseCompile, errors.KindInvalidData).
			Path(module).
			Detail("instantiate host module").
			Cause(err).
			Build()
	}

	e.hostReady[module] = true
	return nil
}

// syncWriter serializes writes from instances running in parallel.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
