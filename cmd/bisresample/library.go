package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bioimagesuiteweb/bisresample/biswasm"
	"github.com/bioimagesuiteweb/bisresample/engine"
)

// openLibrary compiles the configured library. The returned func closes the
// engine and everything compiled on it.
func openLibrary(ctx context.Context) (*biswasm.Library, func(), error) {
	if conf.Library == "" {
		return nil, nil, fmt.Errorf("no library: use --library or set BISRESAMPLE_LIBRARY")
	}
	wasm, err := os.ReadFile(conf.Library)
	if err != nil {
		return nil, nil, fmt.Errorf("read library: %w", err)
	}

	eng, err := engine.NewEngine(ctx, &engine.Config{MemoryLimitPages: conf.MemoryLimitPages})
	if err != nil {
		return nil, nil, err
	}
	lib, err := biswasm.Load(ctx, eng, wasm)
	if err != nil {
		eng.Close(ctx)
		return nil, nil, fmt.Errorf("load %s: %w", conf.Library, err)
	}
	return lib, func() { eng.Close(context.Background()) }, nil
}

// baseValues returns the configured parameter overrides, copied.
func baseValues() map[string]string {
	vals := make(map[string]string, len(conf.Defaults))
	for k, v := range conf.Defaults {
		vals[k] = v
	}
	return vals
}
