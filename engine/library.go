package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Library is a compiled biswasm library. Safe for concurrent use.
type Library struct {
	engine   *Engine
	compiled wazero.CompiledModule
	hasJSDel bool
}

// Instantiate creates an anonymous instance, so any number can run in
// parallel.
func (l *Library) Instantiate(ctx context.Context) (*Instance, error) {
	modConfig := wazero.NewModuleConfig().
		WithStdout(l.engine.stdout).
		WithStderr(l.engine.stderr).
		WithStartFunctions("_initialize").
		WithName("")

	mod, err := l.engine.runtime.InstantiateModule(ctx, l.compiled, modConfig)
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	mem := mod.Memory()
	if mem == nil {
		_ = mod.Close(ctx)
		return nil, errors.NotFound(errors.PhaseInstantiate, "memory", ExportMemory)
	}

	inst := &Instance{
		module: mod,
		memory: &Memory{mem: mem},
		funcs:  make(map[string]api.Function),
	}
	inst.alloc = &allocator{
		malloc: mod.ExportedFunction(ExportMalloc),
		free:   mod.ExportedFunction(ExportFree),
	}
	if l.hasJSDel {
		inst.release = mod.ExportedFunction(ExportJSDel)
	} else {
		inst.release = inst.alloc.free
	}
	return inst, nil
}

// HasJSDel reports whether the library exports jsdel_array.
func (l *Library) HasJSDel() bool {
	return l.hasJSDel
}

// Close releases the compiled library.
func (l *Library) Close(ctx context.Context) error {
	return l.compiled.Close(ctx)
}
