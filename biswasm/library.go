package biswasm

import (
	"context"

	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/engine"
)

// Library is a compiled biswasm library.
type Library struct {
	lib *engine.Library
}

// Load compiles wasm on eng and checks its exports.
func Load(ctx context.Context, eng *engine.Engine, wasm []byte) (*Library, error) {
	lib, err := eng.Compile(ctx, wasm)
	if err != nil {
		return nil, err
	}
	return &Library{lib: lib}, nil
}

// NewSession instantiates the library for one or more calls from a single
// goroutine.
func (l *Library) NewSession(ctx context.Context) (*Session, error) {
	inst, err := l.lib.Instantiate(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{inst: inst}, nil
}

// ResampleImage runs resampleImageWASM in a fresh session.
func (l *Library) ResampleImage(ctx context.Context, img *bisobj.Image, cfg Config, debug bool) (*bisobj.Image, error) {
	s, err := l.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			Logger().Debug("close session", zap.Error(err))
		}
	}()
	return s.ResampleImage(ctx, img, cfg, debug)
}

// Close releases the compiled library.
func (l *Library) Close(ctx context.Context) error {
	return l.lib.Close(ctx)
}
