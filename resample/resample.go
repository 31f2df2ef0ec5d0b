package resample

import (
	"context"

	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/biswasm"
	"github.com/bioimagesuiteweb/bisresample/errors"
	"github.com/bioimagesuiteweb/bisresample/module"
)

// Library is the part of the computation library this module calls.
// *biswasm.Library satisfies it.
type Library interface {
	ResampleImage(ctx context.Context, img *bisobj.Image, cfg biswasm.Config, debug bool) (*bisobj.Image, error)
}

// Module is the resampleImage module.
type Module struct {
	module.Base
	lib  Library
	desc *module.Description
}

var _ module.Module = (*Module)(nil)

// New returns a resampleImage module bound to lib.
func New(lib Library) *Module {
	return &Module{
		lib:  lib,
		desc: NewDescription(),
	}
}

// Name returns "resampleImage".
func (m *Module) Name() string {
	return "resampleImage"
}

// Description returns the module description.
func (m *Module) Description() *module.Description {
	return m.desc
}

// DirectInvokeAlgorithm resamples Inputs["input"]. On success the result is
// stored in Outputs["output"]. Every failure is logged and reported as false.
func (m *Module) DirectInvokeAlgorithm(ctx context.Context, vals module.Values) bool {
	if m.Outputs == nil {
		m.Outputs = make(map[string]*bisobj.Image)
	}
	delete(m.Outputs, "output")

	cfg := biswasm.Config{
		Spacing: [3]float64{
			vals.Float(ParamXSpacing),
			vals.Float(ParamYSpacing),
			vals.Float(ParamZSpacing),
		},
		Interpolation:   vals.Int(ParamInterpolation),
		BackgroundValue: vals.Float(ParamBackgroundValue),
	}

	out, err := m.invoke(ctx, cfg, vals.Bool(ParamDebug))
	if err != nil {
		Logger().Error("---- Failed to invoke algorithm",
			zap.String("module", m.Name()),
			zap.Error(err))
		return false
	}
	m.Outputs["output"] = out
	return true
}

func (m *Module) invoke(ctx context.Context, cfg biswasm.Config, debug bool) (out *bisobj.Image, err error) {
	// A panic inside the call counts as a failure like any other.
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseInvoke, errors.KindTrap).
				Detail("library call panicked: %v", r).
				Build()
		}
	}()
	return m.lib.ResampleImage(ctx, m.Inputs["input"], cfg, debug)
}
