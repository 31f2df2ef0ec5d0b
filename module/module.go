package module

import (
	"context"

	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Module is a processing module.
type Module interface {
	Name() string
	Description() *Description
	// DirectInvokeAlgorithm runs the algorithm on the module's current
	// inputs. It reports success only; failures are logged.
	DirectInvokeAlgorithm(ctx context.Context, vals Values) bool
	// Slots returns the module's input and output objects.
	Slots() *Base
}

// Base holds a module's named input and output objects. Embed it in a
// module to satisfy the Slots method of Module.
type Base struct {
	Inputs  map[string]*bisobj.Image
	Outputs map[string]*bisobj.Image
}

// Slots returns b.
func (b *Base) Slots() *Base {
	return b
}

// Output returns the named output, or nil.
func (b *Base) Output(name string) *bisobj.Image {
	return b.Outputs[name]
}

// Execute parses raw parameter strings against the module description, sets
// the inputs, clears previous outputs and invokes the algorithm.
func Execute(ctx context.Context, m Module, inputs map[string]*bisobj.Image, raw map[string]string) (bool, error) {
	desc := m.Description()
	vals, err := ParseValues(desc, raw)
	if err != nil {
		return false, err
	}

	for _, in := range desc.Inputs {
		if in.Required && inputs[in.VarName] == nil {
			return false, errors.New(errors.PhaseParam, errors.KindInvalidInput).
				Path(in.VarName).
				Detail("required input %q is missing", in.Name).
				Build()
		}
	}

	b := m.Slots()
	b.Inputs = make(map[string]*bisobj.Image, len(inputs))
	for k, v := range inputs {
		b.Inputs[k] = v
	}
	b.Outputs = make(map[string]*bisobj.Image)

	Logger().Debug("invoking module",
		zap.String("module", m.Name()),
		zap.Any("values", map[string]any(vals)))

	return m.DirectInvokeAlgorithm(ctx, vals), nil
}
