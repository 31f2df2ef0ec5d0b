package engine

import (
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Export names of the library ABI.
const (
	ExportResample = "resampleImageWASM"
	ExportMalloc   = "malloc"
	ExportFree     = "free"
	ExportJSDel    = "jsdel_array"
	ExportMemory   = "memory"
)

// Signature describes an export in WIT primitive types.
type Signature struct {
	Params   []wit.Type
	Results  []wit.Type
	Optional bool
}

// Signatures is the export table a library must satisfy.
var Signatures = map[string]Signature{
	ExportResample: {
		Params:  []wit.Type{wit.U32{}, wit.U32{}, wit.S32{}},
		Results: []wit.Type{wit.U32{}},
	},
	ExportMalloc: {
		Params:  []wit.Type{wit.U32{}},
		Results: []wit.Type{wit.U32{}},
	},
	ExportFree: {
		Params: []wit.Type{wit.U32{}},
	},
	ExportJSDel: {
		Params:   []wit.Type{wit.U32{}},
		Optional: true,
	},
}

// coreTypes flattens primitive WIT types to core value types. Only the
// primitives the ABI uses are accepted.
func coreTypes(types []wit.Type) ([]api.ValueType, bool) {
	out := make([]api.ValueType, 0, len(types))
	for _, t := range types {
		switch t.(type) {
		case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
			out = append(out, api.ValueTypeI32)
		case wit.U64, wit.S64:
			out = append(out, api.ValueTypeI64)
		case wit.F32:
			out = append(out, api.ValueTypeF32)
		case wit.F64:
			out = append(out, api.ValueTypeF64)
		default:
			return nil, false
		}
	}
	return out, true
}

func formatSignature(params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(p))
	}
	b.WriteString(") -> (")
	for i, r := range results {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(r))
	}
	b.WriteByte(')')
	return b.String()
}

func sameTypes(a, b []api.ValueType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// checkExports verifies the compiled library against Signatures and requires
// an exported memory.
func checkExports(compiled wazero.CompiledModule) error {
	defs := compiled.ExportedFunctions()

	var missing []string
	if _, ok := compiled.ExportedMemories()[ExportMemory]; !ok {
		missing = append(missing, ExportMemory)
	}

	names := make([]string, 0, len(Signatures))
	for name := range Signatures {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sig := Signatures[name]
		def, ok := defs[name]
		if !ok {
			if !sig.Optional {
				missing = append(missing, name)
			}
			continue
		}

		params, okP := coreTypes(sig.Params)
		results, okR := coreTypes(sig.Results)
		if !okP || !okR {
			return errors.New(errors.PhaseCompile, errors.KindInvalidInput).
				Path(name).
				Detail("signature uses a non-primitive type").
				Build()
		}
		if !sameTypes(params, def.ParamTypes()) || !sameTypes(results, def.ResultTypes()) {
			return errors.TypeMismatch(name,
				formatSignature(params, results),
				formatSignature(def.ParamTypes(), def.ResultTypes()))
		}
	}

	if len(missing) > 0 {
		return errors.NewMissingExportsError(missing)
	}
	return nil
}
