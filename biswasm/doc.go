// Package biswasm wraps the exports of the biswasm computation library.
//
// Each wrapper follows the same steps the library's other language bindings
// use: copy the serialized input objects and a NUL-terminated JSON parameter
// string into linear memory, call the export with the debug flag, read the
// returned object back by its frame, and release every buffer.
//
//	lib, err := biswasm.Load(ctx, eng, wasmBytes)
//	out, err := lib.ResampleImage(ctx, img, biswasm.Config{
//	    Spacing:       [3]float64{1, 1, 1},
//	    Interpolation: biswasm.InterpolationLinear,
//	}, false)
//
// Library is safe for concurrent use; every call runs in its own Session.
package biswasm
