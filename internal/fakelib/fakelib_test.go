package fakelib

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

func TestLEB128(t *testing.T) {
	tests := []struct {
		name   string
		signed bool
		v      int64
		want   []byte
	}{
		{"u0", false, 0, []byte{0x00}},
		{"u127", false, 127, []byte{0x7f}},
		{"u128", false, 128, []byte{0x80, 0x01}},
		{"u1024", false, 1024, []byte{0x80, 0x08}},
		{"s-1", true, -1, []byte{0x7f}},
		{"s-8", true, -8, []byte{0x78}},
		{"s63", true, 63, []byte{0x3f}},
		{"s64", true, 64, []byte{0xc0, 0x00}},
		{"s65535", true, 65535, []byte{0xff, 0xff, 0x03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			if tt.signed {
				writeS32(&b, int32(tt.v))
			} else {
				writeU32(&b, uint32(tt.v))
			}
			if !bytes.Equal(b.Bytes(), tt.want) {
				t.Errorf("got % x, want % x", b.Bytes(), tt.want)
			}
		})
	}
}

func TestBuild_Compiles(t *testing.T) {
	ctx := context.Background()

	variants := []struct {
		name string
		opts Options
	}{
		{"copy", Options{}},
		{"null", Options{Mode: ModeNull}},
		{"trap", Options{Mode: ModeTrap}},
		{"bad frame", Options{Mode: ModeBadFrame}},
		{"no resample", Options{OmitResample: true}},
		{"no jsdel", Options{OmitJSDel: true}},
		{"wrong signature", Options{WrongSignature: true}},
		{"wasi", Options{WASI: true}},
	}

	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			r := wazero.NewRuntime(ctx)
			defer r.Close(ctx)

			compiled, err := r.CompileModule(ctx, Build(v.opts))
			if err != nil {
				t.Fatalf("CompileModule: %v", err)
			}
			_, hasResample := compiled.ExportedFunctions()["resampleImageWASM"]
			if hasResample == v.opts.OmitResample {
				t.Errorf("resampleImageWASM exported = %v, OmitResample = %v", hasResample, v.opts.OmitResample)
			}
			_, hasJSDel := compiled.ExportedFunctions()["jsdel_array"]
			if hasJSDel == v.opts.OmitJSDel {
				t.Errorf("jsdel_array exported = %v, OmitJSDel = %v", hasJSDel, v.opts.OmitJSDel)
			}
		})
	}
}

func TestMalloc_BumpsAndGrows(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, Build(Options{}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	malloc := mod.ExportedFunction("malloc")

	res, err := malloc.Call(ctx, 10)
	if err != nil {
		t.Fatalf("malloc: %v", err)
	}
	if res[0] != HeapBase {
		t.Errorf("first malloc = %d, want %d", res[0], HeapBase)
	}

	res, err = malloc.Call(ctx, 1)
	if err != nil {
		t.Fatalf("malloc: %v", err)
	}
	if res[0] != HeapBase+16 {
		t.Errorf("second malloc = %d, want %d", res[0], HeapBase+16)
	}

	res, err = malloc.Call(ctx, 3*65536)
	if err != nil {
		t.Fatalf("malloc: %v", err)
	}
	if res[0] == 0 {
		t.Fatal("large malloc returned 0")
	}
	if size := mod.Memory().Size(); size < uint32(res[0])+3*65536 {
		t.Errorf("memory size %d does not cover allocation at %d", size, res[0])
	}
}

func TestResample_CopyRecordsArguments(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, Build(Options{}))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	mem := mod.Memory()

	// frame: magic, type, headerSize=4, dataSize=2, then 6 bytes
	obj := []byte{0x23, 0x4e, 0, 0, 2, 0, 0, 0, 4, 0, 0, 0, 2, 0, 0, 0, 1, 2, 3, 4, 5, 6}
	res, err := mod.ExportedFunction("malloc").Call(ctx, uint64(len(obj)))
	if err != nil {
		t.Fatalf("malloc: %v", err)
	}
	in := uint32(res[0])
	mem.Write(in, obj)

	res, err = mod.ExportedFunction("resampleImageWASM").Call(ctx, uint64(in), 77, 1)
	if err != nil {
		t.Fatalf("resampleImageWASM: %v", err)
	}
	out := uint32(res[0])
	if out == 0 || out == in {
		t.Fatalf("unexpected result pointer %d", out)
	}
	got, ok := mem.Read(out, uint32(len(obj)))
	if !ok || !bytes.Equal(got, obj) {
		t.Errorf("copy = % x, want % x", got, obj)
	}

	if v := mod.ExportedGlobal(GlobalLastConfig).Get(); v != 77 {
		t.Errorf("last_config = %d, want 77", v)
	}
	if v := mod.ExportedGlobal(GlobalLastDebug).Get(); v != 1 {
		t.Errorf("last_debug = %d, want 1", v)
	}
}

func TestResample_WASIDebugOutput(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	var stdout bytes.Buffer
	compiled, err := r.CompileModule(ctx, Build(Options{WASI: true, Mode: ModeNull}))
	if err != nil {
		t.Fatalf("CompileModule: %v", err)
	}
	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithStdout(&stdout))
	if err != nil {
		t.Fatalf("InstantiateModule: %v", err)
	}

	if _, err := mod.ExportedFunction("resampleImageWASM").Call(ctx, 0, 0, 0); err != nil {
		t.Fatalf("call without debug: %v", err)
	}
	if stdout.Len() != 0 {
		t.Errorf("unexpected output without debug: %q", stdout.String())
	}

	if _, err := mod.ExportedFunction("resampleImageWASM").Call(ctx, 0, 0, 1); err != nil {
		t.Fatalf("call with debug: %v", err)
	}
	if stdout.String() != DebugLine {
		t.Errorf("stdout = %q, want %q", stdout.String(), DebugLine)
	}
}
