package engine

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/bioimagesuiteweb/bisresample/errors"
	"github.com/bioimagesuiteweb/bisresample/internal/fakelib"
)

func TestNewEngine(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		cfg  *Config
		name string
	}{
		{nil, "nil config"},
		{&Config{}, "default config"},
		{&Config{MemoryLimitPages: 256}, "16MB limit"},
		{&Config{MemoryLimitPages: 1024}, "64MB limit"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eng, err := NewEngine(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("NewEngine failed: %v", err)
			}
			defer eng.Close(ctx)

			if eng.runtime == nil {
				t.Error("engine runtime should not be nil")
			}
			if eng.stdout == nil || eng.stderr == nil {
				t.Error("guest output writers should default to the logger")
			}
		})
	}
}

func TestNewEngine_RejectsHugeLimit(t *testing.T) {
	_, err := NewEngine(context.Background(), &Config{MemoryLimitPages: 70000})
	if err == nil {
		t.Fatal("expected error for limit above 65536 pages")
	}
}

func TestCompile_ABI(t *testing.T) {
	ctx := context.Background()
	eng, err := NewEngine(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	t.Run("valid", func(t *testing.T) {
		lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{}))
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if !lib.HasJSDel() {
			t.Error("HasJSDel = false, want true")
		}
	})

	t.Run("jsdel optional", func(t *testing.T) {
		lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{OmitJSDel: true}))
		if err != nil {
			t.Fatalf("Compile: %v", err)
		}
		if lib.HasJSDel() {
			t.Error("HasJSDel = true, want false")
		}
	})

	t.Run("missing resample", func(t *testing.T) {
		_, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{OmitResample: true}))
		var missing *errors.MissingExportsError
		if !stderrors.As(err, &missing) {
			t.Fatalf("error = %v, want MissingExportsError", err)
		}
		if len(missing.Exports) != 1 || missing.Exports[0] != ExportResample {
			t.Errorf("Exports = %v, want [%s]", missing.Exports, ExportResample)
		}
	})

	t.Run("wrong signature", func(t *testing.T) {
		_, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{WrongSignature: true}))
		var e *errors.Error
		if !stderrors.As(err, &e) {
			t.Fatalf("error = %v, want *errors.Error", err)
		}
		if e.Kind != errors.KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", e.Kind, errors.KindTypeMismatch)
		}
		if e.Expected != "(i32, i32, i32) -> (i32)" || e.Actual != "(i32) -> (i32)" {
			t.Errorf("Expected=%q Actual=%q", e.Expected, e.Actual)
		}
	})

	t.Run("not wasm", func(t *testing.T) {
		_, err := eng.Compile(ctx, []byte("not a wasm binary"))
		if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompile, Kind: errors.KindInvalidData}) {
			t.Errorf("error = %v, want compile/invalid_data", err)
		}
	})
}

func TestInstance_CallAndMemory(t *testing.T) {
	ctx := context.Background()
	eng, err := NewEngine(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{}))
	if err != nil {
		t.Fatal(err)
	}

	inst, err := lib.Instantiate(ctx)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	defer inst.Close(ctx)

	ptr, err := inst.Allocator().Alloc(ctx, 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if ptr != fakelib.HeapBase {
		t.Errorf("ptr = %d, want %d", ptr, fakelib.HeapBase)
	}

	mem := inst.Memory()
	if err := mem.Write(ptr, []byte("abc\x00")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	s, err := mem.ReadCString(ptr, 64)
	if err != nil || s != "abc" {
		t.Errorf("ReadCString = %q, %v", s, err)
	}
	if err := mem.WriteU32(ptr+4, 0xdeadbeef); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if v, err := mem.ReadU32(ptr + 4); err != nil || v != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x, %v", v, err)
	}

	if _, err := mem.Read(mem.Size()-2, 4); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseUnmarshal, Kind: errors.KindOutOfBounds}) {
		t.Errorf("out of bounds read error = %v", err)
	}
	if err := mem.Write(mem.Size(), []byte{1}); err == nil {
		t.Error("expected out of bounds write error")
	}

	inst.Allocator().Free(ctx, ptr)
	inst.Release(ctx, ptr)

	if _, err := inst.Call(ctx, "no_such_export"); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseInvoke, Kind: errors.KindNotFound}) {
		t.Errorf("missing export error = %v", err)
	}
}

func TestInstance_Trap(t *testing.T) {
	ctx := context.Background()
	eng, err := NewEngine(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{Mode: fakelib.ModeTrap}))
	if err != nil {
		t.Fatal(err)
	}
	inst, err := lib.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Close(ctx)

	_, err = inst.Call(ctx, ExportResample, 0, 0, 0)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindTrap {
		t.Fatalf("error = %v, want trap", err)
	}
}

func TestInstance_CloseTwice(t *testing.T) {
	ctx := context.Background()
	eng, err := NewEngine(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	inst, err := lib.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := inst.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := inst.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := inst.Call(ctx, ExportResample); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseInvoke, Kind: errors.KindNotInitialized}) {
		t.Errorf("call after close error = %v", err)
	}
}

func TestParallelInstances(t *testing.T) {
	ctx := context.Background()
	eng, err := NewEngine(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{}))
	if err != nil {
		t.Fatal(err)
	}

	a, err := lib.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(ctx)
	b, err := lib.Instantiate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close(ctx)

	pa, _ := a.Allocator().Alloc(ctx, 32)
	pb, _ := b.Allocator().Alloc(ctx, 32)
	if pa != pb {
		t.Errorf("instances should have independent heaps: %d vs %d", pa, pb)
	}
}

func TestWASIOutput(t *testing.T) {
	ctx := context.Background()
	var stdout bytes.Buffer
	eng, err := NewEngine(ctx, &Config{Stdout: &stdout})
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close(ctx)

	lib, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{WASI: true, Mode: fakelib.ModeNull}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	inst, err := lib.Instantiate(ctx)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	defer inst.Close(ctx)

	res, err := inst.Call(ctx, ExportResample, 0, 0, 1)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res[0] != 0 {
		t.Errorf("result = %d, want 0", res[0])
	}
	if stdout.String() != fakelib.DebugLine {
		t.Errorf("stdout = %q, want %q", stdout.String(), fakelib.DebugLine)
	}

	// second library on the same engine reuses the host module
	if _, err := eng.Compile(ctx, fakelib.Build(fakelib.Options{WASI: true})); err != nil {
		t.Fatalf("second Compile: %v", err)
	}
}
