package module

import (
	"context"
	"testing"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
)

type echoModule struct {
	Base
	fail bool
	got  Values
}

func (m *echoModule) Name() string { return "echo" }

func (m *echoModule) Description() *Description {
	d := testDescription()
	d.Inputs = []IO{{Type: "image", Name: "Input Image", VarName: "input", Required: true}}
	d.Outputs = ImageToImageOutputs("")
	return d
}

func (m *echoModule) DirectInvokeAlgorithm(_ context.Context, vals Values) bool {
	m.got = vals
	if m.fail {
		return false
	}
	m.Outputs["output"] = m.Inputs["input"]
	return true
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	img := bisobj.NewTestImage([3]int32{2, 2, 2}, [3]float32{1, 1, 1})

	t.Run("success", func(t *testing.T) {
		m := &echoModule{}
		ok, err := Execute(ctx, m, map[string]*bisobj.Image{"input": img}, map[string]string{"scale": "3"})
		if err != nil || !ok {
			t.Fatalf("Execute = %v, %v", ok, err)
		}
		if m.Output("output") != img {
			t.Error("output not set")
		}
		if m.got.Float("scale") != 3 {
			t.Errorf("scale = %v, want 3", m.got.Float("scale"))
		}
	})

	t.Run("failure clears outputs", func(t *testing.T) {
		m := &echoModule{}
		m.Outputs = map[string]*bisobj.Image{"output": img}
		m.fail = true
		ok, err := Execute(ctx, m, map[string]*bisobj.Image{"input": img}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("Execute = true, want false")
		}
		if m.Output("output") != nil {
			t.Error("stale output survived a failed run")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		m := &echoModule{}
		if _, err := Execute(ctx, m, nil, nil); err == nil {
			t.Fatal("expected error for missing required input")
		}
		if m.got != nil {
			t.Error("algorithm ran without its input")
		}
	})

	t.Run("bad parameter", func(t *testing.T) {
		m := &echoModule{}
		if _, err := Execute(ctx, m, map[string]*bisobj.Image{"input": img}, map[string]string{"mode": "7"}); err == nil {
			t.Fatal("expected parameter error")
		}
		if m.got != nil {
			t.Error("algorithm ran with invalid parameters")
		}
	})
}

func TestDescriptionHelpers(t *testing.T) {
	d := testDescription()
	p, ok := d.Param("debug")
	if !ok || p.Type != TypeBoolean || p.Default != false {
		t.Errorf("debug param = %+v, %v", p, ok)
	}
	if _, ok := d.Param("nope"); ok {
		t.Error("Param(nope) found")
	}

	out := ImageToImageOutputs("Resampled")
	if len(out) != 1 || out[0].VarName != "output" || out[0].Description != "Resampled" || out[0].Extension != ".bisobj" {
		t.Errorf("ImageToImageOutputs = %+v", out)
	}
}
