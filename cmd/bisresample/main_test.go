package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/errors"
	"github.com/bioimagesuiteweb/bisresample/internal/fakelib"
	"github.com/bioimagesuiteweb/bisresample/module"
	"github.com/bioimagesuiteweb/bisresample/resample"
)

// resetFlags restores every flag to its default so commands can be executed
// more than once in a test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDescribe(t *testing.T) {
	t.Setenv("BISRESAMPLE_LOGLEVEL", "error")

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			out, err := execute(t, "describe", "--format", format)
			if err != nil {
				t.Fatalf("describe: %v", err)
			}
			var got module.Description
			if format == "json" {
				err = json.Unmarshal([]byte(out), &got)
			} else {
				err = yaml.Unmarshal([]byte(out), &got)
			}
			if err != nil {
				t.Fatalf("decode %s: %v\n%s", format, err, out)
			}
			if got.Name != "Resample Image" || len(got.Params) != 6 {
				t.Errorf("unexpected description: %+v", got)
			}
		})
	}

	if _, err := execute(t, "describe", "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRun_RequiresLibrary(t *testing.T) {
	t.Setenv("BISRESAMPLE_LOGLEVEL", "error")
	t.Setenv("BISRESAMPLE_LIBRARY", "")

	if _, err := execute(t, "batch", "--outdir", t.TempDir(), "missing.bisobj"); err == nil {
		t.Fatal("expected error without a library")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestFormModel(t *testing.T) {
	desc := resample.NewDescription()

	t.Run("prefilled", func(t *testing.T) {
		m := newFormModel(desc, map[string]string{"xsp": "1.25"})
		got := m.values()
		want := map[string]string{
			"xsp":             "1.25",
			"ysp":             "2",
			"zsp":             "2",
			"interpolation":   "1",
			"backgroundvalue": "0",
			"debug":           "false",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("values (-want +got):\n%s", diff)
		}
	})

	t.Run("edit and submit", func(t *testing.T) {
		m := newFormModel(desc, map[string]string{"xsp": ""})
		m.Update(key("5"))
		for range len(desc.Params) - 1 {
			m.Update(key("enter"))
		}
		m.Update(key("enter"))
		if m.state != stateDone {
			t.Fatalf("state = %v, want done (err %v)", m.state, m.err)
		}
		if got := m.values()["xsp"]; got != "5" {
			t.Errorf("xsp = %q, want 5", got)
		}
	})

	t.Run("invalid value blocks submit", func(t *testing.T) {
		m := newFormModel(desc, map[string]string{"interpolation": "2"})
		for range len(desc.Params) {
			m.Update(key("enter"))
		}
		if m.state != stateEdit || m.err == nil {
			t.Errorf("state = %v, err = %v; want edit with error", m.state, m.err)
		}
		if !bytes.Contains([]byte(m.View()), []byte("Error:")) {
			t.Error("view does not show the error")
		}
	})

	t.Run("cancel", func(t *testing.T) {
		m := newFormModel(desc, nil)
		m.Update(key("tab"))
		if m.focusIdx != 1 {
			t.Errorf("focus = %d, want 1", m.focusIdx)
		}
		m.Update(key("esc"))
		if m.state != stateCancelled {
			t.Errorf("state = %v, want cancelled", m.state)
		}
	})
}

func TestFlagValues(t *testing.T) {
	conf.Defaults = map[string]string{"xsp": "1", "backgroundvalue": "-5"}
	t.Cleanup(func() { conf.Defaults = nil })

	resetFlags(rootCmd)
	if err := runCmd.ParseFlags([]string{"--ysp", "0.75", "--interpolation", "3", "--debug"}); err != nil {
		t.Fatal(err)
	}
	got := flagValues(runCmd.Flags())
	want := map[string]string{
		"xsp":             "1",
		"ysp":             "0.75",
		"interpolation":   "3",
		"backgroundvalue": "-5",
		"debug":           "true",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestRun(t *testing.T) {
	t.Setenv("BISRESAMPLE_LOGLEVEL", "error")

	img := bisobj.NewTestImage([3]int32{4, 3, 2}, [3]float32{1, 1.5, 2})

	tests := []struct {
		name     string
		mode     fakelib.Mode
		extra    []string
		wantOut  bool
		checkErr func(t *testing.T, err error)
	}{
		{
			name:    "copy",
			mode:    fakelib.ModeCopy,
			extra:   []string{"--xsp", "1", "--debug"},
			wantOut: true,
			checkErr: func(t *testing.T, err error) {
				if err != nil {
					t.Fatalf("run: %v", err)
				}
			},
		},
		{
			name: "library failure",
			mode: fakelib.ModeNull,
			checkErr: func(t *testing.T, err error) {
				if !stderrors.Is(err, errAlgorithmFailed) {
					t.Fatalf("err = %v, want %v", err, errAlgorithmFailed)
				}
			},
		},
		{
			name:  "restricted interpolation",
			mode:  fakelib.ModeTrap,
			extra: []string{"--interpolation", "2"},
			checkErr: func(t *testing.T, err error) {
				var e *errors.Error
				if !stderrors.As(err, &e) || e.Phase != errors.PhaseParam {
					t.Fatalf("err = %v, want a parameter error", err)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			lib := filepath.Join(dir, "libbiswasm.wasm")
			if err := os.WriteFile(lib, fakelib.Build(fakelib.Options{Mode: tc.mode}), 0o644); err != nil {
				t.Fatal(err)
			}
			in := filepath.Join(dir, "in.bisobj")
			if err := os.WriteFile(in, img.Bytes(), 0o644); err != nil {
				t.Fatal(err)
			}
			out := filepath.Join(dir, "out.bisobj")

			args := append([]string{"run", "--library", lib, "--input", in, "--output", out}, tc.extra...)
			_, err := execute(t, args...)
			tc.checkErr(t, err)

			got, readErr := os.ReadFile(out)
			if !tc.wantOut {
				if !os.IsNotExist(readErr) {
					t.Errorf("output exists after failure (read err %v)", readErr)
				}
				return
			}
			if readErr != nil {
				t.Fatal(readErr)
			}
			if !bytes.Equal(got, img.Bytes()) {
				t.Error("output differs from the library result")
			}
		})
	}
}
