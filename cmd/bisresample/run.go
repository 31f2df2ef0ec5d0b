package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/bioimagesuiteweb/bisresample/batch"
	"github.com/bioimagesuiteweb/bisresample/bisobj"
	"github.com/bioimagesuiteweb/bisresample/module"
	"github.com/bioimagesuiteweb/bisresample/resample"
)

var errAlgorithmFailed = errors.New("resampleImage failed")

var runOpts struct {
	input       string
	output      string
	xsp         float64
	ysp         float64
	zsp         float64
	interp      int
	background  float64
	debug       bool
	interactive bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resample one image",
	Example: `  bisresample run -l libbiswasm.wasm --input brain.bisobj --output out.bisobj --xsp 1 --ysp 1 --zsp 1
  bisresample run -l libbiswasm.wasm --input brain.bisobj --output out.bisobj -i`,
	RunE: runResample,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runOpts.input, "input", "", "Input image (.bisobj)")
	f.StringVar(&runOpts.output, "output", "", "Output image (.bisobj)")
	f.Float64Var(&runOpts.xsp, resample.ParamXSpacing, 2.0, "Desired voxel spacing in X direction")
	f.Float64Var(&runOpts.ysp, resample.ParamYSpacing, 2.0, "Desired voxel spacing in Y direction")
	f.Float64Var(&runOpts.zsp, resample.ParamZSpacing, 2.0, "Desired voxel spacing in Z direction")
	f.IntVar(&runOpts.interp, resample.ParamInterpolation, 1, "Interpolation: 0 nearest, 1 linear, 3 cubic")
	f.Float64Var(&runOpts.background, resample.ParamBackgroundValue, 0.0, "Value for background voxels")
	f.BoolVar(&runOpts.debug, resample.ParamDebug, false, "Toggle library debug output")
	f.BoolVarP(&runOpts.interactive, "interactive", "i", false, "Edit parameters in a form before running")
	runCmd.MarkFlagRequired("input")
	runCmd.MarkFlagRequired("output")
}

// flagValues collects the parameters given on the command line.
func flagValues(f *pflag.FlagSet) map[string]string {
	vals := baseValues()
	set := func(name, v string) {
		if f.Changed(name) {
			vals[name] = v
		}
	}
	set(resample.ParamXSpacing, strconv.FormatFloat(runOpts.xsp, 'g', -1, 64))
	set(resample.ParamYSpacing, strconv.FormatFloat(runOpts.ysp, 'g', -1, 64))
	set(resample.ParamZSpacing, strconv.FormatFloat(runOpts.zsp, 'g', -1, 64))
	set(resample.ParamInterpolation, strconv.Itoa(runOpts.interp))
	set(resample.ParamBackgroundValue, strconv.FormatFloat(runOpts.background, 'g', -1, 64))
	set(resample.ParamDebug, strconv.FormatBool(runOpts.debug))
	return vals
}

func runResample(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vals := flagValues(cmd.Flags())
	desc := resample.NewDescription()

	if runOpts.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			logger.Warn("stdin is not a terminal, skipping the parameter form")
		} else {
			edited, ok, err := runForm(desc, vals)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("cancelled")
			}
			vals = edited
		}
	}

	if _, err := module.ParseValues(desc, vals); err != nil {
		return err
	}

	data, err := os.ReadFile(runOpts.input)
	if err != nil {
		return err
	}
	img, err := bisobj.ParseImage(data)
	if err != nil {
		return fmt.Errorf("%s: %w", runOpts.input, err)
	}

	lib, closeLib, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer closeLib()

	m := resample.New(lib)
	ok, err := module.Execute(ctx, m, map[string]*bisobj.Image{"input": img}, vals)
	if err != nil {
		return err
	}
	if !ok {
		return errAlgorithmFailed
	}

	out := m.Outputs["output"]
	if err := batch.WriteFile(runOpts.output, out.Bytes()); err != nil {
		return err
	}
	logger.Info("resampled",
		zap.String("input", runOpts.input),
		zap.Stringer("from", img.Summary()),
		zap.String("output", runOpts.output),
		zap.Stringer("to", out.Summary()))
	return nil
}
