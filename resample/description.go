package resample

import (
	"github.com/bioimagesuiteweb/bisresample/module"
)

// Parameter varnames.
const (
	ParamXSpacing        = "xsp"
	ParamYSpacing        = "ysp"
	ParamZSpacing        = "zsp"
	ParamInterpolation   = "interpolation"
	ParamBackgroundValue = "backgroundvalue"
	ParamDebug           = "debug"
)

func spacingParam(axis, varname string, priority int) module.Param {
	return module.Param{
		Name:        axis + " Spacing",
		Description: "Desired voxel spacing in " + axis + " direction",
		Priority:    priority,
		Advanced:    false,
		GUI:         "slider",
		Type:        module.TypeFloat,
		VarName:     varname,
		Default:     2.0,
		Low:         module.Float(0.01),
		High:        module.Float(1000),
	}
}

// NewDescription returns the description of the resampleImage module.
func NewDescription() *module.Description {
	return &module.Description{
		Name:        "Resample Image",
		Description: "This algorithm performs image resampling to a new voxel size",
		Author:      "BioImage Suite Web Team",
		Version:     "1.0",
		ShortName:   "rsp",
		ButtonName:  "Resample",
		Inputs: []module.IO{{
			Type:        "image",
			Name:        "Input Image",
			Description: "The image to be resampled",
			VarName:     "input",
			ShortName:   "i",
			Required:    true,
		}},
		Outputs: module.ImageToImageOutputs("The resampled image"),
		Params: []module.Param{
			spacingParam("X", ParamXSpacing, 1),
			spacingParam("Y", ParamYSpacing, 2),
			spacingParam("Z", ParamZSpacing, 3),
			{
				Name:           "Interpolation",
				Description:    "Which type of interpolation to use (3 = cubic, 1 = linear, 0 = nearest-neighbor)",
				Priority:       4,
				Advanced:       false,
				GUI:            "dropdown",
				Type:           module.TypeInt,
				VarName:        ParamInterpolation,
				Default:        1,
				RestrictAnswer: []any{0, 1, 3},
			},
			{
				Name:        "Background Value",
				Description: "The value to use for background voxels",
				Priority:    5,
				Advanced:    true,
				GUI:         "slider",
				Type:        module.TypeFloat,
				VarName:     ParamBackgroundValue,
				Default:     0.0,
			},
			module.DebugParam(),
		},
	}
}
