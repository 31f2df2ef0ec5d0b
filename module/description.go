package module

// Parameter types.
const (
	TypeFloat   = "float"
	TypeInt     = "int"
	TypeBoolean = "boolean"
	TypeString  = "string"
)

// Description describes a module to command lines and user interfaces.
type Description struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Author      string  `json:"author" yaml:"author"`
	Version     string  `json:"version" yaml:"version"`
	ShortName   string  `json:"shortname,omitempty" yaml:"shortname,omitempty"`
	ButtonName  string  `json:"buttonName,omitempty" yaml:"buttonName,omitempty"`
	Inputs      []IO    `json:"inputs" yaml:"inputs"`
	Outputs     []IO    `json:"outputs" yaml:"outputs"`
	Params      []Param `json:"params" yaml:"params"`
}

// IO is one input or output object slot.
type IO struct {
	Type        string `json:"type" yaml:"type"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	VarName     string `json:"varname" yaml:"varname"`
	ShortName   string `json:"shortname,omitempty" yaml:"shortname,omitempty"`
	Required    bool   `json:"required" yaml:"required"`
	Extension   string `json:"extension,omitempty" yaml:"extension,omitempty"`
}

// Param is one typed parameter. Low and High are presentation hints for
// numeric parameters and are not enforced.
type Param struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description" yaml:"description"`
	Priority       int      `json:"priority" yaml:"priority"`
	Advanced       bool     `json:"advanced" yaml:"advanced"`
	GUI            string   `json:"gui" yaml:"gui"`
	Type           string   `json:"type" yaml:"type"`
	VarName        string   `json:"varname" yaml:"varname"`
	Default        any      `json:"default" yaml:"default"`
	Low            *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High           *float64 `json:"high,omitempty" yaml:"high,omitempty"`
	RestrictAnswer []any    `json:"restrictAnswer,omitempty" yaml:"restrictAnswer,omitempty"`
}

// Param returns the parameter with the given varname.
func (d *Description) Param(varname string) (Param, bool) {
	for _, p := range d.Params {
		if p.VarName == varname {
			return p, true
		}
	}
	return Param{}, false
}

// DebugParam is the debug switch every module carries.
func DebugParam() Param {
	return Param{
		Name:        "Debug",
		Description: "Toggles debug logging",
		Priority:    1000,
		Advanced:    true,
		GUI:         "check",
		Type:        TypeBoolean,
		VarName:     "debug",
		Default:     false,
	}
}

// ImageToImageOutputs is the output list of a module that produces a single
// image.
func ImageToImageOutputs(desc string) []IO {
	if desc == "" {
		desc = "Output image"
	}
	return []IO{{
		Type:        "image",
		Name:        "Output Image",
		Description: desc,
		VarName:     "output",
		ShortName:   "o",
		Required:    true,
		Extension:   ".bisobj",
	}}
}

// Float returns a float64 pointer, for Low and High.
func Float(v float64) *float64 {
	return &v
}
