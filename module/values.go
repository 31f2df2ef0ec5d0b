package module

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bioimagesuiteweb/bisresample/errors"
)

// Values holds parsed parameter values keyed by varname. Floats are float64,
// ints are int, booleans are bool.
type Values map[string]any

// Float returns the float value of key, converting ints.
func (v Values) Float(key string) float64 {
	switch x := v[key].(type) {
	case float64:
		return x
	case int:
		return float64(x)
	}
	return 0
}

// Int returns the int value of key.
func (v Values) Int(key string) int {
	switch x := v[key].(type) {
	case int:
		return x
	case float64:
		return int(x)
	}
	return 0
}

// Bool returns the boolean value of key.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// String returns the string value of key.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// ParseBoolean interprets the textual booleans accepted on command lines.
func ParseBoolean(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// ParseValues converts raw strings to typed values. Missing parameters take
// their default; unknown names and values outside RestrictAnswer are errors.
func ParseValues(desc *Description, raw map[string]string) (Values, error) {
	vals := make(Values, len(desc.Params))

	known := make(map[string]bool, len(desc.Params))
	for _, p := range desc.Params {
		known[p.VarName] = true
	}
	var unknown []string
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, errors.New(errors.PhaseParam, errors.KindNotFound).
			Detail("unknown parameter(s): %s", strings.Join(unknown, ", ")).
			Build()
	}

	for _, p := range desc.Params {
		s, ok := raw[p.VarName]
		if !ok {
			v, err := convertDefault(p)
			if err != nil {
				return nil, err
			}
			vals[p.VarName] = v
			continue
		}
		v, err := convert(p, s)
		if err != nil {
			return nil, err
		}
		if !allowed(p, v) {
			return nil, errors.InvalidParam(p.VarName, s,
				fmt.Sprintf("must be one of %v", p.RestrictAnswer))
		}
		vals[p.VarName] = v
	}
	return vals, nil
}

func convert(p Param, s string) (any, error) {
	s = strings.TrimSpace(s)
	switch p.Type {
	case TypeFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errors.InvalidParam(p.VarName, s, "not a number")
		}
		return f, nil
	case TypeInt:
		i, err := strconv.Atoi(s)
		if err != nil {
			// "1.0" is an acceptable int
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil || f != float64(int(f)) {
				return nil, errors.InvalidParam(p.VarName, s, "not an integer")
			}
			i = int(f)
		}
		return i, nil
	case TypeBoolean:
		b, err := ParseBoolean(s)
		if err != nil {
			return nil, errors.InvalidParam(p.VarName, s, err.Error())
		}
		return b, nil
	case TypeString, "":
		return s, nil
	}
	return nil, errors.InvalidParam(p.VarName, s, "unsupported parameter type "+p.Type)
}

// convertDefault normalises a declared default to the parameter's Go type.
// Defaults decoded from YAML or JSON arrive as int, float64, bool or string.
func convertDefault(p Param) (any, error) {
	switch d := p.Default.(type) {
	case nil:
		return convert(p, "")
	case string:
		return convert(p, d)
	case bool:
		if p.Type == TypeBoolean {
			return d, nil
		}
	case int:
		switch p.Type {
		case TypeInt:
			return d, nil
		case TypeFloat:
			return float64(d), nil
		}
	case float64:
		switch p.Type {
		case TypeFloat:
			return d, nil
		case TypeInt:
			return int(d), nil
		}
	}
	return convert(p, fmt.Sprint(p.Default))
}

func allowed(p Param, v any) bool {
	if len(p.RestrictAnswer) == 0 {
		return true
	}
	for _, r := range p.RestrictAnswer {
		rv, err := convert(p, fmt.Sprint(r))
		if err == nil && rv == v {
			return true
		}
	}
	return false
}
