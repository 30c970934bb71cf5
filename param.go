package livecad

import (
	"fmt"
	"math"
	"sort"
)

// Parameter is a named scalar input to a recipe.
type Parameter struct {
	Name    string
	Default float64
	Min     float64
	Max     float64
	// IsInteger marks a count-like parameter. Its values are rounded to the
	// nearest integer before reaching a generator.
	IsInteger bool
}

// Real declares a real valued parameter.
func Real(name string, def, min, max float64) Parameter {
	return Parameter{Name: name, Default: def, Min: min, Max: max}
}

// Integer declares an integer valued parameter such as a sample count.
func Integer(name string, def, min, max int) Parameter {
	return Parameter{Name: name, Default: float64(def), Min: float64(min), Max: float64(max), IsInteger: true}
}

// Validate checks the parameter's bounds.
func (p Parameter) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: empty parameter name", ErrInvalidParameterSpec)
	case !isFinite(p.Default) || !isFinite(p.Min) || !isFinite(p.Max):
		return fmt.Errorf("%w: %q has non-finite bounds", ErrInvalidParameterSpec, p.Name)
	case p.Min > p.Max:
		return fmt.Errorf("%w: %q min %g > max %g", ErrInvalidParameterSpec, p.Name, p.Min, p.Max)
	case p.Default < p.Min || p.Default > p.Max:
		return fmt.Errorf("%w: %q default %g outside [%g, %g]", ErrInvalidParameterSpec, p.Name, p.Default, p.Min, p.Max)
	}
	return nil
}

// Step returns the granularity a user interface should use for the parameter.
func (p Parameter) Step() float64 {
	if p.IsInteger {
		return 1
	}
	return 0.01
}

// Normalize rounds integer parameter values to the nearest integer.
func (p Parameter) Normalize(v float64) float64 {
	if p.IsInteger {
		return math.Round(v)
	}
	return v
}

// ValidateParameters checks a recipe's parameter declaration.
func ValidateParameters(params []Parameter) error {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate parameter %q", ErrInvalidParameterSpec, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Values is a resolved parameter set, one entry per declared parameter.
type Values map[string]float64

// Clone returns a copy of v.
func (v Values) Clone() Values {
	c := make(Values, len(v))
	for name, val := range v {
		c[name] = val
	}
	return c
}

// Int returns the named value as an int.
func (v Values) Int(name string) int {
	return int(math.Round(v[name]))
}

// Resolve returns the values of params with overrides applied over the
// declared defaults. Integer parameters are rounded. Overrides naming
// undeclared parameters or falling out of bounds are rejected. When several
// overrides are invalid the error names the first unknown name in sorted
// order, else the first offending parameter in declaration order.
func Resolve(params []Parameter, overrides map[string]float64) (Values, error) {
	if err := ValidateParameters(params); err != nil {
		return nil, err
	}
	v := make(Values, len(params))
	for _, p := range params {
		v[p.Name] = p.Normalize(p.Default)
	}
	var unknown []string
	for name := range overrides {
		if _, ok := find(params, name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: unknown parameter %q", ErrParameterValue, unknown[0])
	}
	for _, p := range params {
		val, ok := overrides[p.Name]
		if !ok {
			continue
		}
		if !isFinite(val) || val < p.Min || val > p.Max {
			return nil, fmt.Errorf("%w: %q=%g outside [%g, %g]", ErrParameterValue, p.Name, val, p.Min, p.Max)
		}
		v[p.Name] = p.Normalize(val)
	}
	return v, nil
}

func find(params []Parameter, name string) (Parameter, bool) {
	for _, p := range params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
