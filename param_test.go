package livecad_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/livecad"
)

func boltParams() []livecad.Parameter {
	return []livecad.Parameter{
		livecad.Real("diameter_m", 10, 3, 30),
		livecad.Real("length", 40, 10, 150),
		livecad.Integer("resolution", 64, 32, 128),
	}
}

func TestValidateParameters(t *testing.T) {
	for _, test := range []struct {
		name   string
		params []livecad.Parameter
		ok     bool
	}{
		{"valid", boltParams(), true},
		{"empty", nil, true},
		{"min above max", []livecad.Parameter{livecad.Real("a", 1, 2, 0)}, false},
		{"default below min", []livecad.Parameter{livecad.Real("a", -1, 0, 2)}, false},
		{"default above max", []livecad.Parameter{livecad.Integer("n", 10, 0, 5)}, false},
		{"nameless", []livecad.Parameter{livecad.Real("", 1, 0, 2)}, false},
		{"nan bound", []livecad.Parameter{livecad.Real("a", 1, math.NaN(), 2)}, false},
		{"duplicate", []livecad.Parameter{livecad.Real("a", 1, 0, 2), livecad.Real("a", 1, 0, 2)}, false},
		{"degenerate range", []livecad.Parameter{livecad.Real("a", 1, 1, 1)}, true},
	} {
		err := livecad.ValidateParameters(test.params)
		if test.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
		} else if !test.ok && !errors.Is(err, livecad.ErrInvalidParameterSpec) {
			t.Errorf("%s: expected ErrInvalidParameterSpec, got %v", test.name, err)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	v, err := livecad.Resolve(boltParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	want := livecad.Values{"diameter_m": 10, "length": 40, "resolution": 64}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("resolved defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOverrides(t *testing.T) {
	v, err := livecad.Resolve(boltParams(), map[string]float64{
		"length":     25.5,
		"resolution": 47.6,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := livecad.Values{"diameter_m": 10, "length": 25.5, "resolution": 48}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Errorf("resolved overrides mismatch (-want +got):\n%s", diff)
	}
	if v.Int("resolution") != 48 {
		t.Errorf("Int: got %d", v.Int("resolution"))
	}
	for name, bad := range map[string]map[string]float64{
		"unknown":   {"width": 3},
		"below min": {"length": 9.99},
		"above max": {"resolution": 129},
		"nan":       {"diameter_m": math.NaN()},
	} {
		_, err := livecad.Resolve(boltParams(), bad)
		if !errors.Is(err, livecad.ErrParameterValue) {
			t.Errorf("%s: expected ErrParameterValue, got %v", name, err)
		}
	}
}

func TestResolveErrorIsStable(t *testing.T) {
	for name, test := range map[string]struct {
		overrides map[string]float64
		want      string
	}{
		"out of bounds": {
			overrides: map[string]float64{"resolution": 1000, "length": 1, "diameter_m": 99},
			want:      `"diameter_m"=99`,
		},
		"unknown": {
			overrides: map[string]float64{"width": 3, "depth": 2, "length": 1},
			want:      `unknown parameter "depth"`,
		},
	} {
		// Map iteration order varies between calls.
		for i := 0; i < 50; i++ {
			_, err := livecad.Resolve(boltParams(), test.overrides)
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Fatalf("%s: got %v, want error containing %s", name, err, test.want)
			}
		}
	}
}

func TestParameterStep(t *testing.T) {
	p := boltParams()
	if p[0].Step() != 0.01 || p[2].Step() != 1 {
		t.Errorf("steps: got %g and %g", p[0].Step(), p[2].Step())
	}
	if !p[2].IsInteger || p[0].IsInteger {
		t.Error("integer flag should follow the declaring constructor")
	}
	if got := p[2].Normalize(63.5); got != 64 {
		t.Errorf("normalize 63.5: got %g", got)
	}
	if got := p[0].Normalize(63.5); got != 63.5 {
		t.Errorf("real parameters should not be rounded: got %g", got)
	}
}

func TestValuesCloneString(t *testing.T) {
	v := livecad.Values{"b": 2, "a": 1.5}
	c := v.Clone()
	c["a"] = 3
	if v["a"] != 1.5 {
		t.Error("clone aliases original")
	}
	if got := v.String(); got != "{a=1.5, b=2}" {
		t.Errorf("String: got %q", got)
	}
}
