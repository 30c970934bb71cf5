package livecad_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/soypat/livecad"
)

// funcGen is a generator backed by a function.
type funcGen struct {
	params []livecad.Parameter
	gen    func(livecad.Values) (*livecad.Mesh, error)
}

func (f funcGen) Parameters() []livecad.Parameter                   { return f.params }
func (f funcGen) Generate(v livecad.Values) (*livecad.Mesh, error) { return f.gen(v) }

func TestRun(t *testing.T) {
	g := funcGen{
		params: boltParams(),
		gen: func(v livecad.Values) (*livecad.Mesh, error) {
			v["length"] = -1 // must not leak to caller.
			return tetra(), nil
		},
	}
	v, err := livecad.Resolve(g.Parameters(), nil)
	if err != nil {
		t.Fatal(err)
	}
	m, err := livecad.Run(g, v)
	if err != nil {
		t.Fatal(err)
	}
	if m.NumFaces() != 4 {
		t.Errorf("got %d faces", m.NumFaces())
	}
	if v["length"] != 40 {
		t.Error("generator mutated caller's values")
	}
}

func TestRunFailures(t *testing.T) {
	ok := func(livecad.Values) (*livecad.Mesh, error) { return tetra(), nil }
	for _, test := range []struct {
		name string
		g    livecad.Generator
		v    livecad.Values
		msg  string
	}{
		{
			name: "nil generator",
			msg:  "nil generator",
		},
		{
			name: "missing value",
			g:    funcGen{params: boltParams(), gen: ok},
			v:    livecad.Values{"diameter_m": 10},
			msg:  "missing parameter",
		},
		{
			name: "error",
			g: funcGen{gen: func(livecad.Values) (*livecad.Mesh, error) {
				return nil, errors.New("zero pitch")
			}},
			msg: "zero pitch",
		},
		{
			name: "panic",
			g: funcGen{gen: func(livecad.Values) (*livecad.Mesh, error) {
				var m *livecad.Mesh
				return m.Clone(), nil
			}},
			msg: "panicked",
		},
		{
			name: "empty",
			g: funcGen{gen: func(livecad.Values) (*livecad.Mesh, error) {
				return &livecad.Mesh{}, nil
			}},
			msg: "empty mesh",
		},
		{
			name: "bad index",
			g: funcGen{gen: func(livecad.Values) (*livecad.Mesh, error) {
				m := tetra()
				m.Faces[0][2] = 10
				return m, nil
			}},
			msg: "invalid mesh",
		},
	} {
		m, err := livecad.Run(test.g, test.v)
		if m != nil {
			t.Errorf("%s: expected nil mesh", test.name)
		}
		var gerr *livecad.GenerationError
		if !errors.As(err, &gerr) || !errors.Is(err, livecad.ErrGeneration) {
			t.Errorf("%s: expected GenerationError, got %v", test.name, err)
			continue
		}
		if !strings.Contains(err.Error(), test.msg) {
			t.Errorf("%s: error %q does not mention %q", test.name, err, test.msg)
		}
	}
}
