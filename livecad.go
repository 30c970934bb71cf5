// Package livecad generates triangle meshes of parametric parts.
//
// A part is described by a recipe, a Generator, that declares its
// parameters and maps a resolved parameter set to a Mesh. Swapping the
// recipe is the only way to build a different part; the rest of the
// pipeline (offsetting, export, preview) works on any Mesh.
package livecad

import (
	"errors"
	"fmt"
)

// Generator is the contract every part recipe satisfies.
type Generator interface {
	// Parameters returns the recipe's parameter declarations
	// in display order.
	Parameters() []Parameter
	// Generate builds a mesh from fully resolved values. Values holds an
	// entry for every declared parameter and integer parameters are
	// already rounded.
	Generate(v Values) (*Mesh, error)
}

// Run calls g.Generate and checks its output. Failures, including panics
// raised by the recipe, are returned as a *GenerationError. Run never
// returns a partially built mesh.
func Run(g Generator, v Values) (m *Mesh, err error) {
	if g == nil {
		return nil, generationErr(v, "nil generator")
	}
	for _, p := range g.Parameters() {
		val, ok := v[p.Name]
		if !ok {
			return nil, generationErr(v, "missing parameter %q", p.Name)
		}
		if !isFinite(val) {
			return nil, generationErr(v, "parameter %q is not finite", p.Name)
		}
	}
	defer func() {
		if a := recover(); a != nil {
			m = nil
			err = generationErr(v, "recipe panicked: %v", a)
		}
	}()
	m, err = g.Generate(v.Clone())
	if err != nil {
		var gerr *GenerationError
		if errors.As(err, &gerr) {
			return nil, gerr
		}
		return nil, &GenerationError{Values: v.Clone(), Err: err}
	}
	if m == nil {
		return nil, generationErr(v, "recipe returned nil mesh")
	}
	if len(m.Faces) == 0 {
		return nil, generationErr(v, "recipe returned empty mesh")
	}
	if err := m.Validate(); err != nil {
		return nil, &GenerationError{Values: v.Clone(), Err: fmt.Errorf("invalid mesh: %w", err)}
	}
	return m, nil
}
