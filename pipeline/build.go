// Package pipeline hosts the mesh kernel: it holds the last good mesh of an
// editing session, exports batches of parts concurrently and regenerates
// parts when their source files change.
package pipeline

import (
	"github.com/soypat/livecad"
	"github.com/soypat/livecad/helpers/matter"
	"github.com/soypat/livecad/helpers/shell"
)

// Post configures the post-processing applied to a generated mesh.
type Post struct {
	// Offset displaces the surface along its vertex normals [mm].
	// Magnitudes of shell.MinOffset or less are ignored.
	Offset float64
	// Weld merges vertices closer than the tolerance [mm]. Zero disables welding.
	Weld float64
	// Material scales the part to compensate fabrication shrinkage.
	Material matter.ViscousMaterial
}

// Build generates a mesh from g with values v and applies post-processing.
// Welding runs before offsetting so seams move as one.
func Build(g livecad.Generator, v livecad.Values, p Post) (*livecad.Mesh, error) {
	m, err := livecad.Run(g, v)
	if err != nil {
		return nil, err
	}
	if p.Weld > 0 {
		m, err = shell.Weld(m, p.Weld)
		if err != nil {
			return nil, &livecad.GenerationError{Values: v.Clone(), Err: err}
		}
	}
	m = shell.Offset(m, p.Offset)
	if p.Material != (matter.ViscousMaterial{}) {
		m = p.Material.Scale(m)
	}
	return m, nil
}
