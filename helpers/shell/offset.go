package shell

import (
	"math"

	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinOffset is the smallest offset magnitude Offset acts on.
const MinOffset = 0.001

// VertexNormals returns the unit normal of every vertex of m, the area
// weighted average of the normals of the faces using it. Vertices not
// referenced by any face get the zero vector.
//
// Normals are accumulated per vertex index: coincident vertices of
// different parts do not share their normals.
func VertexNormals(m *livecad.Mesh) []r3.Vec {
	normals := make([]r3.Vec, len(m.Vertices))
	for i, f := range m.Faces {
		// Cross product magnitude is twice the area so it weighs itself.
		n := m.Triangle(i).AreaNormal()
		for _, vi := range f {
			normals[vi] = r3.Add(normals[vi], n)
		}
	}
	for i, n := range normals {
		if l := r3.Norm(n); l > 0 {
			normals[i] = r3.Scale(1/l, n)
		}
	}
	return normals
}

// Offset grows (d>0) or shrinks (d<0) the surface of m by displacing every
// vertex d along its outward vertex normal. Offsets of magnitude MinOffset
// or less return an unmodified copy.
//
// The result is a uniform shell approximation, not a true offset surface.
// It distorts where curvature is high and opens gaps at unwelded seams
// since coincident vertices of different parts move along different normals.
// Offsetting by d and then by -d does not restore the original surface.
func Offset(m *livecad.Mesh, d float64) *livecad.Mesh {
	if math.Abs(d) <= MinOffset {
		return m.Clone()
	}
	out := FixWinding(m)
	for i, n := range VertexNormals(out) {
		out.Vertices[i] = r3.Add(out.Vertices[i], r3.Scale(d, n))
	}
	return out
}
