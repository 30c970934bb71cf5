package livecad

import (
	"errors"
	"fmt"

	"github.com/soypat/livecad/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a triangle referencing three mesh vertices by index.
// Vertices are ordered counter-clockwise when seen from outside the solid.
type Face [3]int

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Vertices []r3.Vec
	Faces    []Face
}

// NumVertices returns the number of vertices in the mesh.
func (m *Mesh) NumVertices() int { return len(m.Vertices) }

// NumFaces returns the number of triangles in the mesh.
func (m *Mesh) NumFaces() int { return len(m.Faces) }

// Triangle returns the positions of the ith face.
func (m *Mesh) Triangle(i int) Triangle {
	f := m.Faces[i]
	return Triangle{m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]}
}

// Triangles returns the positions of every face in face order.
func (m *Mesh) Triangles() []Triangle {
	t := make([]Triangle, len(m.Faces))
	for i := range m.Faces {
		t[i] = m.Triangle(i)
	}
	return t
}

// Bounds returns the axis aligned bounding box of the mesh vertices.
func (m *Mesh) Bounds() r3.Box {
	if len(m.Vertices) == 0 {
		return r3.Box{}
	}
	verts := d3.Set(m.Vertices)
	return r3.Box{Min: verts.Min(), Max: verts.Max()}
}

// Validate checks that every vertex is finite and every face index
// references an existing vertex.
func (m *Mesh) Validate() error {
	if m == nil {
		return errors.New("nil mesh")
	}
	for i, v := range m.Vertices {
		if !d3.IsFinite(v) {
			return fmt.Errorf("vertex %d is not finite: %v", i, v)
		}
	}
	n := len(m.Vertices)
	for i, f := range m.Faces {
		if f[0] < 0 || f[0] >= n || f[1] < 0 || f[1] >= n || f[2] < 0 || f[2] >= n {
			return fmt.Errorf("face %d index out of range [0, %d): %v", i, n, f)
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]r3.Vec(nil), m.Vertices...),
		Faces:    append([]Face(nil), m.Faces...),
	}
}

// Concat joins meshes in the order given. Vertex lists are appended and
// face indices are shifted by the count of vertices preceding each part.
// Coincident vertices of different parts are not merged.
func Concat(parts ...*Mesh) *Mesh {
	var nv, nf int
	for _, p := range parts {
		nv += len(p.Vertices)
		nf += len(p.Faces)
	}
	out := &Mesh{
		Vertices: make([]r3.Vec, 0, nv),
		Faces:    make([]Face, 0, nf),
	}
	for _, p := range parts {
		offset := len(out.Vertices)
		out.Vertices = append(out.Vertices, p.Vertices...)
		for _, f := range p.Faces {
			out.Faces = append(out.Faces, Face{f[0] + offset, f[1] + offset, f[2] + offset})
		}
	}
	return out
}

// Translate returns a copy of the mesh with every vertex displaced by v.
func (m *Mesh) Translate(v r3.Vec) *Mesh {
	return m.transform(d3.Transform{}.Translate(v))
}

// RotateZ returns a copy of the mesh rotated angle radians about the Z axis.
func (m *Mesh) RotateZ(angle float64) *Mesh {
	return m.transform(d3.Transform{}.RotateZ(angle))
}

// Scale returns a copy of the mesh scaled by factor about origin.
// Mirroring factors reverse the winding so faces keep pointing outward.
func (m *Mesh) Scale(origin, factor r3.Vec) *Mesh {
	return m.transform(d3.Transform{}.Scale(origin, factor))
}

func (m *Mesh) transform(t d3.Transform) *Mesh {
	out := m.Clone()
	for i, v := range out.Vertices {
		out.Vertices[i] = t.Transform(v)
	}
	if t.Flips() {
		out.FlipFaces()
	}
	return out
}

// FlipFaces reverses the winding of every face in place.
func (m *Mesh) FlipFaces() {
	for i, f := range m.Faces {
		m.Faces[i] = Face{f[0], f[2], f[1]}
	}
}

// Triangle is a triangle defined by its three vertex positions.
type Triangle [3]r3.Vec

// Normal returns the unit normal of the triangle following the right hand
// rule over the vertex order. Degenerate triangles return the zero vector.
func (t Triangle) Normal() r3.Vec {
	n := t.AreaNormal()
	l := r3.Norm(n)
	if l == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// AreaNormal returns the triangle normal scaled by twice the triangle's area.
func (t Triangle) AreaNormal() r3.Vec {
	return r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))
}

// Area returns the triangle's area.
func (t Triangle) Area() float64 {
	return r3.Norm(t.AreaNormal()) / 2
}

// Centroid returns the mean of the triangle's vertices.
func (t Triangle) Centroid() r3.Vec {
	return r3.Scale(1./3., r3.Add(r3.Add(t[0], t[1]), t[2]))
}

// Degenerate returns true if two of the triangle's vertices are within tol.
func (t Triangle) Degenerate(tol float64) bool {
	return d3.EqualWithin(t[0], t[1], tol) ||
		d3.EqualWithin(t[1], t[2], tol) ||
		d3.EqualWithin(t[2], t[0], tol)
}
