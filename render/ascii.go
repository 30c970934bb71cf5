package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/hschendel/stl"
	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

// WriteASCIISTL writes the faces of m to w as an ASCII STL solid with
// the given name.
func WriteASCIISTL(w io.Writer, name string, m *livecad.Mesh) error {
	if m == nil || len(m.Faces) == 0 {
		return errors.New("empty mesh")
	}
	solid := toSolid(name, m)
	solid.IsAscii = true
	return solid.WriteAll(w)
}

func toSolid(name string, m *livecad.Mesh) *stl.Solid {
	solid := &stl.Solid{
		Name:      name,
		Triangles: make([]stl.Triangle, len(m.Faces)),
	}
	for i := range m.Faces {
		tri := m.Triangle(i)
		solid.Triangles[i] = stl.Triangle{
			Normal:   stl.Vec3(arrayFromR3(tri.Normal())),
			Vertices: [3]stl.Vec3{stl.Vec3(arrayFromR3(tri[0])), stl.Vec3(arrayFromR3(tri[1])), stl.Vec3(arrayFromR3(tri[2]))},
		}
	}
	return solid
}

// ReadSTLFile reads an STL file in either binary or ASCII encoding.
// Triangles do not share vertices in the returned mesh.
func ReadSTLFile(path string) (*livecad.Mesh, error) {
	solid, err := stl.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", livecad.ErrIO, err)
	}
	m := &livecad.Mesh{
		Vertices: make([]r3.Vec, 0, 3*len(solid.Triangles)),
		Faces:    make([]livecad.Face, 0, len(solid.Triangles)),
	}
	for _, t := range solid.Triangles {
		n := len(m.Vertices)
		for _, v := range t.Vertices {
			m.Vertices = append(m.Vertices, r3FromArray(v))
		}
		m.Faces = append(m.Faces, livecad.Face{n, n + 1, n + 2})
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", livecad.ErrIO, path, err)
	}
	return m, nil
}
