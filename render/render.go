// Package render writes part meshes to STL files and rasterizes
// offscreen previews of them.
package render

import (
	"io"

	"github.com/soypat/livecad"
)

// Renderer streams the triangles of a model.
type Renderer interface {
	// ReadTriangles fills t with the next triangles of the model. It returns
	// io.EOF once the model is exhausted, possibly along with the last triangles.
	ReadTriangles(t []livecad.Triangle) (int, error)
}

// NewMeshRenderer returns a Renderer that reads the faces of m in order.
func NewMeshRenderer(m *livecad.Mesh) Renderer {
	return &meshRenderer{m: m}
}

type meshRenderer struct {
	m    *livecad.Mesh
	next int
}

func (r *meshRenderer) ReadTriangles(t []livecad.Triangle) (n int, err error) {
	for n < len(t) && r.next < len(r.m.Faces) {
		t[n] = r.m.Triangle(r.next)
		n++
		r.next++
	}
	if r.next == len(r.m.Faces) {
		err = io.EOF
	}
	return n, err
}
