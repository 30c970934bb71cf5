package livecad_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetra returns a tetrahedron with outward facing triangles.
func tetra() *livecad.Mesh {
	return &livecad.Mesh{
		Vertices: []r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Faces:    []livecad.Face{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
}

func TestConcat(t *testing.T) {
	a := tetra()
	b := tetra().Translate(r3.Vec{X: 5})
	m := livecad.Concat(a, b)
	if m.NumVertices() != 8 || m.NumFaces() != 8 {
		t.Fatalf("got %d vertices %d faces", m.NumVertices(), m.NumFaces())
	}
	if diff := cmp.Diff(livecad.Face{4, 6, 5}, m.Faces[4]); diff != "" {
		t.Errorf("second part face not shifted (-want +got):\n%s", diff)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	empty := livecad.Concat()
	if empty.NumVertices() != 0 || empty.NumFaces() != 0 {
		t.Error("concat of nothing should be empty")
	}
}

func TestMeshTransformCopies(t *testing.T) {
	m := tetra()
	moved := m.Translate(r3.Vec{Z: -2})
	if m.Vertices[3].Z != 1 {
		t.Fatal("translate modified its receiver")
	}
	if moved.Vertices[3].Z != -1 {
		t.Errorf("translated vertex: got %v", moved.Vertices[3])
	}
	rot := m.RotateZ(math.Pi / 2)
	const tol = 1e-12
	if v := rot.Vertices[1]; math.Abs(v.X) > tol || math.Abs(v.Y-1) > tol {
		t.Errorf("rotated (1,0,0): got %v", v)
	}
	if diff := cmp.Diff(m.Faces, rot.Faces); diff != "" {
		t.Errorf("rigid motion changed winding:\n%s", diff)
	}
}

func TestMeshOutwardNormals(t *testing.T) {
	m := tetra()
	c := r3.Vec{X: 0.25, Y: 0.25, Z: 0.25}
	for i, tri := range m.Triangles() {
		if r3.Dot(tri.Normal(), r3.Sub(tri.Centroid(), c)) <= 0 {
			t.Errorf("face %d points inward", i)
		}
	}
	m.FlipFaces()
	for i, tri := range m.Triangles() {
		if r3.Dot(tri.Normal(), r3.Sub(tri.Centroid(), c)) >= 0 {
			t.Errorf("flipped face %d points outward", i)
		}
	}
}

func TestMeshValidate(t *testing.T) {
	var nilMesh *livecad.Mesh
	if nilMesh.Validate() == nil {
		t.Error("nil mesh validated")
	}
	m := tetra()
	m.Faces = append(m.Faces, livecad.Face{0, 1, 4})
	if m.Validate() == nil {
		t.Error("out of range index validated")
	}
	m = tetra()
	m.Vertices[2].Y = math.Inf(1)
	if m.Validate() == nil {
		t.Error("infinite vertex validated")
	}
}

func TestMeshBounds(t *testing.T) {
	bb := tetra().Translate(r3.Vec{X: -1, Y: 2}).Bounds()
	want := r3.Box{Min: r3.Vec{X: -1, Y: 2}, Max: r3.Vec{Y: 3, Z: 1}}
	if diff := cmp.Diff(want, bb); diff != "" {
		t.Errorf("bounds mismatch (-want +got):\n%s", diff)
	}
}

func TestTriangle(t *testing.T) {
	tri := livecad.Triangle{{}, {X: 2}, {Y: 2}}
	if tri.Area() != 2 {
		t.Errorf("area: got %g", tri.Area())
	}
	if n := tri.Normal(); n != (r3.Vec{Z: 1}) {
		t.Errorf("normal: got %v", n)
	}
	if tri.Degenerate(1e-9) {
		t.Error("triangle is not degenerate")
	}
	deg := livecad.Triangle{{}, {X: 1}, {X: 1}}
	if !deg.Degenerate(1e-9) || deg.Normal() != (r3.Vec{}) {
		t.Error("collapsed triangle should be degenerate with zero normal")
	}
}
