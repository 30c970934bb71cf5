package matter

import (
	"math"
	"testing"

	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestScale(t *testing.T) {
	m := &livecad.Mesh{
		Vertices: []r3.Vec{{}, {X: 10}, {Y: 10}, {Z: 10}},
		Faces:    []livecad.Face{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}},
	}
	got := PLA.Scale(m)
	want := 10 / (1 - 0.2e-2)
	if math.Abs(got.Vertices[1].X-want) > 1e-12 {
		t.Errorf("scaled vertex: got %g, want %g", got.Vertices[1].X, want)
	}
	if m.Vertices[1].X != 10 {
		t.Error("scale modified its input")
	}
	none, err := Lookup("none")
	if err != nil {
		t.Fatal(err)
	}
	if got := none.Scale(m); got.Vertices[3] != m.Vertices[3] {
		t.Errorf("zero material changed mesh: %v", got.Vertices[3])
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"PLA", "petg", "abs"} {
		if _, err := Lookup(name); err != nil {
			t.Error(err)
		}
	}
	if _, err := Lookup("wood"); err == nil {
		t.Error("expected unknown material error")
	}
	if got := PLA.InternalDimScale(10); math.Abs(got-(10.02+.45)) > 1e-12 {
		t.Errorf("internal dimension: got %g", got)
	}
}
