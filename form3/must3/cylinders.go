package must3

import (
	"math"

	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cylinder returns a closed cylinder mesh centered on the origin with its axis
// along Z. The circular cross section is approximated by a regular polygon of
// the given number of sections, the first corner placed on the +X axis.
//
// Vertex layout: bottom center, top center, bottom ring, top ring.
// The mesh has 2*sections+2 vertices and 4*sections faces.
func Cylinder(radius, height float64, sections int) *livecad.Mesh {
	switch {
	case math.IsNaN(radius) || math.IsInf(radius, 0) || math.IsNaN(height) || math.IsInf(height, 0):
		panic("non-finite cylinder dimension")
	case radius <= 0:
		panic("radius <= 0")
	case height <= 0:
		panic("height <= 0")
	case sections < 3:
		panic("sections < 3")
	}
	const (
		bottomCenter = 0
		topCenter    = 1
		firstRing    = 2
	)
	h := height / 2
	m := &livecad.Mesh{
		Vertices: make([]r3.Vec, 0, 2*sections+2),
		Faces:    make([]livecad.Face, 0, 4*sections),
	}
	m.Vertices = append(m.Vertices, r3.Vec{Z: -h}, r3.Vec{Z: h})
	for _, z := range [2]float64{-h, h} {
		for k := 0; k < sections; k++ {
			theta := 2 * math.Pi * float64(k) / float64(sections)
			m.Vertices = append(m.Vertices, r3.Vec{
				X: radius * math.Cos(theta),
				Y: radius * math.Sin(theta),
				Z: z,
			})
		}
	}
	for k := 0; k < sections; k++ {
		kn := (k + 1) % sections
		b, bn := firstRing+k, firstRing+kn
		t, tn := b+sections, bn+sections
		m.Faces = append(m.Faces,
			livecad.Face{bottomCenter, bn, b}, // faces -Z
			livecad.Face{topCenter, t, tn},    // faces +Z
			livecad.Face{b, bn, tn},
			livecad.Face{b, tn, t},
		)
	}
	return m
}

// HexPrism returns a hexagonal right prism centered on the origin.
// circumradius is the center to corner distance. The prism is rotated
// 30 degrees about Z so that its flat faces align with the coordinate axes.
func HexPrism(circumradius, height float64) *livecad.Mesh {
	return Cylinder(circumradius, height, 6).RotateZ(math.Pi / 6)
}
