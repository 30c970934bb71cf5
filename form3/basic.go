package form3

import (
	"fmt"
	"math"
	"runtime/debug"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3/must3"
)

type shapeErr struct {
	panicObj interface{}
	stack    string
}

func (s *shapeErr) Error() string {
	return fmt.Sprintf("%s", s.panicObj)
}

// Cylinder returns a closed cylinder mesh of the given radius and height
// centered on the origin, its axis along Z. sections is the number of sides
// of the polygon approximating the circular cross section.
func Cylinder(radius, height float64, sections int) (m *livecad.Mesh, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.Cylinder(radius, height, sections), err
}

// HexPrism returns a hexagonal prism centered on the origin with flats
// aligned to the X and Y axes.
func HexPrism(circumradius, height float64) (m *livecad.Mesh, err error) {
	defer func() {
		if a := recover(); a != nil {
			err = &shapeErr{
				panicObj: a,
				stack:    string(debug.Stack()),
			}
		}
	}()
	return must3.HexPrism(circumradius, height), err
}

// HexCircumradius returns the center to corner distance of a regular
// hexagon with the given distance between flats.
func HexCircumradius(flatToFlat float64) float64 {
	return flatToFlat / math.Sqrt(3)
}
