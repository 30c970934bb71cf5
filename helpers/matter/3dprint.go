// Package matter compensates part dimensions for material behaviour
// during fabrication.
package matter

import (
	"fmt"
	"strings"

	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// PLA (polylactic acid) is the most widely used plastic filament material in 3D printing.
	PLA = ViscousMaterial{Name: "pla", shrink: 0.2e-2, pullShrink: .45} // 0.2% shrinkage
	// PETG is a glycol modified polyester filament.
	PETG = ViscousMaterial{Name: "petg", shrink: 0.4e-2, pullShrink: .35}
	// ABS (acrylonitrile butadiene styrene) shrinks noticeably as it cools.
	ABS = ViscousMaterial{Name: "abs", shrink: 0.7e-2, pullShrink: .3}
)

// ViscousMaterial is a material deposited in a molten state.
type ViscousMaterial struct {
	Name string
	// shrink is the thermal contraction shrinkage of a material once the material
	// cools to room temperature after the heated bed is turned off.
	shrink float64
	// pullShrink takes into account viscoelastic shrinkage.
	pullShrink float64
}

// Lookup returns the material of the given name. The empty name and
// "none" return a zero material which leaves parts untouched.
func Lookup(name string) (ViscousMaterial, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return ViscousMaterial{}, nil
	case PLA.Name:
		return PLA, nil
	case PETG.Name:
		return PETG, nil
	case ABS.Name:
		return ABS, nil
	}
	return ViscousMaterial{}, fmt.Errorf("unknown material %q", name)
}

// Scale returns a copy of m scaled about the origin so the printed
// part contracts to the modelled dimensions.
func (m ViscousMaterial) Scale(mesh *livecad.Mesh) *livecad.Mesh {
	scale := 1 / (1 - m.shrink)
	return mesh.Scale(r3.Vec{}, r3.Vec{X: scale, Y: scale, Z: scale})
}

// InternalDimScale returns the modelled size of an internal dimension,
// such as a hole diameter, that should measure real after printing.
func (m ViscousMaterial) InternalDimScale(real float64) float64 {
	if real <= 0 {
		panic("InternalDimScale only works for non-zero dimensions")
	}
	return real*(m.shrink+1) + m.pullShrink
}
