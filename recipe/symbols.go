package recipe

import (
	"reflect"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3"
	"github.com/soypat/livecad/form3/obj3/thread"
	"github.com/soypat/livecad/helpers/matter"
	"github.com/traefik/yaegi/interp"
	"gonum.org/v1/gonum/spatial/r3"
)

// Import paths recipes may use besides the allowed standard library.
const (
	pkgLivecad = "github.com/soypat/livecad"
	pkgForm3   = "github.com/soypat/livecad/form3"
	pkgThread  = "github.com/soypat/livecad/form3/obj3/thread"
	pkgMatter  = "github.com/soypat/livecad/helpers/matter"
	pkgR3      = "gonum.org/v1/gonum/spatial/r3"
)

// symbols exposes the kernel to interpreted recipes.
var symbols = interp.Exports{
	pkgLivecad + "/livecad": {
		// types
		"Face":            reflect.ValueOf((*livecad.Face)(nil)),
		"GenerationError": reflect.ValueOf((*livecad.GenerationError)(nil)),
		"Generator":       reflect.ValueOf((*livecad.Generator)(nil)),
		"Mesh":            reflect.ValueOf((*livecad.Mesh)(nil)),
		"Parameter":       reflect.ValueOf((*livecad.Parameter)(nil)),
		"Triangle":        reflect.ValueOf((*livecad.Triangle)(nil)),
		"Values":          reflect.ValueOf((*livecad.Values)(nil)),
		// functions
		"Concat":  reflect.ValueOf(livecad.Concat),
		"Integer": reflect.ValueOf(livecad.Integer),
		"Real":    reflect.ValueOf(livecad.Real),
		"Resolve": reflect.ValueOf(livecad.Resolve),
		// variables
		"ErrGeneration":           reflect.ValueOf(&livecad.ErrGeneration).Elem(),
		"ErrInvalidParameterSpec": reflect.ValueOf(&livecad.ErrInvalidParameterSpec).Elem(),
		"ErrParameterValue":       reflect.ValueOf(&livecad.ErrParameterValue).Elem(),
	},
	pkgForm3 + "/form3": {
		"Cylinder":        reflect.ValueOf(form3.Cylinder),
		"HexCircumradius": reflect.ValueOf(form3.HexCircumradius),
		"HexPrism":        reflect.ValueOf(form3.HexPrism),
	},
	pkgThread + "/thread": {
		// types
		"BoltParms": reflect.ValueOf((*thread.BoltParms)(nil)),
		"BoltParts": reflect.ValueOf((*thread.BoltParts)(nil)),
		"Helix":     reflect.ValueOf((*thread.Helix)(nil)),
		"HexBolt":   reflect.ValueOf((*thread.HexBolt)(nil)),
		"ISO":       reflect.ValueOf((*thread.ISO)(nil)),
		// functions
		"Bolt":             reflect.ValueOf(thread.Bolt),
		"LookupISO":        reflect.ValueOf(thread.LookupISO),
		"MetricF2F":        reflect.ValueOf(thread.MetricF2F),
		"ParmsFromValues":  reflect.ValueOf(thread.ParmsFromValues),
		"Profile":          reflect.ValueOf(thread.Profile),
		// constants
		"DepthCoefficient": reflect.ValueOf(float64(thread.DepthCoefficient)),
		"SlicesPerPitch":   reflect.ValueOf(int(thread.SlicesPerPitch)),
		"TaperTurns":       reflect.ValueOf(float64(thread.TaperTurns)),
	},
	pkgMatter + "/matter": {
		"ViscousMaterial": reflect.ValueOf((*matter.ViscousMaterial)(nil)),
		"Lookup":          reflect.ValueOf(matter.Lookup),
		"ABS":             reflect.ValueOf(&matter.ABS).Elem(),
		"PETG":            reflect.ValueOf(&matter.PETG).Elem(),
		"PLA":             reflect.ValueOf(&matter.PLA).Elem(),
	},
	pkgR3 + "/r3": {
		"Box":         reflect.ValueOf((*r3.Box)(nil)),
		"Rotation":    reflect.ValueOf((*r3.Rotation)(nil)),
		"Vec":         reflect.ValueOf((*r3.Vec)(nil)),
		"Add":         reflect.ValueOf(r3.Add),
		"Cross":       reflect.ValueOf(r3.Cross),
		"Dot":         reflect.ValueOf(r3.Dot),
		"NewRotation": reflect.ValueOf(r3.NewRotation),
		"Norm":        reflect.ValueOf(r3.Norm),
		"Scale":       reflect.ValueOf(r3.Scale),
		"Sub":         reflect.ValueOf(r3.Sub),
		"Unit":        reflect.ValueOf(r3.Unit),
	},
}
