package thread

import (
	"errors"
	"fmt"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/form3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Parameter names declared by HexBolt.
const (
	ParamDiameter   = "diameter_m"
	ParamLength     = "length"
	ParamPitch      = "pitch"
	ParamHeadSize   = "head_size"
	ParamHeadHeight = "head_height"
	ParamResolution = "resolution"
)

// BoltParms defines the parameters for a hex head bolt.
type BoltParms struct {
	Diameter   float64 // thread major diameter
	Length     float64 // threaded length
	Pitch      float64 // thread pitch
	HeadSize   float64 // hex head flat to flat distance
	HeadHeight float64 // hex head thickness
	Resolution int     // angular samples of thread and tip cap
}

// Helix returns the thread surface definition of the bolt shaft.
func (k BoltParms) Helix() Helix {
	return Helix{
		MajorDiameter: k.Diameter,
		Length:        k.Length,
		Pitch:         k.Pitch,
		Resolution:    k.Resolution,
	}
}

// BoltParts are the unassembled sub-meshes of a bolt, each already
// positioned with the shaft tip at z=0.
type BoltParts struct {
	Head   *livecad.Mesh
	Thread *livecad.Mesh
	Cap    *livecad.Mesh
}

// Parts builds the head, thread surface and tip cap of a bolt.
// The head sits on top of the shaft with its base at z=Length. The cap
// closes the open tip of the thread surface between z=0 and z=Pitch/2.
func (k BoltParms) Parts() (BoltParts, error) {
	h := k.Helix()
	if err := h.Validate(); err != nil {
		return BoltParts{}, err
	}
	if k.HeadSize <= 0 || k.HeadHeight <= 0 {
		return BoltParts{}, errors.New("bad hex head dimension")
	}
	shaft, err := h.Mesh()
	if err != nil {
		return BoltParts{}, err
	}
	head, err := form3.HexPrism(form3.HexCircumradius(k.HeadSize), k.HeadHeight)
	if err != nil {
		return BoltParts{}, fmt.Errorf("head: %w", err)
	}
	head = head.Translate(r3.Vec{Z: k.Length + k.HeadHeight/2})

	tip, err := form3.Cylinder(tipScale*h.MinorDiameter()/2, k.Pitch/2, k.Resolution)
	if err != nil {
		return BoltParts{}, fmt.Errorf("tip cap: %w", err)
	}
	tip = tip.Translate(r3.Vec{Z: k.Pitch / 4})
	return BoltParts{Head: head, Thread: shaft, Cap: tip}, nil
}

// Bolt returns a hex head bolt mesh. The underside of the head lies on the
// z=0 plane and the shaft extends down to z=-Length.
func Bolt(k BoltParms) (*livecad.Mesh, error) {
	p, err := k.Parts()
	if err != nil {
		return nil, err
	}
	return p.Assemble(k.Length), nil
}

// Assemble concatenates head, thread and cap in that order and moves the
// result down by length.
func (p BoltParts) Assemble(length float64) *livecad.Mesh {
	return livecad.Concat(p.Head, p.Thread, p.Cap).Translate(r3.Vec{Z: -length})
}

// HexBolt is the hex head bolt recipe.
type HexBolt struct{}

var _ livecad.Generator = HexBolt{} // Compile time check of interface implementation.

// Parameters returns the bolt's parameter declarations. The defaults
// describe an M10x1.5 bolt 40mm long.
func (HexBolt) Parameters() []livecad.Parameter {
	return []livecad.Parameter{
		livecad.Real(ParamDiameter, 10, 3, 30),
		livecad.Real(ParamLength, 40, 10, 150),
		livecad.Real(ParamPitch, 1.5, 0.5, 4),
		livecad.Real(ParamHeadSize, 17, 5, 50),
		livecad.Real(ParamHeadHeight, 7, 2, 20),
		livecad.Integer(ParamResolution, 64, 32, 128),
	}
}

// Generate builds the bolt mesh.
func (HexBolt) Generate(v livecad.Values) (*livecad.Mesh, error) {
	return Bolt(ParmsFromValues(v))
}

// ParmsFromValues maps resolved HexBolt values to BoltParms.
func ParmsFromValues(v livecad.Values) BoltParms {
	return BoltParms{
		Diameter:   v[ParamDiameter],
		Length:     v[ParamLength],
		Pitch:      v[ParamPitch],
		HeadSize:   v[ParamHeadSize],
		HeadHeight: v[ParamHeadHeight],
		Resolution: v.Int(ParamResolution),
	}
}
