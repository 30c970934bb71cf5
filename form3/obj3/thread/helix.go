package thread

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Helical thread surfaces.
// The thread is sampled on a cylindrical grid: rows are axial slices and
// columns are angular steps. At every grid point the radius follows a
// triangle wave of the helix phase, so that crests and roots wind around
// the axis once per pitch. Near the tip (z=0) the whole radius is shrunk by
// up to 20% so the first turns fade in.
//
// The surface is open at both ends, closing it is up to the caller.

const (
	// DepthCoefficient is the ISO metric ratio of thread depth to pitch.
	DepthCoefficient = 0.613
	// SlicesPerPitch is the number of axial samples per pitch length.
	SlicesPerPitch = 12
	// TaperTurns is the length of the tip taper in pitches.
	TaperTurns = 1.5
	// tipScale is the radius scaling applied at the very tip.
	tipScale = 0.8
	// maxSamples bounds the number of grid points of a surface.
	maxSamples = 1 << 26
)

// Helix defines a tapered helical thread surface along +Z starting at z=0.
type Helix struct {
	MajorDiameter float64 // nominal diameter at thread crest [mm]
	Length        float64 // threaded length [mm]
	Pitch         float64 // thread to thread distance [mm]
	Resolution    int     // angular samples per turn
}

// Depth returns the radial distance between crest and root.
func (h Helix) Depth() float64 { return DepthCoefficient * h.Pitch }

// MinorDiameter returns the root diameter of the thread.
func (h Helix) MinorDiameter() float64 { return h.MajorDiameter - 2*h.Depth() }

// Slices returns the number of axial samples.
func (h Helix) Slices() int {
	n := math.Round(h.Length / h.Pitch * SlicesPerPitch)
	if n < 2 {
		return 2
	}
	return int(n)
}

// Phase returns the fractional position in [0,1) along one pitch at
// height z and angle theta.
func (h Helix) Phase(z, theta float64) float64 {
	x := z/h.Pitch - theta/(2*math.Pi)
	p := x - math.Floor(x)
	if p >= 1 {
		// x slightly below an integer rounds up.
		p = 0
	}
	return p
}

// Profile is the thread's triangle wave. It is 0 at the root (phase 0 and 1)
// and 1 at the crest (phase 0.5).
func Profile(phase float64) float64 {
	return 1 - 2*math.Abs(phase-0.5)
}

// TaperMask ramps from 0 at the tip to 1 at TaperTurns pitches and beyond.
func (h Helix) TaperMask(z float64) float64 {
	return d3.Clamp(z/(TaperTurns*h.Pitch), 0, 1)
}

// Taper returns the factor scaling the thread radius at height z.
func (h Helix) Taper(z float64) float64 {
	return math.Min(1, tipScale+(1-tipScale)*h.TaperMask(z))
}

// Radius returns the distance of the surface to the axis at height z
// and angle theta.
func (h Helix) Radius(z, theta float64) float64 {
	base := h.MinorDiameter()/2 + h.Depth()*Profile(h.Phase(z, theta))
	return base * h.Taper(z)
}

// Validate checks the helix describes a non-degenerate surface.
func (h Helix) Validate() error {
	switch {
	case !finite(h.MajorDiameter) || !finite(h.Length) || !finite(h.Pitch):
		return errors.New("non-finite thread dimension")
	case h.Pitch <= 0:
		return errors.New("pitch must be greater than zero")
	case h.Length <= 0:
		return errors.New("length must be greater than zero")
	case h.Resolution < 3:
		return errors.New("resolution must be 3 or more")
	case h.MinorDiameter() <= 0:
		return fmt.Errorf("thread depth %g leaves no core for diameter %g", h.Depth(), h.MajorDiameter)
	case float64(h.Resolution)*h.Length/h.Pitch*SlicesPerPitch > maxSamples:
		return errors.New("too many thread samples")
	}
	return nil
}

// Mesh samples the thread surface. Vertices are stored row-major so that
// vertex row*Resolution+col is the sample at slice row and angular step col.
// Each grid quad is split into two triangles facing away from the axis.
func (h Helix) Mesh() (*livecad.Mesh, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	rows, cols := h.Slices(), h.Resolution
	m := &livecad.Mesh{
		Vertices: make([]r3.Vec, 0, rows*cols),
		Faces:    make([]livecad.Face, 0, 2*(rows-1)*cols),
	}
	dz := h.Length / float64(rows-1)
	for i := 0; i < rows; i++ {
		z := float64(i) * dz
		for j := 0; j < cols; j++ {
			theta := 2 * math.Pi * float64(j) / float64(cols)
			r := h.Radius(z, theta)
			m.Vertices = append(m.Vertices, r3.Vec{
				X: r * math.Cos(theta),
				Y: r * math.Sin(theta),
				Z: z,
			})
		}
	}
	for i := 0; i < rows-1; i++ {
		for j := 0; j < cols; j++ {
			jn := (j + 1) % cols
			c, cn := i*cols+j, i*cols+jn
			n, nn := c+cols, cn+cols
			m.Faces = append(m.Faces, livecad.Face{c, cn, nn}, livecad.Face{c, nn, n})
		}
	}
	return m, nil
}

// ProfileSamples returns the surface radius at every axial slice
// along the generatrix at angle theta.
func (h Helix) ProfileSamples(theta float64) (z, r []float64, err error) {
	if err := h.Validate(); err != nil {
		return nil, nil, err
	}
	rows := h.Slices()
	z = make([]float64, rows)
	r = make([]float64, rows)
	dz := h.Length / float64(rows-1)
	for i := range z {
		z[i] = float64(i) * dz
		r[i] = h.Radius(z[i], theta)
	}
	return z, r, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
