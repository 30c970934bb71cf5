package thread

import (
	"fmt"
	"math"
	"sort"
)

// ISO is a standardized metric thread with its customary hex head.
// Pitch is usually the number following the diameter
// i.e: for M16x2 the pitch is 2mm
type ISO struct {
	Name string
	// D is the thread nominal diameter [mm].
	D float64
	// P is the thread pitch [mm].
	P float64
	// HexF2F is the hex head flat to flat distance [mm].
	// If zero it is estimated from the diameter.
	HexF2F float64
}

// HeadSize returns the flat to flat distance of the head.
func (iso ISO) HeadSize() float64 {
	if iso.HexF2F > 0 {
		return iso.HexF2F
	}
	return MetricF2F(iso.D / 2)
}

// HexRadius returns the hex head radius.
func (iso ISO) HexRadius() float64 {
	return iso.HeadSize() / (2.0 * math.Cos(30*math.Pi/180))
}

// HexHeight returns the hex head height (empirical).
func (iso ISO) HexHeight() float64 {
	return 2.0 * iso.HexRadius() * (5.0 / 12.0)
}

// Overrides returns HexBolt parameter values describing the thread and head.
func (iso ISO) Overrides() map[string]float64 {
	return map[string]float64{
		ParamDiameter:   iso.D,
		ParamPitch:      iso.P,
		ParamHeadSize:   iso.HeadSize(),
		ParamHeadHeight: iso.HexHeight(),
	}
}

var isoDB = initISOLookup()

func initISOLookup() map[string]ISO {
	m := make(map[string]ISO)
	add := func(name string, diameter, pitch, ftof float64) {
		m[name] = ISO{Name: name, D: diameter, P: pitch, HexF2F: ftof}
	}
	// ISO Coarse
	add("M3x0.5", 3, 0.5, 6)
	add("M4x0.7", 4, 0.7, 7)
	add("M5x0.8", 5, 0.8, 8)
	add("M6x1", 6, 1, 10)
	add("M8x1.25", 8, 1.25, 13)
	add("M10x1.5", 10, 1.5, 17)
	add("M12x1.75", 12, 1.75, 19)
	add("M16x2", 16, 2, 24)
	add("M20x2.5", 20, 2.5, 30)
	add("M24x3", 24, 3, 36)
	// ISO Fine
	add("M4x0.5", 4, 0.5, 7)
	add("M5x0.5", 5, 0.5, 8)
	add("M6x0.75", 6, 0.75, 10)
	add("M8x1", 8, 1, 13)
	add("M10x1.25", 10, 1.25, 17)
	add("M12x1.5", 12, 1.5, 19)
	add("M16x1.5", 16, 1.5, 24)
	add("M20x2", 20, 2, 30)
	add("M24x2", 24, 2, 36)
	return m
}

// LookupISO returns the ISO thread of the given name, i.e. "M10x1.5".
func LookupISO(name string) (ISO, error) {
	if t, ok := isoDB[name]; ok {
		return t, nil
	}
	return ISO{}, fmt.Errorf("thread %q not found", name)
}

// ISOPresets returns every known ISO thread sorted by diameter,
// coarse pitch first.
func ISOPresets() []ISO {
	s := make([]ISO, 0, len(isoDB))
	for _, v := range isoDB {
		s = append(s, v)
	}
	sort.Slice(s, func(i, j int) bool {
		if s[i].D != s[j].D {
			return s[i].D < s[j].D
		}
		return s[i].P > s[j].P
	})
	return s
}

// Metric hex Flat to flat dimension [mm].
var metricF2FTable = []float64{1.75, 2, 3.2, 4, 5, 6, 7, 8, 10, 13, 17, 19, 24, 30, 36, 46, 55, 65, 75, 85, 95}

// MetricF2F gets a reasonable hex flat-to-flat dimension
// for a metric screw of nominal radius.
func MetricF2F(radius float64) float64 {
	var estF2F float64
	switch {
	case radius < 1.2/2:
		estF2F = 3.2 * radius
	case radius < 3.8/2:
		estF2F = 4.5 * radius
	case radius < 4.2/2:
		estF2F = 4. * radius
	default:
		estF2F = 3.5 * radius
	}
	if math.Abs(radius-56/2) < 1 {
		estF2F = 86
	}
	for i := len(metricF2FTable) - 1; i >= 0; i-- {
		v := metricF2FTable[i]
		if estF2F-1e-2 > v {
			return v
		}
	}
	return metricF2FTable[0]
}
