package shell

import (
	"errors"

	"github.com/soypat/livecad"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weld returns a copy of m in which vertices closer than tol are merged
// into the lowest indexed vertex of their cluster. Faces left with
// repeated vertices are dropped. Welding changes vertex and face counts
// and is never applied implicitly.
func Weld(m *livecad.Mesh, tol float64) (*livecad.Mesh, error) {
	if !(tol > 0) {
		return nil, errors.New("weld tolerance must be greater than zero")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	pts := make(weldPoints, len(m.Vertices))
	for i, v := range m.Vertices {
		pts[i] = weldPoint{V: v, idx: i}
	}
	out := &livecad.Mesh{}
	if len(pts) == 0 {
		return out, nil
	}
	// kdtree.New reorders pts, indices are kept in each point.
	tree := kdtree.New(pts, false)
	remap := make([]int, len(m.Vertices))
	for i := range remap {
		remap[i] = -1
	}
	for i, v := range m.Vertices {
		if remap[i] >= 0 {
			continue
		}
		newIdx := len(out.Vertices)
		out.Vertices = append(out.Vertices, v)
		remap[i] = newIdx
		keeper := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keeper, &weldPoint{V: v})
		for _, c := range keeper.Heap {
			if c.Comparable == nil {
				continue // heap sentinel.
			}
			j := c.Comparable.(*weldPoint).idx
			if remap[j] < 0 {
				remap[j] = newIdx
			}
		}
	}
	out.Faces = make([]livecad.Face, 0, len(m.Faces))
	for _, f := range m.Faces {
		g := livecad.Face{remap[f[0]], remap[f[1]], remap[f[2]]}
		if g[0] == g[1] || g[1] == g[2] || g[2] == g[0] {
			continue
		}
		out.Faces = append(out.Faces, g)
	}
	return out, nil
}

type weldPoint struct {
	V   r3.Vec
	idx int
}

func (p *weldPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*weldPoint)
	switch d {
	case 0:
		return p.V.X - q.V.X
	case 1:
		return p.V.Y - q.V.Y
	case 2:
		return p.V.Z - q.V.Z
	}
	panic("unreachable")
}

func (p *weldPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance between points.
func (p *weldPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.V, c.(*weldPoint).V))
}

type weldPoints []weldPoint

// Index returns the ith element of the list of points.
func (p weldPoints) Index(i int) kdtree.Comparable { return &p[i] }

// Len returns the length of the list.
func (p weldPoints) Len() int { return len(p) }

// Pivot partitions the list based on the dimension specified.
func (p weldPoints) Pivot(d kdtree.Dim) int {
	pl := weldPlane{dim: d, points: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (p weldPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

type weldPlane struct {
	dim    kdtree.Dim
	points weldPoints
}

func (p weldPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}
func (p weldPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p weldPlane) Len() int {
	return len(p.points)
}
func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
