// Package shell implements post-processing of finished part surfaces:
// orientation repair, vertex normals, normal offsetting and vertex welding.
package shell

import (
	"math"

	"github.com/soypat/livecad"
	"github.com/soypat/livecad/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// quantumScale is the size of a position quantum relative to the largest
// dimension of the mesh.
const quantumScale = 1e-9

// vertKey identifies a vertex position in quantized space so that
// coincident vertices with different indices share a key.
type vertKey [3]int64

type edgeKey [2]vertKey

func undirected(a, b vertKey) edgeKey {
	if less(b, a) {
		a, b = b, a
	}
	return edgeKey{a, b}
}

func less(a, b vertKey) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// quantizer returns the position keys of every vertex of m.
func quantizer(m *livecad.Mesh) []vertKey {
	size := d3.Box(m.Bounds()).Size()
	q := quantumScale * d3.Max(size)
	if q == 0 {
		q = quantumScale
	}
	ri := 1 / q
	keys := make([]vertKey, len(m.Vertices))
	for i, v := range m.Vertices {
		v = r3.Scale(ri, v)
		keys[i] = vertKey{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
	}
	return keys
}

// FixWinding returns a copy of m with its faces oriented consistently.
// Faces are walked breadth first over shared edges and flipped where they
// disagree with the face they were reached from. Edges are matched by
// vertex position, not index, so surfaces with unwelded seams still connect.
// Each connected component is then flipped as a whole if its area
// weighted normals point towards the component's centroid.
//
// This is a best effort repair: non-manifold edges and open surfaces
// are oriented but not otherwise fixed.
func FixWinding(m *livecad.Mesh) *livecad.Mesh {
	out := m.Clone()
	if len(out.Faces) == 0 {
		return out
	}
	keys := quantizer(out)
	edges := make(map[edgeKey][]int, 3*len(out.Faces)/2)
	for i, f := range out.Faces {
		for j := range f {
			a, b := keys[f[j]], keys[f[(j+1)%3]]
			if a == b {
				continue
			}
			e := undirected(a, b)
			edges[e] = append(edges[e], i)
		}
	}
	visited := make([]bool, len(out.Faces))
	var queue, component []int
	for seed := range out.Faces {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue = append(queue[:0], seed)
		component = append(component[:0], seed)
		for len(queue) > 0 {
			fi := queue[0]
			queue = queue[1:]
			f := out.Faces[fi]
			for j := range f {
				a, b := keys[f[j]], keys[f[(j+1)%3]]
				if a == b {
					continue
				}
				for _, ni := range edges[undirected(a, b)] {
					if visited[ni] {
						continue
					}
					visited[ni] = true
					// Consistent neighbours run the shared edge from b to a.
					if runs(out.Faces[ni], keys, a, b) {
						out.Faces[ni] = flip(out.Faces[ni])
					}
					queue = append(queue, ni)
					component = append(component, ni)
				}
			}
		}
		orientOutward(out, component)
	}
	return out
}

// runs reports whether face f has a directed edge from a to b.
func runs(f livecad.Face, keys []vertKey, a, b vertKey) bool {
	for j := range f {
		if keys[f[j]] == a && keys[f[(j+1)%3]] == b {
			return true
		}
	}
	return false
}

func flip(f livecad.Face) livecad.Face { return livecad.Face{f[0], f[2], f[1]} }

// orientOutward flips the faces of a component if its normals
// point inward on average.
func orientOutward(m *livecad.Mesh, component []int) {
	var c r3.Vec
	var area float64
	for _, fi := range component {
		t := m.Triangle(fi)
		a := t.Area()
		c = r3.Add(c, r3.Scale(a, t.Centroid()))
		area += a
	}
	if area == 0 {
		return
	}
	c = r3.Scale(1/area, c)
	var outward float64
	for _, fi := range component {
		t := m.Triangle(fi)
		outward += r3.Dot(t.AreaNormal(), r3.Sub(t.Centroid(), c))
	}
	if outward < 0 {
		for _, fi := range component {
			m.Faces[fi] = flip(m.Faces[fi])
		}
	}
}
