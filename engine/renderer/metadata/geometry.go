package metadata

import (
	"github.com/spaghettifunk/configurator/engine/math"
)

/**
 * @brief CPU-side geometry of a mesh part, kept for picking and bounds.
 * Rendering buffers belong to the viewer.
 */
type Geometry struct {
	/** @brief The geometry name. */
	Name string
	/** @brief Vertex positions in local coordinates. */
	Positions []math.Vec3
	/** @brief Triangle list indices. Empty for non-indexed geometry. */
	Indices []uint32
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
}

// NewGeometry builds a geometry and computes its extents from positions.
func NewGeometry(name string, positions []math.Vec3, indices []uint32) *Geometry {
	g := &Geometry{
		Name:      name,
		Positions: positions,
		Indices:   indices,
		Extents:   math.NewExtents3DEmpty(),
	}
	for _, p := range positions {
		g.Extents = g.Extents.Expand(p)
	}
	if !g.Extents.IsEmpty() {
		g.Center = g.Extents.Center()
	}
	return g
}

// TriangleCount returns the number of complete triangles.
func (g *Geometry) TriangleCount() int {
	if g == nil {
		return 0
	}
	if len(g.Indices) > 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// Triangle returns the three local-space corners of triangle i. Indices
// outside the position buffer report false.
func (g *Geometry) Triangle(i int) (math.Vec3, math.Vec3, math.Vec3, bool) {
	var i0, i1, i2 int
	if len(g.Indices) > 0 {
		i0, i1, i2 = int(g.Indices[3*i]), int(g.Indices[3*i+1]), int(g.Indices[3*i+2])
	} else {
		i0, i1, i2 = 3*i, 3*i+1, 3*i+2
	}
	n := len(g.Positions)
	if i0 >= n || i1 >= n || i2 >= n {
		return math.Vec3{}, math.Vec3{}, math.Vec3{}, false
	}
	return g.Positions[i0], g.Positions[i1], g.Positions[i2], true
}
