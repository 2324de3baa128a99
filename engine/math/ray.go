package math

// NewRay creates a ray with a normalized direction.
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalized()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Direction.MulScalar(t))
}

// NewExtents3DEmpty returns inverted extents that any Expand call replaces.
func NewExtents3DEmpty() Extents3D {
	return Extents3D{
		Min: Vec3{K_INFINITY, K_INFINITY, K_INFINITY},
		Max: Vec3{-K_INFINITY, -K_INFINITY, -K_INFINITY},
	}
}

// IsEmpty reports whether no point has been added to e.
func (e Extents3D) IsEmpty() bool {
	return e.Min.X > e.Max.X || e.Min.Y > e.Max.Y || e.Min.Z > e.Max.Z
}

// Expand grows e to contain p.
func (e Extents3D) Expand(p Vec3) Extents3D {
	return Extents3D{
		Min: Vec3{Min(e.Min.X, p.X), Min(e.Min.Y, p.Y), Min(e.Min.Z, p.Z)},
		Max: Vec3{Max(e.Max.X, p.X), Max(e.Max.Y, p.Y), Max(e.Max.Z, p.Z)},
	}
}

// Union grows e to contain other.
func (e Extents3D) Union(other Extents3D) Extents3D {
	if other.IsEmpty() {
		return e
	}
	return e.Expand(other.Min).Expand(other.Max)
}

// Size returns width (x), height (y) and depth (z); zero for empty extents.
func (e Extents3D) Size() Vec3 {
	if e.IsEmpty() {
		return NewVec3Zero()
	}
	return e.Max.Sub(e.Min)
}

func (e Extents3D) Center() Vec3 {
	return e.Min.Add(e.Max).MulScalar(0.5)
}

// Transform returns the axis-aligned extents of e's eight corners after m.
func (e Extents3D) Transform(m Mat4) Extents3D {
	if e.IsEmpty() {
		return e
	}
	out := NewExtents3DEmpty()
	for i := 0; i < 8; i++ {
		corner := Vec3{e.Min.X, e.Min.Y, e.Min.Z}
		if i&1 != 0 {
			corner.X = e.Max.X
		}
		if i&2 != 0 {
			corner.Y = e.Max.Y
		}
		if i&4 != 0 {
			corner.Z = e.Max.Z
		}
		out = out.Expand(corner.Transform(m))
	}
	return out
}

// IntersectRay performs the slab test and returns the entry distance. A ray
// starting inside the box reports a distance of 0.
func (e Extents3D) IntersectRay(r Ray) (float32, bool) {
	if e.IsEmpty() {
		return 0, false
	}
	tmin := -K_INFINITY
	tmax := K_INFINITY

	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{e.Min.X, e.Min.Y, e.Min.Z}
	hi := [3]float32{e.Max.X, e.Max.Y, e.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if kabs(dir[axis]) < K_FLOAT_EPSILON {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / dir[axis]
		t1 := (lo[axis] - origin[axis]) * inv
		t2 := (hi[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = Max(tmin, t1)
		tmax = Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	return Max(tmin, 0), true
}

// IntersectTriangle is the Möller–Trumbore test. Both faces are hit, as a
// viewer picking double-sided materials would.
func (r Ray) IntersectTriangle(a, b, c Vec3) (float32, bool) {
	edge1 := b.Sub(a)
	edge2 := c.Sub(a)
	p := r.Direction.Cross(edge2)
	det := edge1.Dot(p)
	if kabs(det) < K_FLOAT_EPSILON {
		return 0, false
	}
	invDet := 1.0 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := r.Direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := edge2.Dot(q) * invDet
	if t < 0 {
		return 0, false
	}
	return t, true
}
