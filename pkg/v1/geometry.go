package copc

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere is a query volume defined by center and radius.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

// IntersectsBox reports whether the sphere and the box overlap, by
// clamping the center into the box and comparing the squared distance.
func (s Sphere) IntersectsBox(b Box) bool {
	closest := r3.Vec{
		X: clamp(s.Center.X, b.Min.X, b.Max.X),
		Y: clamp(s.Center.Y, b.Min.Y, b.Max.Y),
		Z: clamp(s.Center.Z, b.Min.Z, b.Max.Z),
	}
	d := r3.Sub(s.Center, closest)
	return r3.Norm2(d) <= s.Radius*s.Radius
}

// Contains reports whether the point lies inside the sphere.
func (s Sphere) Contains(p r3.Vec) bool {
	d := r3.Sub(s.Center, p)
	return r3.Norm2(d) <= s.Radius*s.Radius
}

// plane is n·p + d >= 0 for points on the inside.
type plane struct {
	n r3.Vec
	d float64
}

func (pl plane) normalize() plane {
	length := r3.Norm(pl.n)
	if length == 0 {
		return pl
	}
	return plane{n: r3.Scale(1/length, pl.n), d: pl.d / length}
}

// Frustum is a camera view volume bounded by six inward-facing planes.
type Frustum struct {
	planes [6]plane
}

// FrustumFromMatrix extracts the six frustum planes from a column-major
// 4x4 view-projection matrix (the Gribb/Hartmann row combinations).
func FrustumFromMatrix(m [16]float64) Frustum {
	row := func(i int) [4]float64 {
		return [4]float64{m[i], m[4+i], m[8+i], m[12+i]}
	}
	r0, r1, r2, r3v := row(0), row(1), row(2), row(3)

	comb := func(a, b [4]float64, sub bool) plane {
		var c [4]float64
		for i := 0; i < 4; i++ {
			if sub {
				c[i] = b[i] - a[i]
			} else {
				c[i] = b[i] + a[i]
			}
		}
		return plane{n: r3.Vec{X: c[0], Y: c[1], Z: c[2]}, d: c[3]}.normalize()
	}

	return Frustum{planes: [6]plane{
		comb(r0, r3v, false), // left:   row3 + row0
		comb(r0, r3v, true),  // right:  row3 - row0
		comb(r1, r3v, false), // bottom: row3 + row1
		comb(r1, r3v, true),  // top:    row3 - row1
		comb(r2, r3v, false), // near:   row3 + row2
		comb(r2, r3v, true),  // far:    row3 - row2
	}}
}

// FrustumFromMatrix32 is FrustumFromMatrix for a float32 matrix, as
// produced by most rendering engines.
func FrustumFromMatrix32(m [16]float32) Frustum {
	var m64 [16]float64
	for i, v := range m {
		m64[i] = float64(v)
	}
	return FrustumFromMatrix(m64)
}

// IntersectsBox reports whether the box is at least partially inside the
// frustum, testing each plane against the box corner farthest along the
// plane normal.
func (f Frustum) IntersectsBox(b Box) bool {
	for _, pl := range f.planes {
		v := r3.Vec{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z}
		if pl.n.X >= 0 {
			v.X = b.Max.X
		}
		if pl.n.Y >= 0 {
			v.Y = b.Max.Y
		}
		if pl.n.Z >= 0 {
			v.Z = b.Max.Z
		}
		if r3.Dot(pl.n, v)+pl.d < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside the frustum.
func (f Frustum) ContainsPoint(p r3.Vec) bool {
	for _, pl := range f.planes {
		if r3.Dot(pl.n, p)+pl.d < 0 {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
