package parser

import (
	"github.com/tudelft3d/mrtools/internal/mathutil"
)

// relativeAreaEpsilon bounds the Newell vector magnitude, relative to the
// magnitude of its summed terms, below which a ring is treated as degenerate.
const relativeAreaEpsilon = 1e-12

// PolygonArea returns the area of a ring of 3D points using Newell's method.
//
// The Newell vector N = Σ Pi × Pi+1 (wrapping around) is normal to the best-fit
// plane of the ring and |N|/2 is the area of the ring projected on that plane.
// This is exact for planar rings of any orientation and well-behaved for
// measured, slightly non-planar faces.
//
// A trailing point equal to the first one (closed-ring convention) is ignored.
// Rings with fewer than 3 points, or whose points are collinear, have area 0.
func PolygonArea(ring []mathutil.Vec3) float64 {
	n := len(ring)
	if n > 1 && ring[0].Equal(ring[n-1]) {
		n--
	}
	if n < 3 {
		return 0
	}

	// Accumulate relative to the first point so real-world coordinates
	// (hundreds of km from the CRS origin) do not swamp the cross products.
	origin := ring[0]
	var normal mathutil.Vec3
	var magnitude float64
	for i := 0; i < n; i++ {
		p := ring[i].Sub(origin)
		q := ring[(i+1)%n].Sub(origin)
		normal = normal.Add(p.Cross(q))
		magnitude += p.Len() * q.Len()
	}

	length := normal.Len()
	if length == 0 || length <= relativeAreaEpsilon*magnitude {
		return 0
	}
	return length / 2
}

// SurfaceArea returns the area of a face given its outer ring and its inner
// rings (holes). Hole areas are subtracted; the result is never negative.
func SurfaceArea(outer []mathutil.Vec3, holes [][]mathutil.Vec3) float64 {
	area := PolygonArea(outer)
	for _, hole := range holes {
		area -= PolygonArea(hole)
	}
	if area < 0 {
		return 0
	}
	return area
}
