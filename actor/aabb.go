package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// AABBFromPoints returns the smallest box containing every finite point.
// Points with a NaN or infinite coordinate are skipped; when none is left the zero box is returned.
func AABBFromPoints(points []mgl64.Vec3) AABB {
	var box AABB
	found := false
	for _, p := range points {
		if !Finite(p) {
			continue
		}
		if !found {
			box = AABB{Min: p, Max: p}
			found = true
			continue
		}
		box = box.Extend(p)
	}
	return box
}

// Finite reports whether every coordinate of p is neither NaN nor infinite
func Finite(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(p[i]) || math.IsInf(p[i], 0) {
			return false
		}
	}
	return true
}

// Extend returns the box grown to include point
func (a AABB) Extend(point mgl64.Vec3) AABB {
	for i := 0; i < 3; i++ {
		a.Min[i] = math.Min(a.Min[i], point[i])
		a.Max[i] = math.Max(a.Max[i], point[i])
	}
	return a
}

// Center returns the middle of the box
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// LongestSide returns the largest extent among the three axes
func (a AABB) LongestSide() float64 {
	size := a.Max.Sub(a.Min)
	return math.Max(size.X(), math.Max(size.Y(), size.Z()))
}

// BoundingCube returns the cube centred on the box whose side is the longest side
// scaled by (1 + padding), with a half extent of at least minHalfExtent
func (a AABB) BoundingCube(padding, minHalfExtent float64) Cube {
	half := a.LongestSide() * (1 + padding) / 2
	return Cube{
		Center:     a.Center(),
		HalfExtent: math.Max(half, minHalfExtent),
	}
}

// Cube is an axis-aligned cube covering [Center-HalfExtent, Center+HalfExtent) on every axis
type Cube struct {
	Center     mgl64.Vec3
	HalfExtent float64
}

// ContainsPoint checks if a point lies in the half-open cube
func (c Cube) ContainsPoint(point mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if !(point[i] >= c.Center[i]-c.HalfExtent && point[i] < c.Center[i]+c.HalfExtent) {
			return false
		}
	}
	return true
}

// SquaredDistance returns the squared distance from point to the closest point of the cube
func (c Cube) SquaredDistance(point mgl64.Vec3) float64 {
	d := 0.0
	for i := 0; i < 3; i++ {
		lo := c.Center[i] - c.HalfExtent
		hi := c.Center[i] + c.HalfExtent
		if point[i] < lo {
			d += (point[i] - lo) * (point[i] - lo)
		} else if point[i] > hi {
			d += (point[i] - hi) * (point[i] - hi)
		}
	}
	return d
}

// IntersectsSphere checks if the sphere touches the cube
func (c Cube) IntersectsSphere(center mgl64.Vec3, radius float64) bool {
	return c.SquaredDistance(center) <= radius*radius
}

// Octant returns the i-th of the eight equal sub-cubes.
// Bit 0 selects +X, bit 1 selects +Y and bit 2 selects +Z.
func (c Cube) Octant(i int) Cube {
	h := c.HalfExtent / 2
	offset := mgl64.Vec3{-h, -h, -h}
	if i&1 != 0 {
		offset[0] = h
	}
	if i&2 != 0 {
		offset[1] = h
	}
	if i&4 != 0 {
		offset[2] = h
	}
	return Cube{Center: c.Center.Add(offset), HalfExtent: h}
}

// GrowToward returns the cube of twice the size that contains c as one of its octants,
// extending toward point on every axis
func (c Cube) GrowToward(point mgl64.Vec3) Cube {
	center := c.Center
	for i := 0; i < 3; i++ {
		if point[i] >= c.Center[i] {
			center[i] += c.HalfExtent
		} else {
			center[i] -= c.HalfExtent
		}
	}
	return Cube{Center: center, HalfExtent: c.HalfExtent * 2}
}
