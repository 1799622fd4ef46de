// Package geom provides the 2D primitives the simulation is built on:
// vectors, circles, rectangles, line segments, and the two intersection
// predicates the physics core needs. All arithmetic is float32 so that a
// simulation step produces identical bits on every host.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec2 is the vector type used throughout the simulation. It is a flat
// [2]float32, so values containing it remain plain old data.
type Vec2 = mgl32.Vec2

// Scale returns v scaled by s.
func Scale(v Vec2, s float32) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// AddScaled returns v + u*s.
func AddScaled(v, u Vec2, s float32) Vec2 {
	return Vec2{v[0] + u[0]*s, v[1] + u[1]*s}
}

// SquareLength returns the squared length of v.
func SquareLength(v Vec2) float32 {
	return v[0]*v[0] + v[1]*v[1]
}

// Length returns the length of v.
func Length(v Vec2) float32 {
	return math32.Sqrt(SquareLength(v))
}

// Unit returns v normalized. The zero vector normalizes to the zero vector.
func Unit(v Vec2) Vec2 {
	l := Length(v)
	if l == 0 {
		return Vec2{}
	}
	return Scale(v, 1/l)
}

// UnitFromAngle returns the unit vector pointing along the given angle.
func UnitFromAngle(radians float32) Vec2 {
	return Vec2{math32.Cos(radians), math32.Sin(radians)}
}

// AngleOf returns the angle of v in radians.
func AngleOf(v Vec2) float32 {
	return math32.Atan2(v[1], v[0])
}

// Reflect mirrors v around the plane described by the unit normal n.
func Reflect(v, n Vec2) Vec2 {
	d := 2 * v.Dot(n)
	return Vec2{v[0] - d*n[0], v[1] - d*n[1]}
}

// NormalizeAngle wraps an angle into the range [-π, π].
func NormalizeAngle(angle float32) float32 {
	const twoPi = 2 * math32.Pi
	angle = math32.Mod(angle, twoPi)
	if angle < 0 {
		angle += twoPi
	}
	if angle > math32.Pi {
		angle -= twoPi
	}
	return angle
}

// SignedAngleDiff returns the minimal signed rotation that carries `from`
// onto `to`, in the range [-π, π].
func SignedAngleDiff(to, from float32) float32 {
	return NormalizeAngle(to - from)
}

// Circle is a disc described by its center and radius.
type Circle struct {
	Center Vec2
	Radius float32
}

// Overlap reports whether the two circles intersect.
func (c Circle) Overlap(other Circle) bool {
	r := c.Radius + other.Radius
	return SquareLength(other.Center.Sub(c.Center)) < r*r
}

// Rect is an axis-aligned rectangle anchored at its lower-left corner.
type Rect struct {
	Pos  Vec2
	Size Vec2
}

// LineSegment is the segment between A and B.
type LineSegment struct {
	A Vec2
	B Vec2
}

// Collision describes a circle intersection. Depth is how far the circle
// penetrates; Normal points from the surface toward the circle center.
// A Depth of zero or less means no intersection.
type Collision struct {
	Depth  float32
	Normal Vec2
}

// SegmentCircleIntersect tests a circle against a line segment.
func SegmentCircleIntersect(seg LineSegment, c Circle) Collision {
	ab := seg.B.Sub(seg.A)
	abLenSq := SquareLength(ab)

	t := float32(0)
	if abLenSq > 0 {
		t = c.Center.Sub(seg.A).Dot(ab) / abLenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	closest := AddScaled(seg.A, ab, t)

	delta := c.Center.Sub(closest)
	dist := Length(delta)
	if dist >= c.Radius {
		return Collision{}
	}
	if dist == 0 {
		// Center exactly on the segment. Push out along the segment's
		// left-hand normal.
		return Collision{Depth: c.Radius, Normal: Unit(Vec2{-ab[1], ab[0]})}
	}
	return Collision{Depth: c.Radius - dist, Normal: Scale(delta, 1/dist)}
}

// RectCircleIntersect tests a circle against a rectangle.
func RectCircleIntersect(r Rect, c Circle) Collision {
	closest := Vec2{
		clamp(c.Center[0], r.Pos[0], r.Pos[0]+r.Size[0]),
		clamp(c.Center[1], r.Pos[1], r.Pos[1]+r.Size[1]),
	}

	delta := c.Center.Sub(closest)
	dist := Length(delta)
	if dist > 0 {
		if dist >= c.Radius {
			return Collision{}
		}
		return Collision{Depth: c.Radius - dist, Normal: Scale(delta, 1/dist)}
	}

	// Center inside the rectangle: depth grows with the distance to the
	// nearest face, and the normal points out through that face.
	left := c.Center[0] - r.Pos[0]
	right := r.Pos[0] + r.Size[0] - c.Center[0]
	bottom := c.Center[1] - r.Pos[1]
	top := r.Pos[1] + r.Size[1] - c.Center[1]

	minDist := left
	normal := Vec2{-1, 0}
	if right < minDist {
		minDist = right
		normal = Vec2{1, 0}
	}
	if bottom < minDist {
		minDist = bottom
		normal = Vec2{0, -1}
	}
	if top < minDist {
		minDist = top
		normal = Vec2{0, 1}
	}
	return Collision{Depth: c.Radius + minDist, Normal: normal}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
