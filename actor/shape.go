package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// MinCircleSegments is the smallest segment count a circle can be rendered with
	MinCircleSegments = 8
	// DefaultCircleSegments is the segment count of a new circle
	DefaultCircleSegments = 16
)

// ErrTooFewSegments is returned when a circle is given less than MinCircleSegments segments
var ErrTooFewSegments = errors.New("actor: a circle needs at least 8 segments")

// Segment is a straight line between two world points
type Segment struct {
	Start mgl64.Vec3
	End   mgl64.Vec3
}

// Len returns the length of the segment
func (s Segment) Len() float64 {
	return s.End.Sub(s.Start).Len()
}

// Circle is a flat circle in 3D space, drawn as a closed polyline
type Circle struct {
	Center mgl64.Vec3
	Normal mgl64.Vec3
	Radius float64

	segments int
}

// NewCircle creates a circle rendered with DefaultCircleSegments segments
func NewCircle(center mgl64.Vec3, radius float64, normal mgl64.Vec3) *Circle {
	return &Circle{
		Center:   center,
		Normal:   normal,
		Radius:   radius,
		segments: DefaultCircleSegments,
	}
}

// SegmentCount returns the number of segments of the polyline
func (c *Circle) SegmentCount() int {
	return c.segments
}

// SetSegments changes the number of segments of the polyline
func (c *Circle) SetSegments(n int) error {
	if n < MinCircleSegments {
		return fmt.Errorf("%w: got %d", ErrTooFewSegments, n)
	}
	c.segments = n
	return nil
}

// Frame returns the local frame of the circle: origin at the center, z along the normal
func (c *Circle) Frame() *Frame {
	return NewFrameFromNormal(c.Center, c.Normal)
}

// Points returns the vertices of the polyline in world coordinates
func (c *Circle) Points() []mgl64.Vec3 {
	local := make([]mgl64.Vec3, c.segments)
	step := 2 * math.Pi / float64(c.segments)
	for i := range local {
		angle := step * float64(i)
		local[i] = mgl64.Vec3{c.Radius * math.Cos(angle), c.Radius * math.Sin(angle), 0}
	}

	return c.Frame().LocalPointsToWorld(local)
}

// Segments returns the closed polyline approximating the circle
func (c *Circle) Segments() []Segment {
	points := c.Points()
	segments := make([]Segment, len(points))
	for i, p := range points {
		segments[i] = Segment{Start: p, End: points[(i+1)%len(points)]}
	}
	return segments
}
