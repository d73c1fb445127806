// Package camera projects world-space geometry onto a 2D viewport.
//
// The view basis is derived from the position, the focus point and an up hint on every
// projection, so moving or retargeting the camera is reflected immediately.
// Screen Y grows downward and the origin is the top-left corner of the viewport.
package camera

import (
	"math"

	"github.com/akmonengine/flock/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Config holds every parameter of a camera
type Config struct {
	Position mgl64.Vec3
	Focus    mgl64.Vec3
	Up       mgl64.Vec3

	FieldOfView float64 // vertical, in degrees
	Near        float64

	Width  float64
	Height float64
}

// DefaultConfig returns a camera looking at the origin from (1000,1000,500) with +Z up
func DefaultConfig(width, height float64) Config {
	return Config{
		Position:    mgl64.Vec3{1000, 1000, 500},
		Focus:       mgl64.Vec3{0, 0, 0},
		Up:          mgl64.Vec3{0, 0, 1},
		FieldOfView: 60,
		Near:        1,
		Width:       width,
		Height:      height,
	}
}

// ScreenSegment is a projected segment in viewport pixels
type ScreenSegment struct {
	Start mgl64.Vec2
	End   mgl64.Vec2
}

// Camera is a perspective projector
type Camera struct {
	position mgl64.Vec3
	focus    mgl64.Vec3
	up       mgl64.Vec3

	fov    float64 // radians
	aspect float64
	near   float64

	width  float64
	height float64
}

// New creates a camera from its configuration
func New(config Config) *Camera {
	c := &Camera{
		position: config.Position,
		focus:    config.Focus,
		up:       config.Up,
		near:     config.Near,
	}
	c.SetFieldOfView(config.FieldOfView)
	c.ResizeViewport(config.Width, config.Height)
	return c
}

// Position returns the eye position
func (c *Camera) Position() mgl64.Vec3 {
	return c.position
}

// Focus returns the point the camera looks at
func (c *Camera) Focus() mgl64.Vec3 {
	return c.focus
}

// Viewport returns the viewport size in pixels
func (c *Camera) Viewport() (width, height float64) {
	return c.width, c.height
}

// Reposition moves the eye
func (c *Camera) Reposition(position mgl64.Vec3) {
	c.position = position
}

// Retarget changes the focus point
func (c *Camera) Retarget(focus mgl64.Vec3) {
	c.focus = focus
}

// SetFieldOfView sets the vertical field of view in degrees
func (c *Camera) SetFieldOfView(degrees float64) {
	c.fov = mgl64.DegToRad(degrees)
}

// ResizeViewport changes the viewport size and the aspect ratio
func (c *Camera) ResizeViewport(width, height float64) {
	c.width = width
	c.height = height
	c.aspect = 0
	if width > 0 && height > 0 {
		c.aspect = width / height
	}
}

// Orbit rotates the eye around the focus point about the up hint
func (c *Camera) Orbit(angle float64) {
	arm := c.position.Sub(c.focus)
	rotated := mgl64.QuatRotate(angle, c.up.Normalize()).Rotate(arm)
	c.position = c.focus.Add(rotated)
}

// basis returns the forward, right and up axes of the view
func (c *Camera) basis() (forward, right, up mgl64.Vec3) {
	forward = c.focus.Sub(c.position).Normalize()
	right = forward.Cross(c.up).Normalize()
	up = right.Cross(forward).Normalize()
	return forward, right, up
}

// Project returns the screen position of a world point.
// ok is false when the point is at or behind the near plane, or when the viewport is empty.
func (c *Camera) Project(point mgl64.Vec3) (screen mgl64.Vec2, ok bool) {
	if c.aspect == 0 {
		return mgl64.Vec2{}, false
	}
	forward, right, up := c.basis()

	relative := point.Sub(c.position)
	camX := relative.Dot(right)
	camY := relative.Dot(up)
	camZ := relative.Dot(forward)

	// NaN depth (degenerate basis) fails this test too
	if !(camZ > c.near) {
		return mgl64.Vec2{}, false
	}

	f := 1 / math.Tan(c.fov/2)
	ndcX := camX * f / (c.aspect * camZ)
	ndcY := camY * f / camZ

	return mgl64.Vec2{
		(ndcX + 1) * c.width / 2,
		(1 - ndcY) * c.height / 2,
	}, true
}

// ProjectSegments projects both ends of every segment.
// A segment with an end that cannot be projected is dropped, not clipped.
func (c *Camera) ProjectSegments(segments []actor.Segment) []ScreenSegment {
	out := make([]ScreenSegment, 0, len(segments))
	for _, s := range segments {
		start, ok := c.Project(s.Start)
		if !ok {
			continue
		}
		end, ok := c.Project(s.End)
		if !ok {
			continue
		}
		out = append(out, ScreenSegment{Start: start, End: end})
	}
	return out
}
