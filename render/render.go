// Package render turns vehicles and frames into world segments and draws projected
// segments on a canvas. Vehicles carry no drawing code; a renderer composes
// VehicleGlyph with a camera and a Canvas.
package render

import (
	"github.com/akmonengine/flock/actor"
	"github.com/akmonengine/flock/camera"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// GLYPH_HALF_SPAN is the half length of the vehicle cross across its up axis
	GLYPH_HALF_SPAN = 10.0

	// GLYPH_HALF_LENGTH is the half length of the vehicle cross along its side axis
	GLYPH_HALF_LENGTH = 20.0

	DEFAULT_AXIS_LENGTH = 50.0
)

// glyph is the vehicle cross, in the vehicle's local frame
var glyph = [4]mgl64.Vec3{
	{0, GLYPH_HALF_SPAN, 0},
	{0, -GLYPH_HALF_SPAN, 0},
	{GLYPH_HALF_LENGTH, 0, 0},
	{-GLYPH_HALF_LENGTH, 0, 0},
}

// Canvas receives screen-space segments
type Canvas interface {
	Clear()
	DrawSegments(segments []camera.ScreenSegment)
	Show()
}

// VehicleGlyph returns the world segments drawing a vehicle: a cross in its local
// frame followed by its trail, newest segment first.
func VehicleGlyph(v *actor.Vehicle) []actor.Segment {
	points := v.Frame.LocalPointsToWorld(glyph[:])
	segments := []actor.Segment{
		{Start: points[0], End: points[1]},
		{Start: points[2], End: points[3]},
	}

	if t := v.Trail(); t != nil {
		segments = append(segments, t.Segments()...)
	}

	return segments
}

// FrameAxes returns the three axes of a frame drawn from its origin
func FrameAxes(f *actor.Frame, length float64) []actor.Segment {
	axes := f.Axes(length)
	return axes[:]
}

// Scene draws a set of vehicles through a camera
type Scene struct {
	Camera *camera.Camera
	Canvas Canvas
	// ShowAxes also draws the world axes
	ShowAxes bool
}

// Draw clears the canvas, projects every vehicle glyph and presents the result.
// It returns the number of segments that reached the canvas.
func (s Scene) Draw(vehicles []*actor.Vehicle) int {
	s.Canvas.Clear()

	var world []actor.Segment
	if s.ShowAxes {
		world = append(world, FrameAxes(actor.WorldFrame(), DEFAULT_AXIS_LENGTH)...)
	}
	for _, v := range vehicles {
		world = append(world, VehicleGlyph(v)...)
	}

	screen := s.Camera.ProjectSegments(world)
	s.Canvas.DrawSegments(screen)
	s.Canvas.Show()

	return len(screen)
}
