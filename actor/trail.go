package actor

import "github.com/go-gl/mathgl/mgl64"

// Trail keeps the most recent positions of a vehicle, newest first
type Trail struct {
	buf   []mgl64.Vec3
	start int
	count int
}

// NewTrail creates a trail holding at most capacity positions
func NewTrail(capacity int) *Trail {
	return &Trail{buf: make([]mgl64.Vec3, max(capacity, 0))}
}

// Push records a position unless it equals the newest one.
// The oldest position is dropped once the trail is full.
func (t *Trail) Push(p mgl64.Vec3) {
	n := len(t.buf)
	if n == 0 {
		return
	}
	if t.count > 0 && t.buf[t.start] == p {
		return
	}

	t.start = (t.start - 1 + n) % n
	t.buf[t.start] = p
	if t.count < n {
		t.count++
	}
}

// Len returns the number of recorded positions
func (t *Trail) Len() int {
	return t.count
}

// Cap returns the maximum number of positions
func (t *Trail) Cap() int {
	return len(t.buf)
}

// Points returns a copy of the recorded positions, newest first
func (t *Trail) Points() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, t.count)
	for i := range out {
		out[i] = t.buf[(t.start+i)%len(t.buf)]
	}
	return out
}

// Segments returns the polyline joining consecutive positions
func (t *Trail) Segments() []Segment {
	points := t.Points()
	if len(points) < 2 {
		return nil
	}
	out := make([]Segment, len(points)-1)
	for i := range out {
		out[i] = Segment{Start: points[i], End: points[i+1]}
	}
	return out
}
