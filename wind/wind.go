// Package wind samples a divergence-free force field for vehicles.
//
// The field is the curl of a vector noise F = (N1, N2, N3), where the three channels are
// the same scalar noise read at decorrelated offsets. Partial derivatives are estimated
// with central differences.
package wind

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_NOISE_SCALE = 0.01
	DEFAULT_TIME_SCALE  = 0.01
	// derivativeStep is the central difference step, in noise space
	derivativeStep = 0.001
	// minCurlSquared is the squared curl under which the wind is considered still
	minCurlSquared = 1e-6
)

// Noise3 is a scalar noise field returning values in [0,1]
type Noise3 func(x, y, z float64) float64

// channel offsets decorrelating the three components of the vector noise
var (
	offset2 = mgl64.Vec3{31.416, 47.853, 12.793}
	offset3 = mgl64.Vec3{99.123, 65.432, 77.789}
)

// System is a time-varying curl-noise wind
type System struct {
	Noise      Noise3
	NoiseScale float64
	TimeScale  float64

	tick float64
}

// New creates a wind system over the given noise with default scales
func New(noise Noise3) *System {
	return &System{
		Noise:      noise,
		NoiseScale: DEFAULT_NOISE_SCALE,
		TimeScale:  DEFAULT_TIME_SCALE,
	}
}

// Advance moves the field one tick forward in time
func (s *System) Advance() {
	s.tick++
}

// Tick returns the current time of the field
func (s *System) Tick() float64 {
	return s.tick
}

// ForceAt returns the unit curl direction at position scaled by multiplier,
// or zero where the field is nearly still
func (s *System) ForceAt(position mgl64.Vec3, multiplier float64) mgl64.Vec3 {
	drift := s.tick * s.TimeScale
	p := position.Mul(s.NoiseScale).Add(mgl64.Vec3{drift, drift, drift})

	n1 := func(q mgl64.Vec3) float64 { return s.Noise(q.X(), q.Y(), q.Z()) }
	n2 := func(q mgl64.Vec3) float64 { q = q.Add(offset2); return s.Noise(q.X(), q.Y(), q.Z()) }
	n3 := func(q mgl64.Vec3) float64 { q = q.Add(offset3); return s.Noise(q.X(), q.Y(), q.Z()) }

	dx := mgl64.Vec3{derivativeStep, 0, 0}
	dy := mgl64.Vec3{0, derivativeStep, 0}
	dz := mgl64.Vec3{0, 0, derivativeStep}
	partial := func(n func(mgl64.Vec3) float64, d mgl64.Vec3) float64 {
		return (n(p.Add(d)) - n(p.Sub(d))) / (2 * derivativeStep)
	}

	curl := mgl64.Vec3{
		partial(n3, dy) - partial(n2, dz),
		partial(n1, dz) - partial(n3, dx),
		partial(n2, dx) - partial(n1, dy),
	}

	if curl.LenSqr() < minCurlSquared {
		return mgl64.Vec3{}
	}
	return curl.Normalize().Mul(multiplier)
}
