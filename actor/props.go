package actor

import (
	"errors"
	"fmt"
	"math"
)

// PhysicalProps holds the tunables of a vehicle.
// It is a plain value: every vehicle owns its own copy.
type PhysicalProps struct {
	Mass               float64 // > 0
	MaxVelocity        float64 // distance per tick
	MaxSteerForce      float64 // acceleration limit per tick
	MaxPitchAdjustment float64 // radians per tick
	DesiredSeparation  float64

	// FrictionCoefficient scales a force opposing the velocity; 0 disables friction
	FrictionCoefficient float64

	TrailLength    int
	LifeExpectancy int // in ticks

	WanderRadius        float64
	WanderForwardRatio  float64
	MaxWanderAdjustment float64 // radians per tick
}

// DefaultPhysicalProps returns a fresh set of default properties
func DefaultPhysicalProps() PhysicalProps {
	return PhysicalProps{
		Mass:                10,
		MaxVelocity:         10,
		MaxSteerForce:       10,
		MaxPitchAdjustment:  math.Pi / 36,
		DesiredSeparation:   40,
		FrictionCoefficient: 0,
		TrailLength:         20,
		LifeExpectancy:      10000,
		WanderRadius:        50,
		WanderForwardRatio:  0.9,
		MaxWanderAdjustment: 2 * math.Pi / 10,
	}
}

// ErrInvalidProps is returned by PhysicalProps.Validate
var ErrInvalidProps = errors.New("actor: invalid physical properties")

// Validate checks that the properties can drive a simulation
func (p PhysicalProps) Validate() error {
	switch {
	case p.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidProps, p.Mass)
	case p.MaxVelocity < 0:
		return fmt.Errorf("%w: max velocity must not be negative, got %v", ErrInvalidProps, p.MaxVelocity)
	case p.MaxSteerForce < 0:
		return fmt.Errorf("%w: max steer force must not be negative, got %v", ErrInvalidProps, p.MaxSteerForce)
	case p.MaxPitchAdjustment < 0:
		return fmt.Errorf("%w: max pitch adjustment must not be negative, got %v", ErrInvalidProps, p.MaxPitchAdjustment)
	case p.FrictionCoefficient < 0:
		return fmt.Errorf("%w: friction must not be negative, got %v", ErrInvalidProps, p.FrictionCoefficient)
	case p.TrailLength < 0:
		return fmt.Errorf("%w: trail length must not be negative, got %d", ErrInvalidProps, p.TrailLength)
	case p.LifeExpectancy <= 0:
		return fmt.Errorf("%w: life expectancy must be positive, got %d", ErrInvalidProps, p.LifeExpectancy)
	}
	return nil
}

// SpeedKind tells how a SpeedSpec resolves to a multiplier
type SpeedKind uint8

const (
	// SpeedFixed uses the value carried by the SpeedSpec
	SpeedFixed SpeedKind = iota
	// SpeedMaxVelocity uses the vehicle's MaxVelocity
	SpeedMaxVelocity
)

// SpeedSpec is the multiplier of a directional steering behaviour
type SpeedSpec struct {
	Kind  SpeedKind
	Value float64
}

// MaxVelocity resolves to the vehicle's own MaxVelocity
var MaxVelocity = SpeedSpec{Kind: SpeedMaxVelocity}

// Fixed returns a SpeedSpec resolving to value
func Fixed(value float64) SpeedSpec {
	return SpeedSpec{Kind: SpeedFixed, Value: value}
}

// Resolve returns the multiplier for a vehicle limited to maxVelocity
func (s SpeedSpec) Resolve(maxVelocity float64) float64 {
	if s.Kind == SpeedMaxVelocity {
		return maxVelocity
	}
	return s.Value
}

// Sampler is a uniform random source in [0,1)
type Sampler interface {
	Float64() float64
}

// RandomRange returns a uniform value in [a,b)
func RandomRange(s Sampler, a, b float64) float64 {
	return a + s.Float64()*(b-a)
}
