package actor

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type constantSampler float64

func (s constantSampler) Float64() float64 { return float64(s) }

// ========== PROPS TESTS ==========
func TestPhysicalPropsValidate(t *testing.T) {
	if err := DefaultPhysicalProps().Validate(); err != nil {
		t.Fatalf("default props invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(p *PhysicalProps)
	}{
		{"zero mass", func(p *PhysicalProps) { p.Mass = 0 }},
		{"negative velocity", func(p *PhysicalProps) { p.MaxVelocity = -1 }},
		{"negative steer", func(p *PhysicalProps) { p.MaxSteerForce = -1 }},
		{"negative pitch", func(p *PhysicalProps) { p.MaxPitchAdjustment = -0.1 }},
		{"negative friction", func(p *PhysicalProps) { p.FrictionCoefficient = -1 }},
		{"negative trail", func(p *PhysicalProps) { p.TrailLength = -1 }},
		{"zero life", func(p *PhysicalProps) { p.LifeExpectancy = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPhysicalProps()
			tt.modify(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidProps) {
				t.Errorf("Validate() = %v, want ErrInvalidProps", err)
			}
		})
	}
}

func TestDefaultPhysicalPropsAreIndependent(t *testing.T) {
	a := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	b := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())

	a.Props.MaxVelocity = 99

	if b.Props.MaxVelocity == 99 {
		t.Error("vehicles share their physical properties")
	}
}

func TestSpeedSpecResolve(t *testing.T) {
	if got := MaxVelocity.Resolve(7); got != 7 {
		t.Errorf("MaxVelocity.Resolve(7) = %v, want 7", got)
	}
	if got := Fixed(2.5).Resolve(7); got != 2.5 {
		t.Errorf("Fixed(2.5).Resolve(7) = %v, want 2.5", got)
	}
}

func TestRandomRange(t *testing.T) {
	tests := []struct {
		sample float64
		want   float64
	}{
		{0, -2},
		{0.5, 1},
		{0.75, 2.5},
	}
	for _, tt := range tests {
		if got := RandomRange(constantSampler(tt.sample), -2, 4); !floatEqual(got, tt.want, 1e-12) {
			t.Errorf("RandomRange(%v) = %v, want %v", tt.sample, got, tt.want)
		}
	}
}

// ========== CONSTRUCTION TESTS ==========
func TestNewVehicleOrientation(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{1, 2, 3}, DefaultPhysicalProps())

	if v.Position() != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("Position = %v", v.Position())
	}
	if !vec3Equal(v.Forward(), mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("Forward = %v, want +X", v.Forward())
	}
	if !vec3Equal(v.Up(), mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("Up = %v, want +Z", v.Up())
	}
	if v.Trail().Cap() != DefaultPhysicalProps().TrailLength {
		t.Errorf("trail capacity = %d", v.Trail().Cap())
	}
}

func TestNewVehicleOrientedParallelUp(t *testing.T) {
	v := NewVehicleOriented(mgl64.Vec3{}, mgl64.Vec3{0, 0, 4}, mgl64.Vec3{0, 0, 1}, DefaultPhysicalProps())

	if !v.Frame.Orthonormal(orthonormalTolerance) {
		t.Fatalf("basis is not orthonormal: %v", v.Frame.Basis)
	}
	if !vec3Equal(v.Forward(), mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("Forward = %v, want +Z", v.Forward())
	}
}

func TestVehicleIDsAreUnique(t *testing.T) {
	a := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	b := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	if a.ID == b.ID {
		t.Error("two vehicles share an ID")
	}
}

// ========== UPDATE TESTS ==========
func TestVehicleVelocityNeverExceedsMax(t *testing.T) {
	forces := []mgl64.Vec3{
		{1e9, 0, 0},
		{-1e6, 1e6, 3e5},
		{0, 0, -1e12},
		{5, 5, 5},
	}

	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	for i := 0; i < 200; i++ {
		v.ApplyForce(forces[i%len(forces)])
		v.Update()

		if v.Velocity.Len() > v.Props.MaxVelocity+1e-9 {
			t.Fatalf("tick %d: |velocity| = %v exceeds %v", i, v.Velocity.Len(), v.Props.MaxVelocity)
		}
	}
}

func TestVehicleAgeAndExpiry(t *testing.T) {
	props := DefaultPhysicalProps()
	props.LifeExpectancy = 3
	v := NewVehicle(mgl64.Vec3{}, props)

	for i := 1; i <= 5; i++ {
		v.Update()
		if v.Age() != i {
			t.Fatalf("Age() = %d after %d updates", v.Age(), i)
		}
		if want := i >= 3; v.Expired() != want {
			t.Errorf("age %d: Expired() = %v, want %v", i, v.Expired(), want)
		}
	}
}

func TestVehicleUpdateConsumesAcceleration(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.ApplyForce(mgl64.Vec3{20, 0, 0})
	v.Update()

	if v.Acceleration() != (mgl64.Vec3{}) {
		t.Errorf("acceleration not reset: %v", v.Acceleration())
	}
	if !vec3Equal(v.Velocity, mgl64.Vec3{2, 0, 0}, 1e-12) {
		t.Errorf("Velocity = %v, want (2,0,0)", v.Velocity)
	}
	if !vec3Equal(v.Position(), mgl64.Vec3{2, 0, 0}, 1e-12) {
		t.Errorf("Position = %v, want (2,0,0)", v.Position())
	}
}

func TestVehicleAccelerationClampedToSteerForce(t *testing.T) {
	props := DefaultPhysicalProps()
	props.MaxSteerForce = 1
	v := NewVehicle(mgl64.Vec3{}, props)

	v.ApplyForce(mgl64.Vec3{0, 500, 0})
	v.Update()

	if !vec3Equal(v.Velocity, mgl64.Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("Velocity = %v, want (0,1,0)", v.Velocity)
	}
}

func TestVehicleFriction(t *testing.T) {
	props := DefaultPhysicalProps()
	props.FrictionCoefficient = 2
	v := NewVehicle(mgl64.Vec3{}, props)
	v.Velocity = mgl64.Vec3{5, 0, 0}

	v.Update()

	if !vec3Equal(v.Velocity, mgl64.Vec3{4.8, 0, 0}, 1e-12) {
		t.Errorf("Velocity = %v, want (4.8,0,0)", v.Velocity)
	}
}

func TestVehicleSnapsTinyVelocity(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.Velocity = mgl64.Vec3{1e-6, 0, 0}

	v.Update()

	if v.Velocity != (mgl64.Vec3{}) {
		t.Errorf("Velocity = %v, want zero", v.Velocity)
	}
}

func TestVehicleTrailRecordsPositions(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.Velocity = mgl64.Vec3{0, 3, 0}

	for i := 0; i < 4; i++ {
		v.Update()
	}

	points := v.Trail().Points()
	if len(points) != 4 {
		t.Fatalf("trail length = %d, want 4", len(points))
	}
	if !vec3Equal(points[0], mgl64.Vec3{0, 9, 0}, 1e-12) || points[3] != (mgl64.Vec3{}) {
		t.Errorf("trail = %v", points)
	}
}

func TestVehicleOrientsAlongVelocity(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.Velocity = mgl64.Vec3{0, 5, 0}

	v.Update()

	if !vec3Equal(v.Forward(), mgl64.Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("Forward = %v, want +Y", v.Forward())
	}
	if !vec3Equal(v.Up(), mgl64.Vec3{0, 0, 1}, 1e-9) {
		t.Errorf("Up = %v, want it kept at +Z", v.Up())
	}
}

func TestVehicleFrameStaysOrthonormalWhileTurning(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.Velocity = mgl64.Vec3{5, 0, 0}

	for i := 0; i < 500; i++ {
		angle := float64(i) * 0.05
		v.ApplyForce(mgl64.Vec3{-math.Sin(angle), math.Cos(angle), 0.3 * math.Sin(3*angle)}.Mul(20))
		v.Update()

		if !v.Frame.Orthonormal(orthonormalTolerance) {
			t.Fatalf("tick %d: basis is not orthonormal: %v", i, v.Frame.Basis)
		}
		if v.Velocity.Len() > 0 && !floatEqual(v.Forward().Dot(v.Velocity.Normalize()), 1, 1e-9) {
			t.Fatalf("tick %d: forward %v does not follow velocity %v", i, v.Forward(), v.Velocity)
		}
	}
}

func TestVehicleRollIsLimited(t *testing.T) {
	props := DefaultPhysicalProps()
	props.MaxPitchAdjustment = 0.01
	v := NewVehicle(mgl64.Vec3{}, props)
	v.Velocity = mgl64.Vec3{5, 0, 0}
	v.Update()

	for i := 0; i < 50; i++ {
		up := v.Up()
		v.ApplyForce(mgl64.Vec3{0, 40, 0})
		v.Update()

		// the roll around the new heading, after removing the heading change itself
		projected := up.Sub(v.Forward().Mul(up.Dot(v.Forward())))
		if projected.Len() < 1e-9 {
			continue
		}
		roll := math.Acos(math.Min(1, projected.Normalize().Dot(v.Up())))
		if roll > props.MaxPitchAdjustment+1e-6 {
			t.Fatalf("tick %d: rolled %v rad, limit %v", i, roll, props.MaxPitchAdjustment)
		}
	}
}

// ========== FORCE TESTS ==========
func TestVehicleApplyForce(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.ApplyForce(mgl64.Vec3{10, 0, 0})
	v.ApplyForce(mgl64.Vec3{0, 20, 0})

	if !vec3Equal(v.Acceleration(), mgl64.Vec3{1, 2, 0}, 1e-12) {
		t.Errorf("Acceleration = %v, want (1,2,0)", v.Acceleration())
	}

	massless := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	massless.Props.Mass = 0
	massless.ApplyForce(mgl64.Vec3{3, 0, 0})
	if massless.Acceleration() != (mgl64.Vec3{3, 0, 0}) {
		t.Errorf("massless Acceleration = %v, want the raw force", massless.Acceleration())
	}
}

func TestVehicleSteer(t *testing.T) {
	tests := []struct {
		name      string
		direction mgl64.Vec3
		speed     SpeedSpec
		want      mgl64.Vec3
	}{
		{"max velocity", mgl64.Vec3{1, 0, 0}, MaxVelocity, mgl64.Vec3{1, 0, 0}},
		{"fixed", mgl64.Vec3{0, 2, 0}, Fixed(5), mgl64.Vec3{0, 1, 0}},
		{"zero direction", mgl64.Vec3{}, Fixed(5), mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
			v.Steer(tt.direction, tt.speed)
			if !vec3Equal(v.Acceleration(), tt.want, 1e-12) {
				t.Errorf("Acceleration = %v, want %v", v.Acceleration(), tt.want)
			}
		})
	}
}

func TestVehicleSeekScenario(t *testing.T) {
	props := DefaultPhysicalProps()
	props.MaxVelocity = 10
	props.FrictionCoefficient = 0
	v := NewVehicle(mgl64.Vec3{}, props)
	target := mgl64.Vec3{1000, 0, 0}

	previousX := v.Position().X()
	for i := 0; i < 50; i++ {
		v.Seek(target, MaxVelocity)
		v.Update()

		if v.Position().X() <= previousX {
			t.Fatalf("tick %d: x went from %v to %v", i, previousX, v.Position().X())
		}
		previousX = v.Position().X()
	}

	if !floatEqual(v.Velocity.Len(), 10, 1e-9) {
		t.Errorf("|velocity| = %v, want 10", v.Velocity.Len())
	}
	if !floatEqual(v.Position().Y(), 0, 1e-12) || !floatEqual(v.Position().Z(), 0, 1e-12) {
		t.Errorf("vehicle left the X axis: %v", v.Position())
	}
}

func TestVehicleArrive(t *testing.T) {
	tests := []struct {
		name     string
		position mgl64.Vec3
		velocity mgl64.Vec3
		target   mgl64.Vec3
		want     mgl64.Vec3
	}{
		{"far away at full speed", mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{1000, 0, 0}, mgl64.Vec3{10, 0, 0}},
		// deceleration radius: 3*10 + 10*10/(2*10) = 35
		{"inside deceleration radius", mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{0, 17.5, 0}, mgl64.Vec3{0, 5, 0}},
		{"on target brakes", mgl64.Vec3{4, 4, 4}, mgl64.Vec3{5, 0, 0}, mgl64.Vec3{4, 4, 4}, mgl64.Vec3{-5, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVehicle(tt.position, DefaultPhysicalProps())
			v.Velocity = tt.velocity
			v.Arrive(tt.target)

			if !vec3Equal(v.Acceleration(), tt.want, 1e-9) {
				t.Errorf("Acceleration = %v, want %v", v.Acceleration(), tt.want)
			}
		})
	}
}

func TestVehicleArriveStops(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	target := mgl64.Vec3{200, 50, 0}

	for i := 0; i < 400; i++ {
		v.Arrive(target)
		v.Update()
	}

	if !vec3Equal(v.Position(), target, 0.5) {
		t.Errorf("Position = %v, want close to %v", v.Position(), target)
	}
	if v.Velocity.Len() > 0.5 {
		t.Errorf("|velocity| = %v, want nearly stopped", v.Velocity.Len())
	}
}

func TestVehicleAvoid(t *testing.T) {
	tests := []struct {
		name    string
		target  mgl64.Vec3
		closest float64
		want    mgl64.Vec3
	}{
		// away (1,0,0), closeness 5/10: direction (2,0,0), times maxV 10, over mass 10
		{"inside", mgl64.Vec3{0, 0, 0}, 10, mgl64.Vec3{2, 0, 0}},
		{"outside", mgl64.Vec3{0, 0, 0}, 4, mgl64.Vec3{}},
		{"on target", mgl64.Vec3{5, 0, 0}, 10, mgl64.Vec3{}},
		{"disabled", mgl64.Vec3{0, 0, 0}, 0, mgl64.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVehicle(mgl64.Vec3{5, 0, 0}, DefaultPhysicalProps())
			v.Avoid(tt.target, tt.closest, MaxVelocity)
			if !vec3Equal(v.Acceleration(), tt.want, 1e-9) {
				t.Errorf("Acceleration = %v, want %v", v.Acceleration(), tt.want)
			}
		})
	}
}

// ========== FLOCKING TESTS ==========
func TestVehicleSeparatePushesApart(t *testing.T) {
	a := NewVehicle(mgl64.Vec3{0, 0, 0}, DefaultPhysicalProps())
	b := NewVehicle(mgl64.Vec3{10, 5, 0}, DefaultPhysicalProps())

	a.Separate([]mgl64.Vec3{b.Position()}, 1)
	b.Separate([]mgl64.Vec3{a.Position()}, 1)

	if a.Acceleration().Dot(b.Position().Sub(a.Position())) >= 0 {
		t.Errorf("a is not pushed away from b: %v", a.Acceleration())
	}
	if b.Acceleration().Dot(a.Position().Sub(b.Position())) >= 0 {
		t.Errorf("b is not pushed away from a: %v", b.Acceleration())
	}
}

func TestVehicleSeparateIgnores(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())

	// a coincident neighbour and one beyond the desired separation
	v.Separate([]mgl64.Vec3{{0, 0, 0}, {100, 0, 0}}, 1)

	if v.Acceleration() != (mgl64.Vec3{}) {
		t.Errorf("Acceleration = %v, want zero", v.Acceleration())
	}
}

func TestVehicleAlignAndCohere(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.Align([]mgl64.Vec3{{0, 4, 0}, {0, 6, 0}}, 2)

	if !vec3Equal(v.Acceleration(), mgl64.Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("Align acceleration = %v, want (0,1,0)", v.Acceleration())
	}

	w := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	w.Cohere([]mgl64.Vec3{{20, 0, 0}, {0, 0, 0}}, 1)

	if !vec3Equal(w.Acceleration(), mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("Cohere acceleration = %v, want (1,0,0)", w.Acceleration())
	}

	x := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	x.Flock(nil, nil, 1, 1, 1)
	if x.Acceleration() != (mgl64.Vec3{}) {
		t.Errorf("Flock without neighbours = %v, want zero", x.Acceleration())
	}
}

func TestVehicleAggregateSteer(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.AccumulateSteer(mgl64.Vec3{1, 0, 0}, MaxVelocity)
	v.AccumulateSteer(mgl64.Vec3{0, 1, 0}, MaxVelocity)

	if v.Acceleration() != (mgl64.Vec3{}) {
		t.Fatalf("AccumulateSteer should not touch the acceleration: %v", v.Acceleration())
	}

	v.ApplyAggregateSteer()
	// (10,10,0) limited to 10, over mass 10
	want := mgl64.Vec3{1, 1, 0}.Normalize()
	if !vec3Equal(v.Acceleration(), want, 1e-12) {
		t.Errorf("Acceleration = %v, want %v", v.Acceleration(), want)
	}

	v.ApplyAggregateSteer()
	if !vec3Equal(v.Acceleration(), want, 1e-12) {
		t.Errorf("aggregate steer applied twice: %v", v.Acceleration())
	}
}

func TestVehicleWander(t *testing.T) {
	v := NewVehicle(mgl64.Vec3{}, DefaultPhysicalProps())
	v.Velocity = mgl64.Vec3{5, 0, 0}

	v.Wander(constantSampler(1))

	if v.Acceleration().Len() == 0 {
		t.Error("Wander applied no force")
	}
	if v.wanderAngle <= 0 {
		t.Errorf("wander angle = %v, want it advanced", v.wanderAngle)
	}
}
