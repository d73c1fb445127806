package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	// velocityThreshold is the speed under which a vehicle is considered at rest
	velocityThreshold = 1e-5
	// minAvoidDistance floors the distance used by Avoid
	minAvoidDistance = 0.001
	// ArriveBufferFrames is added to the stopping distance of Arrive, in ticks at full speed
	ArriveBufferFrames = 3
)

// Vehicle is a steerable point mass carrying its own orientation frame.
// Steering behaviours accumulate into the acceleration, which is consumed by Update.
type Vehicle struct {
	ID uuid.UUID

	// Frame holds the position; its z axis is the heading and its y axis the up direction
	Frame    *Frame
	Velocity mgl64.Vec3
	Props    PhysicalProps

	acceleration   mgl64.Vec3
	aggregateSteer mgl64.Vec3

	previousForward mgl64.Vec3
	previousUp      mgl64.Vec3
	hasPrevious     bool

	age         int
	trail       *Trail
	wanderAngle float64
}

// NewVehicle creates a vehicle heading along +X with +Z up
func NewVehicle(position mgl64.Vec3, props PhysicalProps) *Vehicle {
	return NewVehicleOriented(position, worldX, worldZ, props)
}

// NewVehicleOriented creates a vehicle heading along forward, with up as the preferred up direction
func NewVehicleOriented(position, forward, up mgl64.Vec3, props PhysicalProps) *Vehicle {
	var frame *Frame
	if side := up.Cross(forward); side.Len() < degenerateLength {
		frame = NewFrameFromNormal(position, forward)
	} else {
		frame = NewFrameFromNormalAndX(position, forward, side)
	}

	return &Vehicle{
		ID:    uuid.New(),
		Frame: frame,
		Props: props,
		trail: NewTrail(props.TrailLength),
	}
}

// Position returns the location of the vehicle
func (v *Vehicle) Position() mgl64.Vec3 {
	return v.Frame.Position
}

// Forward returns the unit heading
func (v *Vehicle) Forward() mgl64.Vec3 {
	return v.Frame.ZAxis(1)
}

// Up returns the unit up direction
func (v *Vehicle) Up() mgl64.Vec3 {
	return v.Frame.YAxis(1)
}

// Acceleration returns the acceleration accumulated since the last Update
func (v *Vehicle) Acceleration() mgl64.Vec3 {
	return v.acceleration
}

// Age returns the number of updates performed
func (v *Vehicle) Age() int {
	return v.age
}

// Expired reports whether the vehicle outlived its life expectancy
func (v *Vehicle) Expired() bool {
	return v.age >= v.Props.LifeExpectancy
}

// Trail returns the recent positions of the vehicle
func (v *Vehicle) Trail() *Trail {
	return v.trail
}

// Update integrates the accumulated forces over one tick
func (v *Vehicle) Update() {
	v.applyFriction()

	v.acceleration = limit(v.acceleration, v.Props.MaxSteerForce)
	v.Velocity = limit(v.Velocity.Add(v.acceleration), v.Props.MaxVelocity)

	v.trail.Push(v.Frame.Position)
	v.Frame.Translate(v.Velocity)
	v.orient()

	v.acceleration = mgl64.Vec3{}
	if v.Velocity.Len() < velocityThreshold {
		v.Velocity = mgl64.Vec3{}
	}
	v.age++
}

// ApplyForce adds force/mass to the acceleration
func (v *Vehicle) ApplyForce(force mgl64.Vec3) {
	if v.Props.Mass > 0 {
		force = force.Mul(1 / v.Props.Mass)
	}
	v.acceleration = v.acceleration.Add(force)
}

// Steer applies direction scaled by the speed multiplier.
// A zero direction is ignored.
func (v *Vehicle) Steer(direction mgl64.Vec3, speed SpeedSpec) {
	if direction.Len() == 0 {
		return
	}
	v.ApplyForce(direction.Mul(speed.Resolve(v.Props.MaxVelocity)))
}

// Seek steers toward target
func (v *Vehicle) Seek(target mgl64.Vec3, speed SpeedSpec) {
	v.Steer(target.Sub(v.Position()), speed)
}

// Arrive steers toward target, slowing down inside the stopping distance
func (v *Vehicle) Arrive(target mgl64.Vec3) {
	toTarget := target.Sub(v.Position())
	distance := toTarget.Len()

	maxVelocity := v.Props.MaxVelocity
	decelerationRadius := ArriveBufferFrames * maxVelocity
	if v.Props.MaxSteerForce > 0 {
		decelerationRadius += maxVelocity * maxVelocity / (2 * v.Props.MaxSteerForce)
	}

	desired := mgl64.Vec3{}
	if distance > 0 {
		speed := maxVelocity
		if distance < decelerationRadius {
			speed = maxVelocity * distance / decelerationRadius
		}
		desired = toTarget.Mul(speed / distance)
	}

	steer := desired.Sub(v.Velocity)
	v.ApplyForce(steer.Mul(v.Props.Mass))
}

// Avoid pushes the vehicle away from target when closer than desiredClosestDistance.
// The push grows as the distance shrinks.
func (v *Vehicle) Avoid(target mgl64.Vec3, desiredClosestDistance float64, speed SpeedSpec) {
	if desiredClosestDistance <= 0 {
		return
	}
	away := v.Position().Sub(target)
	distance := away.Len()
	if distance > desiredClosestDistance {
		return
	}
	if distance == 0 {
		return
	}

	closeness := math.Max(distance, minAvoidDistance) / desiredClosestDistance
	v.Steer(away.Mul(1/distance).Mul(1/closeness), speed)
}

// Separate steers away from neighbours closer than DesiredSeparation
func (v *Vehicle) Separate(neighborPositions []mgl64.Vec3, multiplier float64) {
	position := v.Position()

	sum := mgl64.Vec3{}
	sumDistance := 0.0
	count := 0
	for _, p := range neighborPositions {
		away := position.Sub(p)
		d := away.Len()
		if d > 0 && d < v.Props.DesiredSeparation {
			sum = sum.Add(away.Mul(1 / (d * d)))
			sumDistance += d
			count++
		}
	}
	if count == 0 {
		return
	}

	n := float64(count)
	sum = sum.Mul(1 / n).Mul(sumDistance / n)
	v.Steer(sum, Fixed(multiplier))
}

// Align steers toward the average velocity of the neighbours
func (v *Vehicle) Align(neighborVelocities []mgl64.Vec3, multiplier float64) {
	if len(neighborVelocities) == 0 {
		return
	}
	v.Steer(average(neighborVelocities), Fixed(multiplier))
}

// Cohere seeks the centroid of the neighbours
func (v *Vehicle) Cohere(neighborPositions []mgl64.Vec3, multiplier float64) {
	if len(neighborPositions) == 0 {
		return
	}
	v.Seek(average(neighborPositions), Fixed(multiplier))
}

// Flock applies Separate, Align then Cohere
func (v *Vehicle) Flock(neighborPositions, neighborVelocities []mgl64.Vec3, separate, align, cohere float64) {
	v.Separate(neighborPositions, separate)
	v.Align(neighborVelocities, align)
	v.Cohere(neighborPositions, cohere)
}

// AccumulateSteer adds a Reynolds steer (desired velocity minus current velocity)
// to the aggregate steer, consumed by ApplyAggregateSteer
func (v *Vehicle) AccumulateSteer(direction mgl64.Vec3, speed SpeedSpec) {
	if direction.Len() == 0 {
		return
	}
	desired := direction.Mul(speed.Resolve(v.Props.MaxVelocity))
	v.aggregateSteer = v.aggregateSteer.Add(desired.Sub(v.Velocity))
}

// ApplyAggregateSteer applies the aggregate steer limited to MaxSteerForce, then clears it
func (v *Vehicle) ApplyAggregateSteer() {
	v.ApplyForce(limit(v.aggregateSteer, v.Props.MaxSteerForce))
	v.aggregateSteer = mgl64.Vec3{}
}

// Wander seeks a point jittering on a circle ahead of the vehicle
func (v *Vehicle) Wander(sampler Sampler) {
	center := v.Position()
	if v.Velocity.Len() > 0 {
		center = center.Add(v.Velocity.Normalize().Mul(v.Props.WanderRadius * v.Props.WanderForwardRatio))
	}

	offset := v.Frame.XAxis(math.Cos(v.wanderAngle) * v.Props.WanderRadius).
		Add(v.Frame.YAxis(math.Sin(v.wanderAngle) * v.Props.WanderRadius))
	v.Seek(center.Add(offset), MaxVelocity)

	v.wanderAngle += RandomRange(sampler, -v.Props.MaxWanderAdjustment, v.Props.MaxWanderAdjustment)
}

func (v *Vehicle) applyFriction() {
	if v.Props.FrictionCoefficient == 0 || v.Velocity.Len() == 0 {
		return
	}
	v.ApplyForce(v.Velocity.Normalize().Mul(-v.Props.FrictionCoefficient))
}

// orient turns the frame along the velocity, then rolls the up axis toward targetUp
// by at most MaxPitchAdjustment
func (v *Vehicle) orient() {
	if v.Velocity.Len() < velocityThreshold {
		return
	}
	v.Frame.SetZAxis(v.Velocity)

	forward := v.Frame.ZAxis(1)
	up := v.Frame.YAxis(1)
	target := v.targetUp(forward, up)

	angle := math.Atan2(up.Cross(target).Dot(forward), up.Dot(target))
	maxAdjust := v.Props.MaxPitchAdjustment
	angle = math.Max(-maxAdjust, math.Min(maxAdjust, angle))
	if angle != 0 {
		v.Frame.RotateAboutZ(angle)
	}

	v.previousForward = v.Frame.ZAxis(1)
	v.previousUp = v.Frame.YAxis(1)
	v.hasPrevious = true
}

// targetUp returns the up direction continuing the previous roll through the turn
// from the previous heading to forward
func (v *Vehicle) targetUp(forward, up mgl64.Vec3) mgl64.Vec3 {
	if !v.hasPrevious {
		return up
	}

	normal := v.previousForward.Cross(forward)
	if normal.Len() < degenerateLength {
		return up
	}
	normal = normal.Normalize()

	projected := v.previousUp.Sub(normal.Mul(v.previousUp.Dot(normal)))
	target := forward.Cross(projected.Cross(forward))
	if target.Len() < degenerateLength {
		return up
	}
	return target.Normalize()
}

// limit returns v scaled down to length maxLength if it is longer
func limit(v mgl64.Vec3, maxLength float64) mgl64.Vec3 {
	l := v.Len()
	if l <= maxLength || l == 0 {
		return v
	}
	return v.Mul(maxLength / l)
}

func average(vectors []mgl64.Vec3) mgl64.Vec3 {
	sum := mgl64.Vec3{}
	for _, vec := range vectors {
		sum = sum.Add(vec)
	}
	return sum.Mul(1 / float64(len(vectors)))
}
