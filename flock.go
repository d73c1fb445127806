// Package flock steps a collection of steering vehicles and answers neighbour queries
// through an octree rebuilt lazily after every Update.
package flock

import (
	"github.com/akmonengine/flock/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const DEFAULT_WORKERS = 1

// WindField returns the wind force at a position, scaled by multiplier
type WindField interface {
	ForceAt(position mgl64.Vec3, multiplier float64) mgl64.Vec3
}

// Awareness limits a targeted behaviour to the vehicles close enough to the target
type Awareness struct {
	radius  float64
	limited bool
}

// Everyone affects every vehicle regardless of distance
var Everyone = Awareness{}

// Within affects only the vehicles at most distance away from the target
func Within(distance float64) Awareness {
	return Awareness{radius: distance, limited: true}
}

type Flock struct {
	// List of all vehicles of the flock
	Vehicles []*actor.Vehicle
	// Capacity of an octree node before it subdivides
	OctreeCapacity int
	// Workers splits per-vehicle loops; 1 keeps everything on the calling goroutine
	Workers int

	Events Events
	Logger *zap.Logger

	octree *Octree[*actor.Vehicle]
}

// New creates a flock with a no-op logger
func New(vehicles ...*actor.Vehicle) *Flock {
	return &Flock{
		Vehicles:       vehicles,
		OctreeCapacity: DEFAULT_OCTREE_CAPACITY,
		Workers:        DEFAULT_WORKERS,
		Events:         NewEvents(),
		Logger:         zap.NewNop(),
	}
}

// Len returns the number of vehicles
func (f *Flock) Len() int {
	return len(f.Vehicles)
}

// Add appends vehicles to the flock
func (f *Flock) Add(vehicles ...*actor.Vehicle) {
	f.Vehicles = append(f.Vehicles, vehicles...)
	for _, v := range vehicles {
		f.Events.emit(AddedEvent{Vehicle: v})
	}
	f.octree = nil
}

// Remove removes a vehicle from the flock
func (f *Flock) Remove(vehicle *actor.Vehicle) {
	k := -1
	for i, v := range f.Vehicles {
		if v == vehicle {
			k = i
			break
		}
	}

	if k != -1 {
		f.Vehicles = append(f.Vehicles[:k], f.Vehicles[k+1:]...)
		f.Events.emit(RemovedEvent{Vehicle: vehicle})
		f.octree = nil
	}
}

// Update integrates every vehicle, drops the expired ones and invalidates the octree
func (f *Flock) Update() {
	task(f.workers(), f.Vehicles, func(v *actor.Vehicle) {
		v.Update()
	})

	n := 0
	for _, v := range f.Vehicles {
		if v.Expired() {
			f.Events.emit(ExpiredEvent{Vehicle: v})
			f.logger().Debug("vehicle expired",
				zap.Stringer("id", v.ID),
				zap.Int("age", v.Age()),
			)
			continue
		}
		f.Vehicles[n] = v
		n++
	}
	clear(f.Vehicles[n:])
	f.Vehicles = f.Vehicles[:n]

	f.octree = nil
	f.Events.flush()
}

// Octree returns the spatial index of the current positions, building it if needed.
// It fails with ErrEmptyOctree when the flock is empty.
func (f *Flock) Octree() (*Octree[*actor.Vehicle], error) {
	if f.octree != nil {
		return f.octree, nil
	}

	tree, err := NewOctree(f.Vehicles, f.OctreeCapacity, (*actor.Vehicle).Position)
	if err != nil {
		return nil, err
	}
	f.octree = tree

	f.Events.emit(OctreeRebuiltEvent{Vehicles: tree.Len(), Bounds: tree.Bounds()})
	f.logger().Debug("octree rebuilt",
		zap.Int("vehicles", tree.Len()),
		zap.Int("capacity", tree.capacity),
		zap.Float64("halfExtent", tree.Bounds().HalfExtent),
	)
	if tree.Len() != len(f.Vehicles) {
		f.logger().Warn("octree rejected vehicles",
			zap.Int("indexed", tree.Len()),
			zap.Int("vehicles", len(f.Vehicles)),
		)
	}

	return tree, nil
}

// ApplyForce applies the same force to every vehicle
func (f *Flock) ApplyForce(force mgl64.Vec3) {
	for _, v := range f.Vehicles {
		v.ApplyForce(force)
	}
}

// ApplyWind applies the wind force sampled at each vehicle's position
func (f *Flock) ApplyWind(wind WindField, multiplier float64) {
	task(f.workers(), f.Vehicles, func(v *actor.Vehicle) {
		v.ApplyForce(wind.ForceAt(v.Position(), multiplier))
	})
}

// ApplyAggregateSteer flushes the aggregate steer of every vehicle
func (f *Flock) ApplyAggregateSteer() {
	for _, v := range f.Vehicles {
		v.ApplyAggregateSteer()
	}
}

// Steer steers every vehicle along each direction in turn
func (f *Flock) Steer(speed actor.SpeedSpec, directions ...mgl64.Vec3) {
	for _, direction := range directions {
		for _, v := range f.Vehicles {
			v.Steer(direction, speed)
		}
	}
}

// Wander makes every vehicle wander. The sampler is used from the calling goroutine only.
func (f *Flock) Wander(sampler actor.Sampler) {
	for _, v := range f.Vehicles {
		v.Wander(sampler)
	}
}

// Seek steers the vehicles aware of each target toward it
func (f *Flock) Seek(speed actor.SpeedSpec, awareness Awareness, targets ...mgl64.Vec3) {
	for _, target := range targets {
		task(f.workers(), f.aware(target, awareness), func(v *actor.Vehicle) {
			v.Seek(target, speed)
		})
	}
}

// Arrive steers the vehicles aware of each target toward it, slowing down near it
func (f *Flock) Arrive(awareness Awareness, targets ...mgl64.Vec3) {
	for _, target := range targets {
		task(f.workers(), f.aware(target, awareness), func(v *actor.Vehicle) {
			v.Arrive(target)
		})
	}
}

// Avoid pushes the vehicles aware of each target away from it
func (f *Flock) Avoid(desiredClosestDistance float64, speed actor.SpeedSpec, awareness Awareness, targets ...mgl64.Vec3) {
	for _, target := range targets {
		task(f.workers(), f.aware(target, awareness), func(v *actor.Vehicle) {
			v.Avoid(target, desiredClosestDistance, speed)
		})
	}
}

// Separate steers each vehicle away from its neighbours within neighborDistance
func (f *Flock) Separate(multiplier, neighborDistance float64) {
	f.withNeighbors(neighborDistance, func(v *actor.Vehicle, positions, _ []mgl64.Vec3) {
		v.Separate(positions, multiplier)
	})
}

// Align steers each vehicle toward the mean velocity of its neighbours within neighborDistance
func (f *Flock) Align(multiplier, neighborDistance float64) {
	f.withNeighbors(neighborDistance, func(v *actor.Vehicle, _, velocities []mgl64.Vec3) {
		v.Align(velocities, multiplier)
	})
}

// Cohere steers each vehicle toward the centroid of its neighbours within neighborDistance
func (f *Flock) Cohere(multiplier, neighborDistance float64) {
	f.withNeighbors(neighborDistance, func(v *actor.Vehicle, positions, _ []mgl64.Vec3) {
		v.Cohere(positions, multiplier)
	})
}

// Flock applies separation, alignment and cohesion with a single neighbour query per vehicle
func (f *Flock) Flock(separate, align, cohere, neighborDistance float64) {
	f.withNeighbors(neighborDistance, func(v *actor.Vehicle, positions, velocities []mgl64.Vec3) {
		v.Flock(positions, velocities, separate, align, cohere)
	})
}

func (f *Flock) withNeighbors(distance float64, fn func(v *actor.Vehicle, positions, velocities []mgl64.Vec3)) {
	if len(f.Vehicles) == 0 {
		return
	}
	tree, err := f.Octree()
	if err != nil {
		f.logger().Error("octree unavailable", zap.Error(err))
		return
	}

	task(f.workers(), f.Vehicles, func(v *actor.Vehicle) {
		neighbors := tree.QueryNeighbors(v, distance)
		positions := make([]mgl64.Vec3, len(neighbors))
		velocities := make([]mgl64.Vec3, len(neighbors))
		for i, n := range neighbors {
			positions[i] = n.Position()
			velocities[i] = n.Velocity
		}
		fn(v, positions, velocities)
	})
}

// aware returns the vehicles affected by a behaviour targeting target
func (f *Flock) aware(target mgl64.Vec3, awareness Awareness) []*actor.Vehicle {
	if !awareness.limited {
		return f.Vehicles
	}
	if len(f.Vehicles) == 0 {
		return nil
	}
	tree, err := f.Octree()
	if err != nil {
		f.logger().Error("octree unavailable", zap.Error(err))
		return nil
	}
	return tree.QueryRadius(target, awareness.radius)
}

func (f *Flock) workers() int {
	return max(DEFAULT_WORKERS, f.Workers)
}

func (f *Flock) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
