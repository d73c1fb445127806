package actor

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidBasis is returned when a frame basis cannot be inverted
var ErrInvalidBasis = errors.New("actor: frame basis is singular")

const (
	// parallelThreshold is the |dot| above which a normal is considered parallel to world Y
	parallelThreshold = 0.99
	// degenerateLength is the length under which a cross product is treated as zero
	degenerateLength = 1e-6
	// singularDeterminant is the determinant under which a basis is treated as singular
	singularDeterminant = 1e-12
)

var (
	worldX = mgl64.Vec3{1, 0, 0}
	worldY = mgl64.Vec3{0, 1, 0}
	worldZ = mgl64.Vec3{0, 0, 1}
)

// Frame is a positioned, oriented local coordinate system.
// The columns of Basis are the local x, y and z axes expressed in world coordinates.
//
// Frame transforms (Rotate, Translate, SetYAxis, SetZAxis) mutate the receiver and return it.
// Derivations (LocalToWorld, TransformPointsBetween, axis accessors) never mutate.
type Frame struct {
	Position mgl64.Vec3
	Basis    mgl64.Mat3
}

// WorldFrame returns the identity frame located at the origin
func WorldFrame() *Frame {
	return &Frame{Basis: mgl64.Ident3()}
}

// NewFrameFromNormal builds a frame whose z axis is the given normal.
// The x axis is derived from world Y, or world X when the normal is nearly vertical.
func NewFrameFromNormal(origin, normal mgl64.Vec3) *Frame {
	z := normal.Normalize()

	reference := worldY
	if math.Abs(z.Dot(worldY)) >= parallelThreshold {
		reference = worldX
	}

	x := reference.Cross(z).Normalize()
	y := z.Cross(x).Normalize()

	return &Frame{
		Position: origin,
		Basis:    mgl64.Mat3FromCols(x, y, z),
	}
}

// NewFrameFromNormalAndX builds a frame whose z axis is the normal and whose x axis is the
// hint corrected to be exactly orthogonal to the normal.
func NewFrameFromNormalAndX(origin, normal, xHint mgl64.Vec3) *Frame {
	z := normal.Normalize()
	x := xHint.Normalize()
	y := z.Cross(x).Normalize()
	correctedX := y.Cross(z).Normalize()

	return &Frame{
		Position: origin,
		Basis:    mgl64.Mat3FromCols(correctedX, y, z),
	}
}

// Copy returns an independent copy of the frame
func (f *Frame) Copy() *Frame {
	c := *f
	return &c
}

// XAxis returns the x axis scaled by length
func (f *Frame) XAxis(length float64) mgl64.Vec3 {
	return f.Basis.Col(0).Mul(length)
}

// YAxis returns the y axis scaled by length
func (f *Frame) YAxis(length float64) mgl64.Vec3 {
	return f.Basis.Col(1).Mul(length)
}

// ZAxis returns the z axis scaled by length
func (f *Frame) ZAxis(length float64) mgl64.Vec3 {
	return f.Basis.Col(2).Mul(length)
}

// Rotate rotates the basis by angle radians around axis.
// A zero axis leaves the frame untouched.
func (f *Frame) Rotate(angle float64, axis mgl64.Vec3) *Frame {
	if axis.Len() < degenerateLength {
		return f
	}
	f.Basis = mgl64.HomogRotate3D(angle, axis.Normalize()).Mat3().Mul3(f.Basis)
	return f
}

// RotateAboutZ rotates the basis around its own z axis
func (f *Frame) RotateAboutZ(angle float64) *Frame {
	return f.Rotate(angle, f.ZAxis(1))
}

// Translate moves the origin by delta
func (f *Frame) Translate(delta mgl64.Vec3) *Frame {
	f.Position = f.Position.Add(delta)
	return f
}

// SetYAxis keeps the z axis and turns the frame so its y axis points as close as possible to newY
func (f *Frame) SetYAxis(newY mgl64.Vec3) *Frame {
	z := f.ZAxis(1)

	x := newY.Cross(z)
	if x.Len() < degenerateLength {
		x = worldX.Cross(z)
		if x.Len() < degenerateLength {
			x = worldY.Cross(z)
		}
	}
	x = x.Normalize()
	y := z.Cross(x).Normalize()

	f.Basis = mgl64.Mat3FromCols(x, y, z)
	return f
}

// SetZAxis points the z axis along newZ, keeping the current y axis as the preferred up.
// A zero newZ leaves the frame untouched.
func (f *Frame) SetZAxis(newZ mgl64.Vec3) *Frame {
	if newZ.Len() < degenerateLength {
		return f
	}
	z := newZ.Normalize()

	x := f.YAxis(1).Cross(z)
	if x.Len() < degenerateLength {
		// heading is parallel to the old up: keep the old x instead
		oldX := f.XAxis(1)
		x = oldX.Sub(z.Mul(oldX.Dot(z)))
		if x.Len() < degenerateLength {
			x = worldY.Cross(z)
			if x.Len() < degenerateLength {
				x = worldX.Cross(z)
			}
		}
	}
	x = x.Normalize()
	y := z.Cross(x).Normalize()

	f.Basis = mgl64.Mat3FromCols(x, y, z)
	return f
}

// LocalToWorld converts a point expressed in the frame into world coordinates
func (f *Frame) LocalToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return f.Basis.Mul3x1(local).Add(f.Position)
}

// LocalPointsToWorld converts a batch of local points into world coordinates
func (f *Frame) LocalPointsToWorld(points []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		out[i] = f.LocalToWorld(p)
	}
	return out
}

// TransformPoints is a shortcut for TransformPointsBetween(f, target, points)
func (f *Frame) TransformPoints(target *Frame, points []mgl64.Vec3) ([]mgl64.Vec3, error) {
	return TransformPointsBetween(f, target, points)
}

// TransformPointsBetween expresses world points in source's local coordinates and
// places those local coordinates into target
func TransformPointsBetween(source, target *Frame, points []mgl64.Vec3) ([]mgl64.Vec3, error) {
	if math.Abs(source.Basis.Det()) < singularDeterminant {
		return nil, ErrInvalidBasis
	}
	inverse := source.Basis.Inv()

	out := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		local := inverse.Mul3x1(p.Sub(source.Position))
		out[i] = target.Basis.Mul3x1(local).Add(target.Position)
	}
	return out, nil
}

// Axes returns the three axes as segments starting at the origin
func (f *Frame) Axes(length float64) [3]Segment {
	return [3]Segment{
		{Start: f.Position, End: f.Position.Add(f.XAxis(length))},
		{Start: f.Position, End: f.Position.Add(f.YAxis(length))},
		{Start: f.Position, End: f.Position.Add(f.ZAxis(length))},
	}
}

// Orthonormal reports whether the basis columns are unit length and pairwise orthogonal within tolerance
func (f *Frame) Orthonormal(tolerance float64) bool {
	x, y, z := f.XAxis(1), f.YAxis(1), f.ZAxis(1)

	return math.Abs(x.Len()-1) <= tolerance &&
		math.Abs(y.Len()-1) <= tolerance &&
		math.Abs(z.Len()-1) <= tolerance &&
		math.Abs(x.Dot(y)) <= tolerance &&
		math.Abs(y.Dot(z)) <= tolerance &&
		math.Abs(z.Dot(x)) <= tolerance
}
