package frame

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Convention selects how a rotation angle is interpreted when building a
// transform: as carrying the frame axes through the angle, or as carrying
// vectors through the angle within a fixed frame. The two differ only by the
// sign of the angle, but getting the sign wrong flips every error the run
// measures, so the choice is an explicit argument rather than an assumption.
type Convention int

const (
	// FrameTransform rotates the destination frame's axes by the angle about
	// the axis. Coordinates of a fixed vector rotate the opposite way: a frame
	// turning east carries coordinates west.
	FrameTransform Convention = iota
	// VectorOperator rotates vectors by the angle within a fixed frame.
	VectorOperator
)

// PolarAxis is the +Z spin axis shared by the inertial and Earth-fixed frames
// in this engine's model.
var PolarAxis = r3.Vec{Z: 1}

// StateVector is a position/velocity pair expressed in a named frame at a
// given time. Units are meters and meters per second.
type StateVector struct {
	Position r3.Vec
	Velocity r3.Vec
	Frame    string
	Time     time.Time
}

// Transform maps state vectors from a source frame to a destination frame at
// a fixed time. It carries a rotation plus the angular velocity of the
// destination frame relative to the source, expressed in destination
// coordinates, so that velocities pick up the ω×r coupling term.
type Transform struct {
	// Time is the instant the transform is valid for. Applying the transform
	// stamps states with this time.
	Time time.Time

	q    quat.Number // unit quaternion mapping source coordinates to destination coordinates
	rate r3.Vec      // destination frame rate relative to source, rad/s, destination coordinates
	dest string      // destination frame name; empty leaves the state's frame name unchanged
}

// Identity returns the do-nothing transform at t.
func Identity(t time.Time) Transform {
	return Transform{Time: t, q: quat.Number{Real: 1}}
}

// NewAxisRotation builds a pure rotation by angle (radians) about axis, with
// no angular rate of its own. The axis must be nonzero. Under FrameTransform
// the destination frame's axes are rotated by the angle; under VectorOperator
// vectors are.
func NewAxisRotation(t time.Time, axis r3.Vec, angle float64, conv Convention) Transform {
	if conv == FrameTransform {
		angle = -angle
	}
	return Transform{Time: t, q: quat.Number(r3.NewRotation(angle, axis))}
}

// Apply converts a state vector through the transform. The returned state is
// stamped with the transform's time and destination frame.
//
// Position maps through the rotation alone. Velocity additionally loses the
// transport term of a rotating destination: v' = R(v) − ω×p'.
func (tx Transform) Apply(sv StateVector) StateVector {
	rot := r3.Rotation(tx.q)
	pos := rot.Rotate(sv.Position)
	vel := r3.Sub(rot.Rotate(sv.Velocity), r3.Cross(tx.rate, pos))
	name := tx.dest
	if name == "" {
		name = sv.Frame
	}
	return StateVector{Position: pos, Velocity: vel, Frame: name, Time: tx.Time}
}

// Then composes two transforms: the receiver first, then next. The result is
// stamped with next's time, so composing a baseline with a later increment
// yields a transform tagged at the increment's time.
func (tx Transform) Then(next Transform) Transform {
	name := next.dest
	if name == "" {
		name = tx.dest
	}
	return Transform{
		Time: next.Time,
		q:    quat.Mul(next.q, tx.q),
		rate: r3.Add(r3.Rotation(next.q).Rotate(tx.rate), next.rate),
		dest: name,
	}
}

// Inverse returns the reverse mapping at the same time. The inverse of
// {R, ω} is {R⁻¹, −R⁻¹(ω)}.
func (tx Transform) Inverse() Transform {
	qi := quat.Conj(tx.q)
	return Transform{
		Time: tx.Time,
		q:    qi,
		rate: r3.Scale(-1, r3.Rotation(qi).Rotate(tx.rate)),
	}
}

// Rotate maps a bare direction vector through the transform's rotation,
// without the velocity coupling term.
func (tx Transform) Rotate(v r3.Vec) r3.Vec {
	return r3.Rotation(tx.q).Rotate(v)
}

// Distance returns the Euclidean distance between two vectors.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// AngleDegrees returns the angle between two vectors in degrees. A zero
// vector has no direction, so the angle against one is defined as 0 rather
// than NaN. Nearly parallel and nearly opposite vectors go through an
// asin-based path because acos loses all precision near ±1.
func AngleDegrees(a, b r3.Vec) float64 {
	na := r3.Norm(a)
	nb := r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	prod := na * nb
	dot := r3.Dot(a, b)

	var rad float64
	switch {
	case dot > 0.9999*prod:
		rad = math.Asin(r3.Norm(r3.Cross(a, b)) / prod)
	case dot < -0.9999*prod:
		rad = math.Pi - math.Asin(r3.Norm(r3.Cross(a, b))/prod)
	default:
		rad = math.Acos(dot / prod)
	}
	return rad * 180.0 / math.Pi
}
