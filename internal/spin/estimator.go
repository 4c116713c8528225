// Package spin implements the cheap inertial→Earth-fixed approximation under
// test: one exact transform computed at a reference epoch, then advanced to
// nearby times by a rigid rotation about the polar axis at Earth's mean spin
// rate. Precession, nutation, polar motion and UT1 drift are frozen at the
// epoch; whether that holds up over short horizons is what the evaluator
// measures.
package spin

import (
	"time"

	"github.com/greyskyy/fast-eci/internal/frame"
)

// Estimator approximates frame transforms near a fixed reference epoch.
// Build one per epoch; the baseline is computed once by the caller and every
// TransformAt call costs a single axis rotation and compose.
type Estimator struct {
	epoch    time.Time
	baseline frame.Transform
}

// New creates an estimator from the exact inertial→Earth-fixed transform at
// the reference epoch.
func New(epoch time.Time, baseline frame.Transform) *Estimator {
	return &Estimator{epoch: epoch, baseline: baseline}
}

// Epoch returns the reference epoch the baseline was computed at.
func (e *Estimator) Epoch() time.Time { return e.epoch }

// TransformAt returns the approximate transform at epoch+Δt seconds. For
// Δt ≤ 0 the baseline is returned unchanged; the increment only ever spins
// forward.
func (e *Estimator) TransformAt(deltaSeconds float64) frame.Transform {
	if deltaSeconds <= 0 {
		return e.baseline
	}
	at := e.epoch.Add(time.Duration(deltaSeconds * float64(time.Second)))
	inc := frame.NewAxisRotation(at, frame.PolarAxis,
		deltaSeconds*frame.WGS84AngularVelocity, frame.FrameTransform)
	return e.baseline.Then(inc)
}

// Apply converts a state through the approximate transform at epoch+Δt.
func (e *Estimator) Apply(sv frame.StateVector, deltaSeconds float64) frame.StateVector {
	return e.TransformAt(deltaSeconds).Apply(sv)
}
