// Package eval runs the core experiment: at each reference epoch it compares
// the spin-estimated inertial→Earth-fixed conversion against the exact one,
// point by point, and measures both error and wall time.
package eval

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/greyskyy/fast-eci/internal/frame"
	"github.com/greyskyy/fast-eci/internal/metrics"
	"github.com/greyskyy/fast-eci/internal/spin"
)

// StateProvider produces orbit states in a requested frame.
type StateProvider interface {
	StateAt(t time.Time, f frame.Frame) (frame.StateVector, error)
}

// TransformProvider produces exact frame transforms. *frame.Engine satisfies
// it; tests substitute synthetic providers.
type TransformProvider interface {
	Transform(from, to frame.Frame, t time.Time) (frame.Transform, error)
}

// Sample is the measured error of the estimated conversion at one offset
// from one reference epoch.
type Sample struct {
	DeltaTime   float64 // seconds from the reference epoch
	PosError    float64 // position error magnitude, meters
	VelMagError float64 // velocity difference magnitude, m/s
	VelAngError float64 // velocity direction error, degrees
}

// Timings is the wall time spent inside each conversion path, exclusive of
// propagation and of the per-epoch baseline setup.
type Timings struct {
	Estimated time.Duration
	Actual    time.Duration
}

// Add accumulates another timing total.
func (t *Timings) Add(other Timings) {
	t.Estimated += other.Estimated
	t.Actual += other.Actual
}

// Config sets the shape of one evaluation run.
type Config struct {
	Inertial frame.Frame
	Fixed    frame.Frame

	// NumTests is the number of offsets checked per reference epoch,
	// including the zero offset.
	NumTests int
	// TestStep is the spacing between offsets, seconds.
	TestStep float64

	// Verbose, when non-nil, receives per-point detail lines.
	Verbose io.Writer
}

// Evaluator checks the spin approximation against exact transforms, one
// reference epoch at a time. Evaluation is strictly sequential so the two
// timed paths never contend with each other.
type Evaluator struct {
	states StateProvider
	frames TransformProvider
	cfg    Config
	logger *slog.Logger
}

// New creates an evaluator.
func New(states StateProvider, frames TransformProvider, cfg Config, logger *slog.Logger) *Evaluator {
	return &Evaluator{states: states, frames: frames, cfg: cfg, logger: logger}
}

// CheckSample evaluates one reference epoch: it computes the exact baseline
// there, then walks NumTests offsets (0, step, 2·step, …) comparing the
// estimated conversion to the exact one at each.
//
// Per offset, two conversions of the same inertial state are timed: the
// estimated path (baseline plus spin increment) and the exact path (full
// transform recomputed at the offset time). Errors are measured against the
// ground-truth Earth-fixed state from the provider. The exact path's own
// output is also checked against that ground truth; disagreement there means
// the experiment itself is broken, not the approximation.
func (ev *Evaluator) CheckSample(epoch time.Time) ([]Sample, Timings, error) {
	baseline, err := ev.frames.Transform(ev.cfg.Inertial, ev.cfg.Fixed, epoch)
	if err != nil {
		return nil, Timings{}, fmt.Errorf("baseline at %s: %w", epoch.UTC().Format(time.RFC3339), err)
	}
	est := spin.New(epoch, baseline)

	samples := make([]Sample, 0, ev.cfg.NumTests)
	var timings Timings

	for i := 0; i < ev.cfg.NumTests; i++ {
		delta := float64(i) * ev.cfg.TestStep
		testTime := epoch.Add(time.Duration(delta * float64(time.Second)))

		inertialPv, err := ev.states.StateAt(testTime, ev.cfg.Inertial)
		if err != nil {
			return nil, timings, fmt.Errorf("inertial state at %s: %w", testTime.UTC().Format(time.RFC3339), err)
		}
		fixedPv, err := ev.states.StateAt(testTime, ev.cfg.Fixed)
		if err != nil {
			return nil, timings, fmt.Errorf("fixed state at %s: %w", testTime.UTC().Format(time.RFC3339), err)
		}

		// Estimated path, timed: spin the baseline forward and convert.
		start := time.Now()
		estimatedPv := est.Apply(inertialPv, delta)
		estElapsed := time.Since(start)

		// Exact path, timed: recompute the full transform at the offset time
		// and convert.
		start = time.Now()
		actualTx, err := ev.frames.Transform(ev.cfg.Inertial, ev.cfg.Fixed, testTime)
		if err != nil {
			return nil, timings, fmt.Errorf("exact transform at %s: %w", testTime.UTC().Format(time.RFC3339), err)
		}
		actualPv := actualTx.Apply(inertialPv)
		actElapsed := time.Since(start)

		timings.Estimated += estElapsed
		timings.Actual += actElapsed
		metrics.RecordSample(estElapsed, actElapsed)

		s := Sample{
			DeltaTime:   delta,
			PosError:    frame.Distance(fixedPv.Position, estimatedPv.Position),
			VelMagError: frame.Distance(fixedPv.Velocity, estimatedPv.Velocity),
			VelAngError: frame.AngleDegrees(fixedPv.Velocity, estimatedPv.Velocity),
		}
		samples = append(samples, s)

		// Consistency check of the timed exact path against the provider's
		// ground truth. Both run the same transform, so all three values
		// should be ~zero; anything else means the experiment itself is
		// broken rather than the approximation.
		checkPos := frame.Distance(fixedPv.Position, actualPv.Position)
		checkVelMag := frame.Distance(fixedPv.Velocity, actualPv.Velocity)
		checkVelAng := frame.AngleDegrees(fixedPv.Velocity, actualPv.Velocity)
		if checkPos > 1e-3 {
			ev.logger.Warn("exact path disagrees with ground truth",
				"time", testTime.UTC().Format(time.RFC3339),
				"pos_error_m", checkPos)
		}

		if ev.cfg.Verbose != nil {
			fmt.Fprintf(ev.cfg.Verbose, " Time point: %s\n", testTime.UTC().Format(time.RFC3339))
			fmt.Fprintf(ev.cfg.Verbose, "  deltaFromEpoch: %gs\n", delta)
			fmt.Fprintf(ev.cfg.Verbose, "  posError:       %gm\n", s.PosError)
			fmt.Fprintf(ev.cfg.Verbose, "  velMagError:    %gm/s\n", s.VelMagError)
			fmt.Fprintf(ev.cfg.Verbose, "  velAngError:    %gdeg\n", s.VelAngError)
			fmt.Fprintf(ev.cfg.Verbose, "  check posError:    %gm\n", checkPos)
			fmt.Fprintf(ev.cfg.Verbose, "  check velMagError: %gm/s\n", checkVelMag)
			fmt.Fprintf(ev.cfg.Verbose, "  check velAngError: %gdeg\n", checkVelAng)
		}
	}

	return samples, timings, nil
}
