package frame

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/greyskyy/fast-eci/internal/eop"
)

// Frame names as they appear in state vectors and reports.
const (
	TEMEName  = "TEME"
	GCRFName  = "GCRF"
	J2000Name = "J2000"
	ITRFName  = "ITRF"
)

const arcsecToRad = math.Pi / (180.0 * 3600.0)

// IERS frame bias between GCRF and the J2000 mean equator/equinox frame
// (Vallado Eq 3-35). Milliarcsecond-level constant offsets.
const (
	biasXi    = -0.0166170 * arcsecToRad
	biasEta   = -0.0068192 * arcsecToRad
	biasAlpha = -0.0146000 * arcsecToRad
)

var (
	xAxis = r3.Vec{X: 1}
	yAxis = r3.Vec{Y: 1}
)

// Frame is one reference frame known to an Engine. The zero value is not a
// valid frame; obtain frames from an Engine.
type Frame struct {
	name   string
	orient func(t time.Time) (Transform, error)
}

// Name returns the frame's name, or "" for the zero value.
func (f Frame) Name() string { return f.name }

// Engine realizes the frame set and produces exact transforms between frames
// at requested times. It is built once at startup and passed by handle; there
// is no package-level frame state. A nil Earth-orientation table is allowed
// and disables the UT1 and polar-motion corrections.
type Engine struct {
	eop    *eop.Table
	logger *slog.Logger
	bias   quat.Number // GCRF -> J2000 coordinate rotation
}

// NewEngine builds a frame engine. table may be nil to run without
// Earth-orientation corrections; logger must not be nil.
func NewEngine(table *eop.Table, logger *slog.Logger) *Engine {
	// Compose the constant bias rotation once: R1(-η0) ∘ R2(ξ0) ∘ R3(dα0)
	// applied to GCRF coordinates yields J2000 coordinates.
	b := NewAxisRotation(time.Time{}, PolarAxis, biasAlpha, FrameTransform).
		Then(NewAxisRotation(time.Time{}, yAxis, biasXi, FrameTransform)).
		Then(NewAxisRotation(time.Time{}, xAxis, -biasEta, FrameTransform))
	e := &Engine{eop: table, logger: logger, bias: b.q}
	e.logger.Debug("frame engine initialized", "eop_corrections", table != nil)
	return e
}

// TEME returns the true-equator mean-equinox frame, the native frame of SGP4
// output. It is the engine's root frame.
func (e *Engine) TEME() Frame {
	return Frame{name: TEMEName, orient: func(t time.Time) (Transform, error) {
		tx := Identity(t)
		tx.dest = TEMEName
		return tx, nil
	}}
}

// GCRF returns the Geocentric Celestial Reference Frame. The engine models it
// as coincident with TEME: the equinox offset between the two is common to
// the baseline and the exact path, so it cancels out of every error measured.
func (e *Engine) GCRF() Frame {
	return Frame{name: GCRFName, orient: func(t time.Time) (Transform, error) {
		tx := Identity(t)
		tx.dest = GCRFName
		return tx, nil
	}}
}

// J2000 returns the mean equator/equinox frame of epoch J2000.0, offset from
// GCRF by the constant IERS frame bias.
func (e *Engine) J2000() Frame {
	return Frame{name: J2000Name, orient: func(t time.Time) (Transform, error) {
		tx := Transform{Time: t, q: e.bias, dest: J2000Name}
		return tx, nil
	}}
}

// ITRF returns the International Terrestrial Reference Frame, the Earth-fixed
// frame. Its orientation is the GMST spin about the polar axis, refined by
// UT1−UTC and polar motion when Earth-orientation data is loaded.
func (e *Engine) ITRF() Frame {
	return Frame{name: ITRFName, orient: e.orientITRF}
}

func (e *Engine) orientITRF(t time.Time) (Transform, error) {
	var dut1, xp, yp float64
	if e.eop != nil {
		p, err := e.eop.At(t)
		if err != nil {
			return Transform{}, fmt.Errorf("earth orientation at %s: %w", t.UTC().Format(time.RFC3339), err)
		}
		dut1, xp, yp = p.DUT1, p.Xp, p.Yp
	}

	ut1 := t.Add(time.Duration(dut1 * float64(time.Second)))
	spin := NewAxisRotation(t, PolarAxis, GMST(ut1), FrameTransform)
	spin.rate = r3.Vec{Z: OmegaEarth}

	tx := spin
	if xp != 0 || yp != 0 {
		// Polar motion wobble, arcsecond-scale rotations about the equatorial
		// axes (Vallado Eq 3-57 small-angle form).
		pm := NewAxisRotation(t, xAxis, yp, FrameTransform).
			Then(NewAxisRotation(t, yAxis, xp, FrameTransform))
		tx = spin.Then(pm)
	}
	tx.Time = t
	tx.dest = ITRFName
	return tx, nil
}

// Inertial resolves an inertial frame by its flag name.
func (e *Engine) Inertial(name string) (Frame, error) {
	switch name {
	case "gcrf":
		return e.GCRF(), nil
	case "j2000":
		return e.J2000(), nil
	default:
		return Frame{}, fmt.Errorf("unknown inertial frame %q (want gcrf or j2000)", name)
	}
}

// Transform returns the exact transform from one frame to another at time t.
// This is the high-fidelity path: each call re-evaluates both frame
// orientations at t.
func (e *Engine) Transform(from, to Frame, t time.Time) (Transform, error) {
	if from.orient == nil || to.orient == nil {
		return Transform{}, fmt.Errorf("transform %q -> %q: unknown frame", from.name, to.name)
	}
	src, err := from.orient(t)
	if err != nil {
		return Transform{}, fmt.Errorf("orienting %s: %w", from.name, err)
	}
	dst, err := to.orient(t)
	if err != nil {
		return Transform{}, fmt.Errorf("orienting %s: %w", to.name, err)
	}
	tx := src.Inverse().Then(dst)
	tx.Time = t
	tx.dest = to.name
	return tx, nil
}
