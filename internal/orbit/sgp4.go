package orbit

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/greyskyy/fast-eci/internal/metrics"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Pure Go (no CGO), battle-tested since 2016, explicit TEME output, and it
// ships an independent GMST/ECEF path useful for cross-validation.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. Propagation failures are detected by checking the
// output for NaN/Inf and unreasonable position magnitudes.

// SGP4 propagates a single satellite's two-line element set.
type SGP4 struct {
	sat     satellite.Satellite
	noradID int
}

// NewSGP4 creates a propagator from TLE lines. Returns an error if the TLE
// cannot be parsed or the SGP4 model fails to initialize.
//
// Pre-validates TLE format before passing to the library, because
// go-satellite calls log.Fatal on malformed input (which would kill the
// process).
func NewSGP4(line1, line2 string, noradID int) (*SGP4, error) {
	if err := validateTLELines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", noradID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", noradID, sat.Error, sat.ErrorStr)
	}
	return &SGP4{sat: sat, noradID: noradID}, nil
}

// NORADID returns the catalog number the propagator was built for.
func (p *SGP4) NORADID() int { return p.noradID }

// validateTLELines performs basic format validation on TLE lines.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// TEMEAt propagates the satellite to t and returns TEME position (meters)
// and velocity (meters per second). The library interface takes whole
// seconds, so t is truncated; callers that need consistent comparisons must
// sample all related states through the same instant.
func (p *SGP4) TEMEAt(t time.Time) (pos, vel r3.Vec, err error) {
	t = t.UTC()
	pk, vk := satellite.Propagate(p.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if hasBadValue(pk) || hasBadValue(vk) {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: output is NaN/Inf", p.noradID)
	}

	// Sanity check: position magnitude between ~6200km (LEO floor) and
	// ~50000km (beyond GEO).
	mag := math.Sqrt(pk.X*pk.X + pk.Y*pk.Y + pk.Z*pk.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return r3.Vec{}, r3.Vec{}, fmt.Errorf("sgp4 propagation failed for NORAD %d: unreasonable position magnitude %.1f km", p.noradID, mag)
	}

	metrics.RecordPropagation()

	// km, km/s -> m, m/s.
	pos = r3.Vec{X: pk.X * 1000.0, Y: pk.Y * 1000.0, Z: pk.Z * 1000.0}
	vel = r3.Vec{X: vk.X * 1000.0, Y: vk.Y * 1000.0, Z: vk.Z * 1000.0}
	return pos, vel, nil
}

func hasBadValue(v satellite.Vector3) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) ||
		math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0)
}
