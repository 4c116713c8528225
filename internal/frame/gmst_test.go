package frame

import (
	"math"
	"testing"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TestJulianDate verifies the Julian Date calculation against known values.
func TestJulianDate(t *testing.T) {
	tests := []struct {
		name     string
		time     time.Time
		expected float64
	}{
		{
			name:     "J2000.0 epoch",
			time:     time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
			expected: 2451545.0,
		},
		{
			name:     "Unix epoch",
			time:     time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			expected: 2440587.5,
		},
		{
			// Vallado Example 3-15: April 6, 2004, 07:51:28.386 UTC
			name:     "Vallado example date",
			time:     time.Date(2004, 4, 6, 7, 51, 28, 386009000, time.UTC),
			expected: 2453101.827411875,
		},
		{
			name:     "MJD origin",
			time:     time.Date(1858, 11, 17, 0, 0, 0, 0, time.UTC),
			expected: 2400000.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JulianDate(tt.time)
			diff := math.Abs(got - tt.expected)
			if diff > 1e-6 {
				t.Errorf("JulianDate(%v) = %.10f, want %.10f (diff=%.2e)", tt.time, got, tt.expected, diff)
			}
		})
	}
}

// TestGMST validates the GMST calculation against the go-satellite library's
// GSTimeFromDate function, which uses the same IAU-82 model.
func TestGMST(t *testing.T) {
	tests := []struct {
		name string
		time time.Time
	}{
		{
			name: "J2000.0 epoch",
			time: time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "Vallado example date",
			time: time.Date(2004, 4, 6, 7, 51, 28, 0, time.UTC), // integer seconds for library compat
		},
		{
			name: "recent date 2026",
			time: time.Date(2026, 8, 20, 4, 1, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			our := GMST(tt.time)
			// go-satellite's GSTimeFromDate returns GMST in radians,
			// already normalized to [0, 2π).
			ref := satellite.GSTimeFromDate(
				tt.time.Year(), int(tt.time.Month()), tt.time.Day(),
				tt.time.Hour(), tt.time.Minute(), tt.time.Second(),
			)

			diff := math.Abs(our - ref)
			// Allow small difference for float precision; 1e-8 radians ≈ 0.06 arcsec.
			if diff > 1e-8 {
				t.Errorf("GMST(%v) = %.12f rad, go-satellite = %.12f rad (diff=%.2e)", tt.time, our, ref, diff)
			}
		})
	}
}

// TestGMSTVallado checks the canonical worked value from Vallado
// "Fundamentals of Astrodynamics" Example 3-15: the epoch is
// 2004-04-06 07:51:28.386009 UTC with ΔUT1 = -0.4399619 s, and GMST at the
// resulting UT1 instant 07:51:27.946047 is 312.8098943°. GMST expects UT1,
// so that instant is what the test feeds it.
func TestGMSTVallado(t *testing.T) {
	at := time.Date(2004, 4, 6, 7, 51, 27, 946047000, time.UTC)
	want := 312.8098943 * math.Pi / 180.0

	got := GMST(at)
	// Tolerance 1e-7 rad ≈ 0.02 arcsec, the round-off of the published value.
	if diff := math.Abs(got - want); diff > 1e-7 {
		t.Errorf("GMST = %.10f rad, want %.10f rad (diff=%.2e)", got, want, diff)
	}
}

// TestGMSTRange verifies GMST stays in [0, 2π) across a sweep of dates.
func TestGMSTRange(t *testing.T) {
	start := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 500; i++ {
		at := start.Add(time.Duration(i) * 31 * time.Hour)
		got := GMST(at)
		if got < 0 || got >= 2*math.Pi {
			t.Fatalf("GMST(%v) = %v, outside [0, 2π)", at, got)
		}
	}
}
