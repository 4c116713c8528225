// Package eop loads Earth-orientation parameters from the CelesTrak
// EOP-All.txt data file: UT1−UTC offsets and polar motion, the slowly
// drifting corrections that separate the exact Earth-fixed frame from a pure
// sidereal spin.
package eop

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const arcsecToRad = math.Pi / (180.0 * 3600.0)

// mjdEpoch is the origin of the Modified Julian Date scale,
// 1858-11-17T00:00:00 UTC.
var mjdEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// Parameters holds the Earth-orientation values at one instant.
type Parameters struct {
	DUT1 float64 // UT1-UTC, seconds
	Xp   float64 // polar motion x, radians
	Yp   float64 // polar motion y, radians
}

type entry struct {
	mjd  float64
	dut1 float64
	xp   float64
	yp   float64
}

// Table is an immutable, time-ordered set of daily Earth-orientation entries.
// Lookups interpolate linearly between neighboring days.
type Table struct {
	entries []entry
}

// Parse reads the CelesTrak EOP-All.txt format: data lines live between
// BEGIN/END OBSERVED and BEGIN/END PREDICTED markers, thirteen whitespace
// separated columns per line:
//
//	YYYY MM DD MJD x y UT1-UTC LOD dPsi dEps dX dY DAT
//
// with x and y in arcseconds and UT1-UTC in seconds. Malformed data lines are
// skipped with a warning rather than failing the whole file.
func Parse(r io.Reader, logger *slog.Logger) (*Table, error) {
	var (
		entries []entry
		inBlock bool
		skipped int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "BEGIN "):
			inBlock = true
			continue
		case strings.HasPrefix(line, "END "):
			inBlock = false
			continue
		}
		if !inBlock {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 7 {
			skipped++
			logger.Warn("skipping short EOP line", "fields", len(fields))
			continue
		}

		mjd, err1 := strconv.ParseFloat(fields[3], 64)
		xp, err2 := strconv.ParseFloat(fields[4], 64)
		yp, err3 := strconv.ParseFloat(fields[5], 64)
		dut1, err4 := strconv.ParseFloat(fields[6], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			skipped++
			logger.Warn("skipping unparseable EOP line", "line", truncate(line, 40))
			continue
		}

		entries = append(entries, entry{
			mjd:  mjd,
			dut1: dut1,
			xp:   xp * arcsecToRad,
			yp:   yp * arcsecToRad,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading EOP data: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no usable EOP entries found")
	}
	if skipped > 0 {
		logger.Warn("skipped malformed EOP lines", "count", skipped)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].mjd < entries[j].mjd })
	return &Table{entries: entries}, nil
}

// Load opens and parses an EOP data file from disk.
func Load(path string, logger *slog.Logger) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening EOP file: %w", err)
	}
	defer f.Close()

	table, err := Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return table, nil
}

// Len returns the number of daily entries in the table.
func (t *Table) Len() int { return len(t.entries) }

// Span returns the first and last instants covered by the table.
func (t *Table) Span() (time.Time, time.Time) {
	if len(t.entries) == 0 {
		return time.Time{}, time.Time{}
	}
	return timeOfMJD(t.entries[0].mjd), timeOfMJD(t.entries[len(t.entries)-1].mjd)
}

// At returns the Earth-orientation parameters at a time, interpolated
// linearly between the surrounding daily entries. Times outside the table's
// range are a hard error: extrapolated corrections would quietly corrupt the
// ground truth the run validates against.
func (t *Table) At(at time.Time) (Parameters, error) {
	mjd := mjdOf(at)
	n := len(t.entries)
	if n == 0 {
		return Parameters{}, fmt.Errorf("empty EOP table")
	}
	if mjd < t.entries[0].mjd || mjd > t.entries[n-1].mjd {
		first, last := t.Span()
		return Parameters{}, fmt.Errorf("time %s outside EOP table range [%s, %s]",
			at.UTC().Format(time.RFC3339),
			first.Format("2006-01-02"), last.Format("2006-01-02"))
	}

	i := sort.Search(n, func(i int) bool { return t.entries[i].mjd >= mjd })
	if t.entries[i].mjd == mjd {
		e := t.entries[i]
		return Parameters{DUT1: e.dut1, Xp: e.xp, Yp: e.yp}, nil
	}

	lo, hi := t.entries[i-1], t.entries[i]
	span := hi.mjd - lo.mjd
	if span == 0 {
		return Parameters{DUT1: lo.dut1, Xp: lo.xp, Yp: lo.yp}, nil
	}
	f := (mjd - lo.mjd) / span
	return Parameters{
		DUT1: lo.dut1 + f*(hi.dut1-lo.dut1),
		Xp:   lo.xp + f*(hi.xp-lo.xp),
		Yp:   lo.yp + f*(hi.yp-lo.yp),
	}, nil
}

func mjdOf(t time.Time) float64 {
	return t.UTC().Sub(mjdEpoch).Seconds() / 86400.0
}

func timeOfMJD(mjd float64) time.Time {
	return mjdEpoch.Add(time.Duration(mjd * 86400.0 * float64(time.Second))).UTC()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
