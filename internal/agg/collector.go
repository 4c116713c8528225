// Package agg pools per-offset error samples across reference epochs and
// reduces them to summary statistics.
package agg

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/greyskyy/fast-eci/internal/eval"
)

// Collector accumulates error samples, bucketed by the exact offset value.
// Equal offsets from different reference epochs land in the same bucket and
// count as repeated trials of the same horizon.
//
// Samples are stored raw and reduced only when Stats is called, so the
// resulting statistics are independent of insertion order.
type Collector struct {
	buckets map[float64]*bucket
}

type bucket struct {
	pos    []float64
	velMag []float64
	velAng []float64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{buckets: make(map[float64]*bucket)}
}

// Add records one sample into its offset bucket.
func (c *Collector) Add(s eval.Sample) {
	b := c.buckets[s.DeltaTime]
	if b == nil {
		b = &bucket{}
		c.buckets[s.DeltaTime] = b
	}
	b.pos = append(b.pos, s.PosError)
	b.velMag = append(b.velMag, s.VelMagError)
	b.velAng = append(b.velAng, s.VelAngError)
}

// AddAll records a batch of samples.
func (c *Collector) AddAll(samples []eval.Sample) {
	for _, s := range samples {
		c.Add(s)
	}
}

// Len returns the number of distinct offset buckets.
func (c *Collector) Len() int { return len(c.buckets) }

// Summary holds the pooled mean and sample standard deviation of one error
// series.
type Summary struct {
	Mean   float64
	StdDev float64
	N      int
}

// OffsetStats is the reduced statistics for one offset bucket: one row of
// the final report.
type OffsetStats struct {
	DeltaTime float64
	Pos       Summary
	VelMag    Summary
	VelAng    Summary
}

// Stats reduces every bucket and returns the rows in ascending offset order.
func (c *Collector) Stats() []OffsetStats {
	keys := make([]float64, 0, len(c.buckets))
	for k := range c.buckets {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	rows := make([]OffsetStats, 0, len(keys))
	for _, k := range keys {
		b := c.buckets[k]
		rows = append(rows, OffsetStats{
			DeltaTime: k,
			Pos:       summarize(b.pos),
			VelMag:    summarize(b.velMag),
			VelAng:    summarize(b.velAng),
		})
	}
	return rows
}

// summarize reduces one series. A single-value series has, by convention, a
// standard deviation of zero rather than the library's NaN.
func summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{N: n}
	}
	if n == 1 {
		return Summary{Mean: mean, N: 1}
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return Summary{Mean: mean, N: n}
	}
	return Summary{Mean: mean, StdDev: sd, N: n}
}
