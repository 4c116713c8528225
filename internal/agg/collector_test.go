package agg

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greyskyy/fast-eci/internal/eval"
)

func sample(dt, pos, velMag, velAng float64) eval.Sample {
	return eval.Sample{DeltaTime: dt, PosError: pos, VelMagError: velMag, VelAngError: velAng}
}

func TestCollectorBucketsByOffset(t *testing.T) {
	c := NewCollector()
	c.Add(sample(0, 1, 0.1, 0.01))
	c.Add(sample(30, 2, 0.2, 0.02))
	c.Add(sample(30, 4, 0.4, 0.04))

	require.Equal(t, 2, c.Len())

	rows := c.Stats()
	require.Len(t, rows, 2)

	assert.Equal(t, 0.0, rows[0].DeltaTime)
	assert.Equal(t, 1, rows[0].Pos.N)
	assert.Equal(t, 1.0, rows[0].Pos.Mean)

	assert.Equal(t, 30.0, rows[1].DeltaTime)
	assert.Equal(t, 2, rows[1].Pos.N)
	assert.InDelta(t, 3.0, rows[1].Pos.Mean, 1e-12)
	assert.InDelta(t, 0.3, rows[1].VelMag.Mean, 1e-12)
}

// TestCollectorMeanAndStdDev pins the reduction on a hand-checked series:
// 2, 3, 4 has mean 3 and sample standard deviation 1.
func TestCollectorMeanAndStdDev(t *testing.T) {
	c := NewCollector()
	for _, v := range []float64{2, 3, 4} {
		c.Add(sample(30, v, v*10, v/10))
	}

	rows := c.Stats()
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, 3, row.Pos.N)
	assert.InDelta(t, 3.0, row.Pos.Mean, 1e-12)
	assert.InDelta(t, 1.0, row.Pos.StdDev, 1e-12)
	assert.InDelta(t, 30.0, row.VelMag.Mean, 1e-12)
	assert.InDelta(t, 10.0, row.VelMag.StdDev, 1e-12)
	assert.InDelta(t, 0.3, row.VelAng.Mean, 1e-12)
	assert.InDelta(t, 0.1, row.VelAng.StdDev, 1e-12)
}

// TestCollectorOrderIndependent feeds the same samples in shuffled orders
// and requires identical statistics: pooling must not depend on insertion
// order.
func TestCollectorOrderIndependent(t *testing.T) {
	// Values are small integers over power-of-two denominators, so every
	// sum is exact and the reduced statistics must match bit for bit.
	samples := make([]eval.Sample, 0, 30)
	for epoch := 0; epoch < 5; epoch++ {
		for i := 0; i < 6; i++ {
			dt := float64(i) * 10
			samples = append(samples, sample(dt,
				dt*float64(epoch+1),
				dt/128*float64(epoch+1),
				dt/1024*float64(epoch+1)))
		}
	}

	reference := NewCollector()
	reference.AddAll(samples)
	want := reference.Stats()

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]eval.Sample, len(samples))
		copy(shuffled, samples)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		c := NewCollector()
		c.AddAll(shuffled)
		assert.Equal(t, want, c.Stats(), "trial %d", trial)
	}
}

// TestCollectorExactKeying verifies buckets key on the exact float value:
// offsets that differ by one ulp are distinct horizons, not noise to merge.
func TestCollectorExactKeying(t *testing.T) {
	a, b := 0.1, 0.2
	c := NewCollector()
	c.Add(sample(a+b, 1, 0, 0)) // 0.30000000000000004, one ulp above 0.3
	c.Add(sample(0.3, 2, 0, 0))

	require.Equal(t, 2, c.Len())

	rows := c.Stats()
	require.Len(t, rows, 2)
	assert.Equal(t, 0.3, rows[0].DeltaTime)
	assert.Equal(t, a+b, rows[1].DeltaTime)
	assert.Equal(t, 1, rows[0].Pos.N)
	assert.Equal(t, 1, rows[1].Pos.N)
}

func TestCollectorRowsAscending(t *testing.T) {
	c := NewCollector()
	for _, dt := range []float64{50, 0, 40, 10, 30, 20} {
		c.Add(sample(dt, 1, 1, 1))
	}

	rows := c.Stats()
	require.Len(t, rows, 6)
	for i := 1; i < len(rows); i++ {
		assert.Greater(t, rows[i].DeltaTime, rows[i-1].DeltaTime)
	}
}

func TestCollectorSingleValueStdDevZero(t *testing.T) {
	c := NewCollector()
	c.Add(sample(20, 7.5, 0.75, 0.075))

	rows := c.Stats()
	require.Len(t, rows, 1)

	assert.Equal(t, 1, rows[0].Pos.N)
	assert.Equal(t, 7.5, rows[0].Pos.Mean)
	assert.Zero(t, rows[0].Pos.StdDev)
	assert.Zero(t, rows[0].VelMag.StdDev)
	assert.Zero(t, rows[0].VelAng.StdDev)
}

func TestCollectorEmpty(t *testing.T) {
	c := NewCollector()
	assert.Zero(t, c.Len())
	assert.Empty(t, c.Stats())
}
