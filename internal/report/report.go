// Package report renders the final run summary: per-offset error statistics
// followed by the timing comparison between the two conversion paths.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/greyskyy/fast-eci/internal/agg"
	"github.com/greyskyy/fast-eci/internal/eval"
)

// Write renders the report to w. Rows arrive already ordered by offset.
func Write(w io.Writer, rows []agg.OffsetStats, timings eval.Timings) error {
	var b strings.Builder

	for _, row := range rows {
		fmt.Fprintf(&b, "Delta time %gs (n=%d)\n", row.DeltaTime, row.Pos.N)
		fmt.Fprintf(&b, "  posErr (m):   %.6g (stddev: %.6g)\n", row.Pos.Mean, row.Pos.StdDev)
		fmt.Fprintf(&b, "  velErr (m/s): %.6g (stddev: %.6g)\n", row.VelMag.Mean, row.VelMag.StdDev)
		fmt.Fprintf(&b, "  velErr (deg): %.6g (stddev: %.6g)\n", row.VelAng.Mean, row.VelAng.StdDev)
	}

	b.WriteString("\n")
	b.WriteString("Total time:\n")
	fmt.Fprintf(&b, "  high-fidelity computation: %.6f seconds\n", timings.Actual.Seconds())
	fmt.Fprintf(&b, "  estimated computation:     %.6f seconds\n", timings.Estimated.Seconds())

	// Guard the division: a run whose exact path never accumulated time has
	// no meaningful speedup to report.
	if timings.Actual <= 0 {
		b.WriteString("Percent improvement: n/a (no samples timed)\n")
	} else {
		pct := 100.0 * (timings.Actual - timings.Estimated).Seconds() / timings.Actual.Seconds()
		fmt.Fprintf(&b, "Percent improvement: %.1f%%\n", pct)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
