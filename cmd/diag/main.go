// diag is a troubleshooting tool: it propagates the first entry of a TLE file
// and prints the state in every frame the engine knows, EOP corrections off.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/greyskyy/fast-eci/internal/frame"
	"github.com/greyskyy/fast-eci/internal/orbit"
	"github.com/greyskyy/fast-eci/internal/tle"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Fprintln(os.Stderr, "usage: diag <tle-file> [RFC3339-time]")
		os.Exit(2)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Println("ERROR reading TLE file:", err)
		os.Exit(1)
	}
	entries, err := tle.Parse(f, logger)
	f.Close()
	if err != nil {
		fmt.Println("ERROR parsing TLE:", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d TLE entries\n", len(entries))
	if len(entries) == 0 {
		fmt.Println("ERROR no usable TLE entries")
		os.Exit(1)
	}

	entry := entries[0]
	fmt.Printf("First entry: %s (NORAD %d) epoch %v\n", entry.Name, entry.NORADID, entry.Epoch)

	at := entry.Epoch.UTC().Truncate(time.Second)
	if len(os.Args) == 3 {
		at, err = time.Parse(time.RFC3339, os.Args[2])
		if err != nil {
			fmt.Println("ERROR parsing time:", err)
			os.Exit(1)
		}
	}

	prop, err := orbit.NewSGP4(entry.Line1, entry.Line2, entry.NORADID)
	if err != nil {
		fmt.Println("ERROR initializing propagator:", err)
		os.Exit(1)
	}

	engine := frame.NewEngine(nil, logger)
	provider := orbit.NewProvider(prop, engine)

	fmt.Printf("\nState at %s (no EOP corrections):\n", at.UTC().Format(time.RFC3339))
	for _, fr := range []frame.Frame{engine.TEME(), engine.GCRF(), engine.J2000(), engine.ITRF()} {
		sv, err := provider.StateAt(at, fr)
		if err != nil {
			fmt.Printf("  %-5s ERROR %v\n", fr.Name(), err)
			continue
		}
		fmt.Printf("  %-5s pos=[%.1f %.1f %.1f]m  |r|=%.3fkm  vel=[%.3f %.3f %.3f]m/s\n",
			fr.Name(),
			sv.Position.X, sv.Position.Y, sv.Position.Z, r3.Norm(sv.Position)/1000,
			sv.Velocity.X, sv.Velocity.Y, sv.Velocity.Z)
	}

	fmt.Printf("\nGMST at %s: %.6f deg\n", at.UTC().Format(time.RFC3339), frame.GMST(at)*180/math.Pi)
}
