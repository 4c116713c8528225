// Package orbit produces satellite state vectors from two-line element sets,
// expressed in any frame the frame engine knows.
package orbit

import (
	"fmt"
	"time"

	"github.com/greyskyy/fast-eci/internal/frame"
)

// Provider turns SGP4 output into state vectors in a requested frame. SGP4
// natively emits TEME; anything else goes through one exact engine transform.
type Provider struct {
	prop   *SGP4
	engine *frame.Engine
}

// NewProvider wires a propagator to a frame engine.
func NewProvider(prop *SGP4, engine *frame.Engine) *Provider {
	return &Provider{prop: prop, engine: engine}
}

// StateAt returns the satellite state at t expressed in frame f.
func (p *Provider) StateAt(t time.Time, f frame.Frame) (frame.StateVector, error) {
	pos, vel, err := p.prop.TEMEAt(t)
	if err != nil {
		return frame.StateVector{}, err
	}
	sv := frame.StateVector{Position: pos, Velocity: vel, Frame: frame.TEMEName, Time: t}
	if f.Name() == frame.TEMEName {
		return sv, nil
	}

	tx, err := p.engine.Transform(p.engine.TEME(), f, t)
	if err != nil {
		return frame.StateVector{}, fmt.Errorf("state in %s: %w", f.Name(), err)
	}
	return tx.Apply(sv), nil
}
