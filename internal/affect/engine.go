package affect

import (
	"math"
	"time"

	"Cadence/internal/domain"
)

// Half-lives in seconds. PAD dimensions decay toward neutral, the two
// chemistry levels toward their baselines.
const (
	pleasureHalfLife  = 3600.0
	arousalHalfLife   = 1800.0
	dominanceHalfLife = 2700.0
	dopamineHalfLife  = 300.0
	cortisolHalfLife  = 600.0

	dopamineBaseline = 0.5
	cortisolBaseline = 0.3

	dopamineGain = 0.1
	cortisolGain = 0.1
)

// Engine evolves one conversation's mood over time: exponential decay
// between turns plus appraisal impulses on top. Not safe for concurrent
// use; the session owning it serializes access.
type Engine struct {
	state      domain.AffectState
	dopamine   float64
	cortisol   float64
	lastUpdate time.Time
}

// NewEngine starts neutral with baseline chemistry.
func NewEngine(now time.Time) *Engine {
	return &Engine{
		dopamine:   dopamineBaseline,
		cortisol:   cortisolBaseline,
		lastUpdate: now,
	}
}

// Apply decays the state to now, adds the impulse, couples chemistry to it
// and returns the resulting snapshot. Positive pleasure feeds dopamine;
// any arousal swing feeds cortisol.
func (e *Engine) Apply(now time.Time, impulse domain.AffectImpulse) domain.AffectState {
	e.decayTo(now)

	e.state.Pleasure = clamp(e.state.Pleasure+impulse.Pleasure, -1, 1)
	e.state.Arousal = clamp(e.state.Arousal+impulse.Arousal, -1, 1)
	e.state.Dominance = clamp(e.state.Dominance+impulse.Dominance, -1, 1)

	if impulse.Pleasure > 0 {
		e.dopamine = clamp(e.dopamine+impulse.Pleasure*dopamineGain, 0, 1)
	}
	if impulse.Arousal != 0 {
		e.cortisol = clamp(e.cortisol+math.Abs(impulse.Arousal)*cortisolGain, 0, 1)
	}

	return e.state
}

// Snapshot returns the state decayed to now without recording an update.
func (e *Engine) Snapshot(now time.Time) domain.AffectState {
	elapsed := now.Sub(e.lastUpdate).Seconds()
	if elapsed <= 0 {
		return e.state
	}
	return domain.AffectState{
		Pleasure:  decay(e.state.Pleasure, 0, pleasureHalfLife, elapsed),
		Arousal:   decay(e.state.Arousal, 0, arousalHalfLife, elapsed),
		Dominance: decay(e.state.Dominance, 0, dominanceHalfLife, elapsed),
	}
}

// Dopamine reports the current dopamine level in [0, 1].
func (e *Engine) Dopamine() float64 { return e.dopamine }

// Cortisol reports the current cortisol level in [0, 1].
func (e *Engine) Cortisol() float64 { return e.cortisol }

func (e *Engine) decayTo(now time.Time) {
	elapsed := now.Sub(e.lastUpdate).Seconds()
	if elapsed <= 0 {
		return
	}
	e.state.Pleasure = decay(e.state.Pleasure, 0, pleasureHalfLife, elapsed)
	e.state.Arousal = decay(e.state.Arousal, 0, arousalHalfLife, elapsed)
	e.state.Dominance = decay(e.state.Dominance, 0, dominanceHalfLife, elapsed)
	e.dopamine = decay(e.dopamine, dopamineBaseline, dopamineHalfLife, elapsed)
	e.cortisol = decay(e.cortisol, cortisolBaseline, cortisolHalfLife, elapsed)
	e.lastUpdate = now
}

func decay(value, baseline, halfLife, elapsed float64) float64 {
	return baseline + (value-baseline)*math.Pow(0.5, elapsed/halfLife)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
