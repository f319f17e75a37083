package domain

import "math"

// AffectState is the PAD snapshot delivery pacing is keyed on: pleasure
// (displeasure..pleasure), arousal (calm..excited) and dominance
// (submissive..dominant), each in [-1, 1]. It is an immutable value; the
// engine never mutates or stores it.
type AffectState struct {
	Pleasure  float64
	Arousal   float64
	Dominance float64
}

// NewAffectState validates every dimension and rejects out-of-range values.
func NewAffectState(pleasure, arousal, dominance float64) (AffectState, error) {
	s := AffectState{Pleasure: pleasure, Arousal: arousal, Dominance: dominance}
	if err := s.Validate(); err != nil {
		return AffectState{}, err
	}
	return s, nil
}

// Validate checks each dimension against [-1, 1].
func (s AffectState) Validate() error {
	dims := []struct {
		name  string
		value float64
	}{
		{"pleasure", s.Pleasure},
		{"arousal", s.Arousal},
		{"dominance", s.Dominance},
	}
	for _, dim := range dims {
		if math.IsNaN(dim.value) || dim.value < -1 || dim.value > 1 {
			return &ValidationError{Dimension: dim.name, Value: dim.value}
		}
	}
	return nil
}

// AffectImpulse is a PAD delta produced by appraisal, applied on top of a
// decayed state by the affect engine.
type AffectImpulse struct {
	Pleasure  float64
	Arousal   float64
	Dominance float64
}

// IsZero reports whether the impulse carries no change.
func (i AffectImpulse) IsZero() bool {
	return i.Pleasure == 0 && i.Arousal == 0 && i.Dominance == 0
}
