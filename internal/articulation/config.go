package articulation

import (
	"math"
	"unicode"

	"Cadence/internal/domain"
)

// SegmentationConfig bounds segment sizes and names the boundary sets the
// segmenter splits on. Lengths are rune counts. The value is treated as pure
// data: constructors copy it and never mutate it.
type SegmentationConfig struct {
	MinSegmentLength int
	MaxSegmentLength int
	// TerminalMarks end sentences; consecutive marks (ellipsis runs, "?!")
	// group into a single boundary.
	TerminalMarks []rune
	// Connectives are secondary boundaries for length-driven splits: clause
	// marks (kept with the left half) and connective words (starting the
	// right half).
	Connectives []string
}

// DefaultSegmentationConfig mirrors the reference deployment.
func DefaultSegmentationConfig() SegmentationConfig {
	return SegmentationConfig{
		MinSegmentLength: 10,
		MaxSegmentLength: 50,
		TerminalMarks:    []rune{'。', '！', '？', '.', '!', '?', '…'},
		Connectives: []string{
			"，", "、", "；", "：", ",", ";",
			"但是", "不过", "可是", "所以", "因为", "而且", "然后", "如果",
			" but ", " and ", " so ", " because ", " then ", " though ",
		},
	}
}

func (c SegmentationConfig) validate() error {
	if c.MinSegmentLength <= 0 {
		return &domain.ConfigurationError{Field: "minSegmentLength", Reason: "must be positive"}
	}
	if c.MaxSegmentLength <= 0 {
		return &domain.ConfigurationError{Field: "maxSegmentLength", Reason: "must be positive"}
	}
	if c.MinSegmentLength >= c.MaxSegmentLength {
		return &domain.ConfigurationError{Field: "minSegmentLength", Reason: "must be smaller than maxSegmentLength"}
	}
	if len(c.TerminalMarks) == 0 {
		return &domain.ConfigurationError{Field: "terminalMarks", Reason: "must not be empty"}
	}
	for _, entry := range c.Connectives {
		if entry == "" {
			return &domain.ConfigurationError{Field: "connectives", Reason: "contains an empty entry"}
		}
	}
	if len(c.Connectives) == 0 {
		return &domain.ConfigurationError{Field: "connectives", Reason: "must not be empty"}
	}
	return nil
}

// RhythmConfig tunes typing speed and hesitation pauses.
type RhythmConfig struct {
	BaseWordsPerMinute   float64
	HesitationBase       float64 // seconds
	HesitationMultiplier float64
}

// DefaultRhythmConfig mirrors the reference deployment.
func DefaultRhythmConfig() RhythmConfig {
	return RhythmConfig{
		BaseWordsPerMinute:   60,
		HesitationBase:       0.5,
		HesitationMultiplier: 1.5,
	}
}

func (c RhythmConfig) validate() error {
	if c.BaseWordsPerMinute <= 0 || math.IsNaN(c.BaseWordsPerMinute) || math.IsInf(c.BaseWordsPerMinute, 0) {
		return &domain.ConfigurationError{Field: "baseWordsPerMinute", Reason: "must be positive and finite"}
	}
	if c.HesitationBase < 0 || math.IsNaN(c.HesitationBase) {
		return &domain.ConfigurationError{Field: "hesitationBase", Reason: "must not be negative"}
	}
	if c.HesitationMultiplier < 0 || math.IsNaN(c.HesitationMultiplier) {
		return &domain.ConfigurationError{Field: "hesitationMultiplier", Reason: "must not be negative"}
	}
	return nil
}

// isMarkEntry reports whether a connective entry is pure punctuation (a
// clause mark) as opposed to a connective word.
func isMarkEntry(entry string) bool {
	for _, r := range entry {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
