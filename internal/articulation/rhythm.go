package articulation

import (
	"math"
	"time"
	"unicode"

	"Cadence/internal/domain"
)

// Timing is the rhythm verdict for one segment.
type Timing struct {
	Typing  time.Duration
	PreSend time.Duration
}

// RhythmEngine maps (segment, affect) to a typing duration and a pre-send
// hesitation pause. Pure and safe for concurrent use.
type RhythmEngine struct {
	cfg RhythmConfig
}

// NewRhythmEngine validates the configuration eagerly.
func NewRhythmEngine(cfg RhythmConfig) (*RhythmEngine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &RhythmEngine{cfg: cfg}, nil
}

// Compute derives the typing duration from the segment's word count and the
// arousal-keyed speed multiplier, and the pre-send pause from dominance:
// the less self-assured the state, the longer the hesitation.
func (r *RhythmEngine) Compute(segment domain.Segment, affect domain.AffectState) (Timing, error) {
	if err := affect.Validate(); err != nil {
		return Timing{}, err
	}

	words := float64(countWords(segment.Text))
	typingSeconds := words / (r.cfg.BaseWordsPerMinute * speedMultiplier(affect.Arousal)) * 60

	pauseSeconds := r.cfg.HesitationBase * r.cfg.HesitationMultiplier * clamp(1-affect.Dominance, 0, 2) / 2
	if pauseSeconds < 0 {
		pauseSeconds = 0
	}

	return Timing{
		Typing:  secondsToDuration(typingSeconds),
		PreSend: secondsToDuration(pauseSeconds),
	}, nil
}

// speedMultiplier steps between the two anchor points: excited states type
// faster, low-energy states slower. Monotone in arousal.
func speedMultiplier(arousal float64) float64 {
	switch {
	case arousal > 0.5:
		return 1.5
	case arousal < 0:
		return 0.8
	default:
		return 1.0
	}
}

// countWords treats each CJK rune as one word and every contiguous run of
// letters or digits as one word; CJK text carries no space-delimited words.
func countWords(text string) int {
	words := 0
	inRun := false
	for _, r := range text {
		switch {
		case isCJK(r):
			words++
			inRun = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inRun {
				words++
				inRun = true
			}
		default:
			inRun = false
		}
	}
	return words
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
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

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
