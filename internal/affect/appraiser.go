package affect

import (
	"context"
	"strings"

	"Cadence/internal/domain"
	"Cadence/internal/ports"
)

// Rule maps trigger keywords to the impulse they contribute.
type Rule struct {
	Keywords []string
	Impulse  domain.AffectImpulse
}

// DefaultRules is the built-in appraisal table. Matching is a
// case-insensitive substring scan, so CJK keywords need no tokenizer.
func DefaultRules() []Rule {
	return []Rule{
		{Keywords: []string{"happy", "joy", "love", "good", "开心"}, Impulse: domain.AffectImpulse{Pleasure: 0.3}},
		{Keywords: []string{"sad", "angry", "hate", "bad", "难过", "生气"}, Impulse: domain.AffectImpulse{Pleasure: -0.3}},
		{Keywords: []string{"exciting", "surprise", "wow"}, Impulse: domain.AffectImpulse{Arousal: 0.3}},
		{Keywords: []string{"calm", "relax", "peace"}, Impulse: domain.AffectImpulse{Arousal: -0.2}},
		{Keywords: []string{"tired", "exhausted", "累"}, Impulse: domain.AffectImpulse{Pleasure: -0.1, Arousal: -0.2}},
		{Keywords: []string{"confident", "control", "power"}, Impulse: domain.AffectImpulse{Dominance: 0.2}},
		{Keywords: []string{"helpless", "weak", "scared", "害怕"}, Impulse: domain.AffectImpulse{Dominance: -0.2}},
	}
}

// KeywordAppraiser derives impulses from keyword hits. It is the local,
// offline appraisal path; the remote inference client is the other.
type KeywordAppraiser struct {
	rules []Rule
}

var _ ports.Appraiser = (*KeywordAppraiser)(nil)

// NewKeywordAppraiser builds an appraiser; nil rules select the defaults.
func NewKeywordAppraiser(rules []Rule) *KeywordAppraiser {
	if rules == nil {
		rules = DefaultRules()
	}
	return &KeywordAppraiser{rules: rules}
}

// Appraise sums the impulses of every keyword present in the text. Each
// keyword counts once no matter how often it repeats.
func (a *KeywordAppraiser) Appraise(_ context.Context, text string) (domain.AffectImpulse, error) {
	lowered := strings.ToLower(text)

	var impulse domain.AffectImpulse
	for _, rule := range a.rules {
		for _, keyword := range rule.Keywords {
			if !strings.Contains(lowered, keyword) {
				continue
			}
			impulse.Pleasure += rule.Impulse.Pleasure
			impulse.Arousal += rule.Impulse.Arousal
			impulse.Dominance += rule.Impulse.Dominance
		}
	}
	return impulse, nil
}
