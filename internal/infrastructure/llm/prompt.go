package llm

import (
	"strings"

	"Cadence/internal/domain"
)

// BuildSystemPrompt assembles the system message: the persona followed by
// style directives derived from the current mood. Directives describe how
// to sound; the raw affect numbers are never exposed to the model.
func BuildSystemPrompt(persona string, affect domain.AffectState) string {
	var b strings.Builder
	b.WriteString(safePersona(persona))

	var directives []string
	switch {
	case affect.Pleasure > 0.3:
		directives = append(directives, "You are in a good mood; let warmth show in your wording.")
	case affect.Pleasure < -0.3:
		directives = append(directives, "You feel low; keep the tone subdued and honest, not cheerful.")
	}
	switch {
	case affect.Arousal > 0.5:
		directives = append(directives, "You feel energetic; respond with quick, lively phrasing.")
	case affect.Arousal < -0.3:
		directives = append(directives, "You feel drained; keep replies brief and unhurried.")
	}
	switch {
	case affect.Dominance > 0.3:
		directives = append(directives, "Speak with confidence and take the lead in the conversation.")
	case affect.Dominance < -0.3:
		directives = append(directives, "Sound tentative; hedge and defer rather than assert.")
	}

	if len(directives) > 0 {
		b.WriteString("\n\nCurrent state:\n")
		for _, d := range directives {
			b.WriteString("- ")
			b.WriteString(d)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func safePersona(persona string) string {
	persona = strings.TrimSpace(persona)
	if persona == "" {
		return "You are a warm, attentive chat companion. Keep replies short and conversational."
	}
	return persona
}
