package ports

import (
	"context"
	"time"

	"Cadence/internal/domain"
)

// Responder produces the assistant reply text for one user turn.
type Responder interface {
	Name() string
	Respond(ctx context.Context, history []domain.ChatMessage, affect domain.AffectState, userText string) (string, error)
}

// Appraiser reads an affect impulse out of user text.
type Appraiser interface {
	Appraise(ctx context.Context, text string) (domain.AffectImpulse, error)
}

// Flattener normalizes model output (markdown, HTML) to plain chat text.
type Flattener interface {
	Flatten(markup string) (string, error)
}

// TranscriptRepository journals turns, their action streams, and affect samples.
type TranscriptRepository interface {
	SaveTurn(ctx context.Context, turn domain.Turn) error
	SaveActions(ctx context.Context, turnID string, actions domain.ActionSequence) error
	SaveAffectSample(ctx context.Context, sample domain.AffectSample) error
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)
	AffectHistory(ctx context.Context, sessionID string, limit int) ([]domain.AffectSample, error)
}

// Scheduler controls when recurring maintenance jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
