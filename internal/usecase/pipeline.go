package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"Cadence/internal/articulation"
	"Cadence/internal/domain"
	"Cadence/internal/ports"
	"Cadence/internal/session"
)

// PipelineDeps wires all driven adapters into the conversation pipeline.
type PipelineDeps struct {
	Sessions    *session.Manager
	Appraiser   ports.Appraiser
	Responder   ports.Responder
	Flattener   ports.Flattener
	Repository  ports.TranscriptRepository
	Articulator *articulation.Articulator
	Logger      *slog.Logger

	EnableTiming  bool
	LogDeliveries bool
}

// Pipeline implements the turn workflow: appraise the incoming line, move
// the session's mood, generate and flatten a reply, articulate it into a
// timed action stream, and play that stream against the channel sink while
// journaling the exchange.
type Pipeline struct {
	sessions    *session.Manager
	appraiser   ports.Appraiser
	responder   ports.Responder
	flattener   ports.Flattener
	repository  ports.TranscriptRepository
	articulator *articulation.Articulator
	logger      *slog.Logger

	enableTiming  bool
	logDeliveries bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		sessions:      deps.Sessions,
		appraiser:     deps.Appraiser,
		responder:     deps.Responder,
		flattener:     deps.Flattener,
		repository:    deps.Repository,
		articulator:   deps.Articulator,
		logger:        deps.Logger,
		enableTiming:  deps.EnableTiming,
		logDeliveries: deps.LogDeliveries,
	}
}

// TurnResult reports one processed exchange.
type TurnResult struct {
	TurnID    string
	SessionID string
	Reply     string
	Affect    domain.AffectState
	Actions   domain.ActionSequence
	Execution articulation.ExecutionResult
}

// ProcessTurn runs one exchange end to end. The playback outcome, including
// Cancelled and Failed, is reported inside the result; the returned error
// covers generation failures only. Journal failures are logged and do not
// fail the turn.
func (p *Pipeline) ProcessTurn(ctx context.Context, sessionID, userText string, sink articulation.Sink) (TurnResult, error) {
	now := time.Now()
	sess := p.sessions.GetOrCreate(sessionID, now)

	impulse, err := p.appraiser.Appraise(ctx, userText)
	if err != nil {
		return TurnResult{}, fmt.Errorf("appraise turn: %w", err)
	}
	affect := sess.ApplyImpulse(now, impulse)

	history := sess.History()
	reply, err := p.responder.Respond(ctx, history, affect, userText)
	if err != nil {
		return TurnResult{}, fmt.Errorf("generate reply: %w", err)
	}

	flat := reply
	if p.flattener != nil {
		flat, err = p.flattener.Flatten(reply)
		if err != nil {
			return TurnResult{}, fmt.Errorf("flatten reply: %w", err)
		}
	}

	turnID := uuid.NewString()
	actions, err := p.articulator.Articulate(flat, affect, map[string]any{
		"session": sess.ID,
		"turn":    turnID,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("articulate reply: %w", err)
	}

	executor := articulation.NewExecutor(articulation.Options{
		EnableTiming:  p.enableTiming,
		EnableLogging: p.logDeliveries,
		Logger:        p.logger,
	})
	execution, err := executor.Execute(ctx, actions, sink)
	if err != nil {
		return TurnResult{}, fmt.Errorf("execute stream: %w", err)
	}

	sess.Append(domain.ChatMessage{Role: domain.RoleUser, Text: userText, At: now})
	sess.Append(domain.ChatMessage{Role: domain.RoleAssistant, Text: flat, At: time.Now()})

	p.journal(context.WithoutCancel(ctx), sess, domain.Turn{
		ID:        turnID,
		SessionID: sess.ID,
		UserText:  userText,
		ReplyText: flat,
		Affect:    affect,
		CreatedAt: now,
	}, actions)

	return TurnResult{
		TurnID:    turnID,
		SessionID: sess.ID,
		Reply:     flat,
		Affect:    affect,
		Actions:   actions,
		Execution: execution,
	}, nil
}

func (p *Pipeline) journal(ctx context.Context, sess *session.Session, turn domain.Turn, actions domain.ActionSequence) {
	if p.repository == nil {
		return
	}

	if err := p.repository.SaveTurn(ctx, turn); err != nil {
		p.logger.Error("journal turn failed", "turn", turn.ID, "error", err)
		return
	}
	if err := p.repository.SaveActions(ctx, turn.ID, actions); err != nil {
		p.logger.Error("journal actions failed", "turn", turn.ID, "error", err)
	}

	dopamine, cortisol := sess.Chemistry()
	sample := domain.AffectSample{
		SessionID: sess.ID,
		State:     turn.Affect,
		Dopamine:  dopamine,
		Cortisol:  cortisol,
		CreatedAt: turn.CreatedAt,
	}
	if err := p.repository.SaveAffectSample(ctx, sample); err != nil {
		p.logger.Error("journal affect sample failed", "session", sess.ID, "error", err)
	}
}
