package articulation

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"Cadence/internal/domain"
)

// ExecutionState tracks an executor through its lifecycle.
type ExecutionState int32

const (
	StateIdle ExecutionState = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s ExecutionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sink receives actions as the executor plays them. Delivery is a one-way,
// observable side effect: a delivered action is never rolled back.
type Sink interface {
	Deliver(ctx context.Context, action domain.ActionEvent) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(ctx context.Context, action domain.ActionEvent) error

func (f SinkFunc) Deliver(ctx context.Context, action domain.ActionEvent) error {
	return f(ctx, action)
}

// ErrExecutorUsed reports a second Execute call on a single-use executor.
var ErrExecutorUsed = errors.New("executor already used")

// Options tune how an executor plays a sequence. With timing disabled the
// sequence plays back-to-back, which keeps tests and transcript generation
// deterministic.
type Options struct {
	EnableTiming  bool
	EnableLogging bool
	Logger        *slog.Logger
}

// Executor plays one action sequence against a sink. Instances are single
// use: construct a fresh executor per sequence. Independent executions share
// no state and need no coordination.
type Executor struct {
	opts  Options
	state atomic.Int32
}

// NewExecutor builds an idle executor.
func NewExecutor(opts Options) *Executor {
	return &Executor{opts: opts}
}

// ExecutionResult reports how playback ended.
type ExecutionResult struct {
	State       ExecutionState
	Delivered   int
	FailedIndex int // -1 unless State is StateFailed
	Err         error
}

// Execute plays the sequence in order. With timing enabled it suspends for
// each action's duration before delivering it; cancellation is observed at
// every suspension and before every delivery, and ends playback with a
// Cancelled result counting the actions already delivered. A sink error ends
// playback with a Failed result naming the failing index; there is no retry.
// The returned error covers misuse only (nil sink, reuse), never outcomes.
func (e *Executor) Execute(ctx context.Context, seq domain.ActionSequence, sink Sink) (ExecutionResult, error) {
	if sink == nil {
		return ExecutionResult{State: e.State(), FailedIndex: -1}, errors.New("sink is nil")
	}
	if !e.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ExecutionResult{State: e.State(), FailedIndex: -1}, ErrExecutorUsed
	}

	result := ExecutionResult{FailedIndex: -1}
	for i, action := range seq {
		if ctx.Err() != nil {
			return e.finish(StateCancelled, result), nil
		}
		if e.opts.EnableTiming && action.Duration > 0 {
			if !suspend(ctx, action.Duration) {
				return e.finish(StateCancelled, result), nil
			}
		}
		e.logDelivery(i, action)
		if err := sink.Deliver(ctx, action); err != nil {
			result.FailedIndex = i
			result.Err = &domain.ExecutionError{Index: i, Err: err}
			return e.finish(StateFailed, result), nil
		}
		result.Delivered++
	}
	return e.finish(StateCompleted, result), nil
}

// State reports the executor's lifecycle state.
func (e *Executor) State() ExecutionState {
	return ExecutionState(e.state.Load())
}

func (e *Executor) finish(state ExecutionState, result ExecutionResult) ExecutionResult {
	e.state.Store(int32(state))
	result.State = state
	return result
}

func (e *Executor) logDelivery(index int, action domain.ActionEvent) {
	if !e.opts.EnableLogging || e.opts.Logger == nil {
		return
	}
	e.opts.Logger.Debug("deliver action",
		"index", index,
		"kind", string(action.Kind),
		"duration", action.Duration,
	)
}

// suspend waits out d unless the context is cancelled first; it reports
// whether the full duration elapsed.
func suspend(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
