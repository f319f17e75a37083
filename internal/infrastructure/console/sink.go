package console

import (
	"context"
	"fmt"
	"io"
	"sync"

	"Cadence/internal/articulation"
	"Cadence/internal/domain"
)

// Sink renders an action stream as terminal output. Message actions print
// as plain lines; with markers enabled, suspension actions print a short
// bracketed note so a captured transcript keeps the pacing visible.
type Sink struct {
	mu      sync.Mutex
	out     io.Writer
	markers bool
}

var _ articulation.Sink = (*Sink)(nil)

// New wraps a writer. markers controls whether non-message actions are
// rendered at all.
func New(out io.Writer, markers bool) *Sink {
	return &Sink{out: out, markers: markers}
}

func (s *Sink) Deliver(_ context.Context, action domain.ActionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action.Kind == domain.ActionMessage {
		if _, err := fmt.Fprintln(s.out, action.Content); err != nil {
			return fmt.Errorf("write message: %w", err)
		}
		return nil
	}
	if !s.markers {
		return nil
	}
	if _, err := fmt.Fprintf(s.out, "[%s %.1fs]\n", action.Kind, action.Duration.Seconds()); err != nil {
		return fmt.Errorf("write marker: %w", err)
	}
	return nil
}
