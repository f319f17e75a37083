package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// ActionKind tags a presentation action.
type ActionKind string

const (
	ActionTyping  ActionKind = "typing"
	ActionMessage ActionKind = "message"
	ActionWait    ActionKind = "wait"
	// ActionThinking is reserved for pipeline extensions; Articulate never emits it.
	ActionThinking ActionKind = "thinking"
)

var (
	kindsMu    sync.RWMutex
	knownKinds = map[ActionKind]struct{}{
		ActionTyping:   {},
		ActionMessage:  {},
		ActionWait:     {},
		ActionThinking: {},
	}
)

// RegisterActionKind admits an extension kind so decoding and sinks accept it.
func RegisterActionKind(kind ActionKind) error {
	if strings.TrimSpace(string(kind)) == "" {
		return fmt.Errorf("action kind is empty")
	}
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if _, ok := knownKinds[kind]; ok {
		return fmt.Errorf("action kind %s is already registered", kind)
	}
	knownKinds[kind] = struct{}{}
	return nil
}

// KnownActionKind reports whether a kind is built in or registered.
func KnownActionKind(kind ActionKind) bool {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	_, ok := knownKinds[kind]
	return ok
}

// ActionEvent is a single presentation action. Content is meaningful only
// for messages; Duration is the action's time cost (zero for messages).
// Metadata carries caller annotations the engine never inspects.
type ActionEvent struct {
	Kind     ActionKind
	Content  string
	Duration time.Duration
	Metadata map[string]any
}

type actionWire struct {
	Type     string         `json:"type"`
	Content  string         `json:"content,omitempty"`
	Duration float64        `json:"duration"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MarshalJSON encodes the stable wire form: kind under "type", duration in
// seconds, content only for messages.
func (e ActionEvent) MarshalJSON() ([]byte, error) {
	w := actionWire{
		Type:     string(e.Kind),
		Duration: e.Duration.Seconds(),
		Metadata: e.Metadata,
	}
	if e.Kind == ActionMessage {
		w.Content = e.Content
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire form, rejecting unknown kinds and negative
// durations. Seconds are rounded to the nearest nanosecond so a decoded
// event re-encodes to identical bytes.
func (e *ActionEvent) UnmarshalJSON(data []byte) error {
	var w actionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode action: %w", err)
	}
	kind := ActionKind(w.Type)
	if !KnownActionKind(kind) {
		return fmt.Errorf("unknown action kind %q", w.Type)
	}
	if w.Duration < 0 || math.IsNaN(w.Duration) {
		return fmt.Errorf("action %s has invalid duration %g", w.Type, w.Duration)
	}
	e.Kind = kind
	e.Content = w.Content
	e.Duration = time.Duration(math.Round(w.Duration * float64(time.Second)))
	e.Metadata = w.Metadata
	return nil
}

// ActionSequence is the ordered action stream produced by one Articulate
// call. Every message is immediately preceded by exactly one typing action;
// waits appear only between a message and the next typing.
type ActionSequence []ActionEvent

// Messages returns the message contents in delivery order.
func (s ActionSequence) Messages() []string {
	var out []string
	for _, a := range s {
		if a.Kind == ActionMessage {
			out = append(out, a.Content)
		}
	}
	return out
}

// PlayTime is the total declared duration of the sequence.
func (s ActionSequence) PlayTime() time.Duration {
	var total time.Duration
	for _, a := range s {
		total += a.Duration
	}
	return total
}
