package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestActionEventJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := ActionSequence{
		{Kind: ActionTyping, Duration: 2300 * time.Millisecond},
		{Kind: ActionMessage, Content: "你好！", Metadata: map[string]any{"segment_index": 0, "session": "s-1"}},
		{Kind: ActionWait, Duration: 675 * time.Millisecond},
		{Kind: ActionTyping, Duration: 6 * time.Second},
		{Kind: ActionMessage, Content: "plain ascii"},
	}

	first, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var decoded ActionSequence
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("decoded %d actions, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i].Kind != original[i].Kind {
			t.Fatalf("action %d kind %s, want %s", i, decoded[i].Kind, original[i].Kind)
		}
		if decoded[i].Duration != original[i].Duration {
			t.Fatalf("action %d duration %v, want %v", i, decoded[i].Duration, original[i].Duration)
		}
	}
	if decoded[1].Content != "你好！" {
		t.Fatalf("decoded content %q", decoded[1].Content)
	}

	second, err := json.Marshal(decoded)
	if err != nil {
		t.Fatalf("re-marshal error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip not stable:\n%s\n%s", first, second)
	}
}

func TestActionEventWireShape(t *testing.T) {
	t.Parallel()

	typing, err := json.Marshal(ActionEvent{Kind: ActionTyping, Content: "ignored", Duration: 1500 * time.Millisecond})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(typing, &wire); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if wire["type"] != "typing" {
		t.Fatalf("type = %v", wire["type"])
	}
	if _, ok := wire["content"]; ok {
		t.Fatalf("typing action leaked content: %s", typing)
	}
	if wire["duration"] != 1.5 {
		t.Fatalf("duration = %v, want seconds", wire["duration"])
	}

	message, err := json.Marshal(ActionEvent{Kind: ActionMessage, Content: "hi"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !strings.Contains(string(message), `"content":"hi"`) {
		t.Fatalf("message wire form missing content: %s", message)
	}
}

func TestActionEventDecodeRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	var event ActionEvent
	err := json.Unmarshal([]byte(`{"type":"sparkle","duration":0}`), &event)
	if err == nil || !strings.Contains(err.Error(), "sparkle") {
		t.Fatalf("expected unknown-kind error, got %v", err)
	}
}

func TestActionEventDecodeRejectsNegativeDuration(t *testing.T) {
	t.Parallel()

	var event ActionEvent
	err := json.Unmarshal([]byte(`{"type":"wait","duration":-0.5}`), &event)
	if err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestActionEventDecodeAcceptsThinking(t *testing.T) {
	t.Parallel()

	var event ActionEvent
	if err := json.Unmarshal([]byte(`{"type":"thinking","duration":1.25}`), &event); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if event.Kind != ActionThinking || event.Duration != 1250*time.Millisecond {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestRegisterActionKind(t *testing.T) {
	if err := RegisterActionKind("pondering"); err != nil {
		t.Fatalf("RegisterActionKind error: %v", err)
	}
	if !KnownActionKind("pondering") {
		t.Fatal("registered kind not known")
	}
	if err := RegisterActionKind("pondering"); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := RegisterActionKind(ActionTyping); err == nil {
		t.Fatal("expected error re-registering built-in kind")
	}
	if err := RegisterActionKind("  "); err == nil {
		t.Fatal("expected error for blank kind")
	}

	var event ActionEvent
	if err := json.Unmarshal([]byte(`{"type":"pondering","duration":0.5}`), &event); err != nil {
		t.Fatalf("decoding registered kind: %v", err)
	}
}

func TestActionSequenceHelpers(t *testing.T) {
	t.Parallel()

	seq := ActionSequence{
		{Kind: ActionTyping, Duration: time.Second},
		{Kind: ActionMessage, Content: "one"},
		{Kind: ActionWait, Duration: 500 * time.Millisecond},
		{Kind: ActionTyping, Duration: 2 * time.Second},
		{Kind: ActionMessage, Content: "two"},
	}

	messages := seq.Messages()
	if len(messages) != 2 || messages[0] != "one" || messages[1] != "two" {
		t.Fatalf("unexpected messages: %q", messages)
	}
	if got, want := seq.PlayTime(), 3500*time.Millisecond; got != want {
		t.Fatalf("play time %v, want %v", got, want)
	}
}
