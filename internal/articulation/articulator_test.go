package articulation

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"Cadence/internal/domain"
)

func mustArticulator(t *testing.T) *Articulator {
	t.Helper()
	a, err := New(DefaultSegmentationConfig(), DefaultRhythmConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

// checkShape walks a sequence and verifies the structural rules every
// articulated stream must hold: a typing run before each message, waits
// only between messages, and no negative durations anywhere.
func checkShape(t *testing.T, seq domain.ActionSequence) {
	t.Helper()
	for i, action := range seq {
		if action.Duration < 0 {
			t.Fatalf("action %d has negative duration %v", i, action.Duration)
		}
		switch action.Kind {
		case domain.ActionTyping:
			if i == len(seq)-1 || seq[i+1].Kind != domain.ActionMessage {
				t.Fatalf("typing at %d not followed by a message", i)
			}
		case domain.ActionMessage:
			if i == 0 || seq[i-1].Kind != domain.ActionTyping {
				t.Fatalf("message at %d not preceded by typing", i)
			}
			if action.Duration != 0 {
				t.Fatalf("message at %d carries duration %v", i, action.Duration)
			}
		case domain.ActionWait:
			if i == 0 || seq[i-1].Kind != domain.ActionMessage {
				t.Fatalf("wait at %d does not follow a message", i)
			}
			if i == len(seq)-1 || seq[i+1].Kind != domain.ActionTyping {
				t.Fatalf("wait at %d is not followed by typing", i)
			}
		default:
			t.Fatalf("unexpected action kind %q at %d", action.Kind, i)
		}
	}
}

func TestArticulateEmptyText(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)

	for _, text := range []string{"", "  \n\t "} {
		seq, err := a.Articulate(text, domain.AffectState{}, nil)
		if err != nil {
			t.Fatalf("Articulate(%q) error: %v", text, err)
		}
		if len(seq) != 0 {
			t.Fatalf("Articulate(%q) produced %d actions, want 0", text, len(seq))
		}
	}
}

func TestArticulateSingleSegment(t *testing.T) {
	t.Parallel()

	segCfg := DefaultSegmentationConfig()
	segCfg.MinSegmentLength = 2
	a, err := New(segCfg, DefaultRhythmConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	seq, err := a.Articulate("好", domain.AffectState{Pleasure: 0.3, Arousal: 0.1, Dominance: 0.2}, nil)
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("expected [typing, message], got %d actions", len(seq))
	}
	if seq[0].Kind != domain.ActionTyping {
		t.Fatalf("first action is %s", seq[0].Kind)
	}
	if seq[0].Duration <= 0 {
		t.Fatalf("typing duration %v not positive", seq[0].Duration)
	}
	if seq[1].Kind != domain.ActionMessage || seq[1].Content != "好" {
		t.Fatalf("unexpected message action: %+v", seq[1])
	}
}

func TestArticulateHesitantChinese(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)
	affect := domain.AffectState{Pleasure: -0.5, Arousal: 0.8, Dominance: -0.8}

	seq, err := a.Articulate("那个，我其实不太想去，因为最近真的太累了...下次吧？", affect, nil)
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}
	checkShape(t, seq)

	messages := seq.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d: %q", len(messages), messages)
	}
	if messages[0] != "那个，我其实不太想去，" || messages[1] != "因为最近真的太累了...下次吧？" {
		t.Fatalf("unexpected chunking: %q", messages)
	}

	var waits int
	for _, action := range seq {
		if action.Kind == domain.ActionWait {
			waits++
			if !durationNear(action.Duration, 675*time.Millisecond, time.Millisecond) {
				t.Fatalf("wait duration %v, want ~675ms", action.Duration)
			}
		}
	}
	if waits != 1 {
		t.Fatalf("expected exactly one wait, got %d", waits)
	}

	// Nine words at 60 wpm sped up 1.5x come to six seconds of typing.
	if !durationNear(seq[0].Duration, 6*time.Second, time.Millisecond) {
		t.Fatalf("first typing duration %v, want ~6s", seq[0].Duration)
	}
}

func TestArticulateShape(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)

	texts := []string{
		"你好！今天过得怎么样？我这边一切都好，就是有点忙。",
		"First thought. Second thought, with a twist! And a third one?",
		strings.Repeat("字", 120),
	}
	affects := []domain.AffectState{
		{},
		{Pleasure: 0.9, Arousal: 0.9, Dominance: 0.9},
		{Pleasure: -0.9, Arousal: -0.9, Dominance: -0.9},
		{Arousal: 0.7, Dominance: -1},
	}

	for _, text := range texts {
		for _, affect := range affects {
			seq, err := a.Articulate(text, affect, nil)
			if err != nil {
				t.Fatalf("Articulate(%q) error: %v", text, err)
			}
			checkShape(t, seq)
			if len(seq.Messages()) == 0 {
				t.Fatalf("no messages articulated for %q", text)
			}
		}
	}
}

func TestArticulateDeterminism(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)
	affect := domain.AffectState{Pleasure: 0.2, Arousal: -0.4, Dominance: -0.6}
	text := "确定性很重要，同样的输入必须得到同样的输出。不能有任何随机性！"

	first, err := a.Articulate(text, affect, map[string]any{"turn": "t-1"})
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}
	second, err := a.Articulate(text, affect, map[string]any{"turn": "t-1"})
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatalf("sequences differ:\n%s\n%s", firstJSON, secondJSON)
	}
}

func TestArticulateMetadata(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)

	seq, err := a.Articulate(
		"那个，我其实不太想去，因为最近真的太累了...下次吧？",
		domain.AffectState{Pleasure: -0.5, Arousal: 0.8, Dominance: -0.8},
		map[string]any{"session": "s-42"},
	)
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}

	segmentIndex := 0
	for i, action := range seq {
		if action.Metadata["session"] != "s-42" {
			t.Fatalf("action %d lost caller metadata: %#v", i, action.Metadata)
		}
		got, ok := action.Metadata[MetadataSegmentIndex]
		if !ok {
			t.Fatalf("action %d missing %s", i, MetadataSegmentIndex)
		}
		if got != segmentIndex {
			t.Fatalf("action %d has segment index %v, want %d", i, got, segmentIndex)
		}
		if action.Kind == domain.ActionMessage {
			segmentIndex++
		}
	}
	if segmentIndex < 2 {
		t.Fatalf("expected at least two segments, saw %d", segmentIndex)
	}
}

func TestArticulateMetadataCopiedPerAction(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)
	caller := map[string]any{"channel": "console"}

	seq, err := a.Articulate("两个句子。保证两条消息！", domain.AffectState{}, caller)
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}
	if len(seq) < 2 {
		t.Fatalf("expected several actions, got %d", len(seq))
	}

	seq[0].Metadata["channel"] = "mutated"
	if seq[1].Metadata["channel"] != "console" {
		t.Fatalf("metadata shared between actions: %#v", seq[1].Metadata)
	}
	if caller["channel"] != "console" {
		t.Fatalf("caller map mutated: %#v", caller)
	}
}

func TestArticulateKeepsCallerSegmentIndex(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)

	seq, err := a.Articulate("好的！", domain.AffectState{}, map[string]any{MetadataSegmentIndex: "mine"})
	if err != nil {
		t.Fatalf("Articulate error: %v", err)
	}
	for i, action := range seq {
		if action.Metadata[MetadataSegmentIndex] != "mine" {
			t.Fatalf("action %d overwrote caller segment index: %#v", i, action.Metadata)
		}
	}
}

func TestArticulateRejectsInvalidAffect(t *testing.T) {
	t.Parallel()

	a := mustArticulator(t)

	invalid := []domain.AffectState{
		{Pleasure: 1.01},
		{Arousal: -1.5},
		{Dominance: 2},
	}
	for _, affect := range invalid {
		_, err := a.Articulate("hello", affect, nil)
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError for %+v, got %v", affect, err)
		}
	}
}

func TestArticulateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	segCfg := DefaultSegmentationConfig()
	segCfg.MaxSegmentLength = segCfg.MinSegmentLength
	if _, err := New(segCfg, DefaultRhythmConfig()); err == nil {
		t.Fatal("expected config error for min == max")
	}

	rhythmCfg := DefaultRhythmConfig()
	rhythmCfg.BaseWordsPerMinute = 0
	if _, err := New(DefaultSegmentationConfig(), rhythmCfg); err == nil {
		t.Fatal("expected config error for zero wpm")
	}
}
