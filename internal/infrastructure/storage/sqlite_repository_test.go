package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"Cadence/internal/domain"
)

func openRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return repo
}

func TestSaveAndLoadTurn(t *testing.T) {
	t.Parallel()

	repo := openRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	turn := domain.Turn{
		ID:        "turn-1",
		SessionID: "s-1",
		UserText:  "今天好累",
		ReplyText: "听起来真的不容易。",
		Affect:    domain.AffectState{Pleasure: -0.2, Arousal: -0.4, Dominance: -0.1},
		CreatedAt: base,
	}
	if err := repo.SaveTurn(ctx, turn); err != nil {
		t.Fatalf("SaveTurn() error = %v", err)
	}

	actions := domain.ActionSequence{
		{Kind: domain.ActionTyping, Duration: 2300 * time.Millisecond,
			Metadata: map[string]any{"segment_index": float64(0)}},
		{Kind: domain.ActionMessage, Content: "听起来真的不容易。",
			Metadata: map[string]any{"segment_index": float64(0)}},
	}
	if err := repo.SaveActions(ctx, turn.ID, actions); err != nil {
		t.Fatalf("SaveActions() error = %v", err)
	}

	turns, err := repo.RecentTurns(ctx, "s-1", 10)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(turns) != 1 {
		t.Fatalf("RecentTurns() returned %d turns, want 1", len(turns))
	}

	got := turns[0]
	if got.ID != turn.ID || got.SessionID != turn.SessionID {
		t.Errorf("turn identity = (%q, %q), want (%q, %q)", got.ID, got.SessionID, turn.ID, turn.SessionID)
	}
	if got.UserText != turn.UserText || got.ReplyText != turn.ReplyText {
		t.Errorf("turn text round-trip mismatch: %+v", got)
	}
	if got.Affect != turn.Affect {
		t.Errorf("turn affect = %+v, want %+v", got.Affect, turn.Affect)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("turn created at = %v, want %v", got.CreatedAt, base)
	}

	if len(got.Actions) != len(actions) {
		t.Fatalf("loaded %d actions, want %d", len(got.Actions), len(actions))
	}
	for i, action := range got.Actions {
		want := actions[i]
		if action.Kind != want.Kind || action.Content != want.Content || action.Duration != want.Duration {
			t.Errorf("action %d = %+v, want %+v", i, action, want)
		}
		if action.Metadata["segment_index"] != want.Metadata["segment_index"] {
			t.Errorf("action %d metadata = %v, want %v", i, action.Metadata, want.Metadata)
		}
	}
}

func TestRecentTurnsOrderAndLimit(t *testing.T) {
	t.Parallel()

	repo := openRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"turn-a", "turn-b", "turn-c"} {
		turn := domain.Turn{
			ID:        id,
			SessionID: "s-1",
			UserText:  "hi",
			ReplyText: "hey",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.SaveTurn(ctx, turn); err != nil {
			t.Fatalf("SaveTurn(%s) error = %v", id, err)
		}
	}
	other := domain.Turn{ID: "turn-x", SessionID: "s-2", UserText: "yo", ReplyText: "yo", CreatedAt: base}
	if err := repo.SaveTurn(ctx, other); err != nil {
		t.Fatalf("SaveTurn(turn-x) error = %v", err)
	}

	turns, err := repo.RecentTurns(ctx, "s-1", 2)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("RecentTurns() returned %d turns, want 2", len(turns))
	}
	if turns[0].ID != "turn-c" || turns[1].ID != "turn-b" {
		t.Errorf("turn order = [%s, %s], want [turn-c, turn-b]", turns[0].ID, turns[1].ID)
	}
}

func TestSaveActionsEmpty(t *testing.T) {
	t.Parallel()

	repo := openRepo(t)
	if err := repo.SaveActions(context.Background(), "turn-1", nil); err != nil {
		t.Fatalf("SaveActions(empty) error = %v", err)
	}
}

func TestActionMetadataOptional(t *testing.T) {
	t.Parallel()

	repo := openRepo(t)
	ctx := context.Background()

	turn := domain.Turn{
		ID:        "turn-1",
		SessionID: "s-1",
		UserText:  "hi",
		ReplyText: "hey",
		CreatedAt: time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveTurn(ctx, turn); err != nil {
		t.Fatalf("SaveTurn() error = %v", err)
	}
	actions := domain.ActionSequence{
		{Kind: domain.ActionTyping, Duration: time.Second},
		{Kind: domain.ActionMessage, Content: "hey"},
	}
	if err := repo.SaveActions(ctx, turn.ID, actions); err != nil {
		t.Fatalf("SaveActions() error = %v", err)
	}

	turns, err := repo.RecentTurns(ctx, "s-1", 1)
	if err != nil {
		t.Fatalf("RecentTurns() error = %v", err)
	}
	if len(turns) != 1 || len(turns[0].Actions) != 2 {
		t.Fatalf("unexpected journal shape: %+v", turns)
	}
	for i, action := range turns[0].Actions {
		if action.Metadata != nil {
			t.Errorf("action %d metadata = %v, want nil", i, action.Metadata)
		}
	}
}

func TestAffectHistory(t *testing.T) {
	t.Parallel()

	repo := openRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	samples := []domain.AffectSample{
		{SessionID: "s-1", State: domain.AffectState{Pleasure: 0.1}, Dopamine: 0.5, Cortisol: 0.3, CreatedAt: base},
		{SessionID: "s-1", State: domain.AffectState{Pleasure: 0.4, Arousal: 0.2}, Dopamine: 0.54, Cortisol: 0.32, CreatedAt: base.Add(time.Minute)},
		{SessionID: "s-2", State: domain.AffectState{Dominance: -0.5}, Dopamine: 0.5, Cortisol: 0.3, CreatedAt: base},
	}
	for i, sample := range samples {
		if err := repo.SaveAffectSample(ctx, sample); err != nil {
			t.Fatalf("SaveAffectSample(%d) error = %v", i, err)
		}
	}

	history, err := repo.AffectHistory(ctx, "s-1", 10)
	if err != nil {
		t.Fatalf("AffectHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("AffectHistory() returned %d samples, want 2", len(history))
	}
	if history[0].State.Pleasure != 0.4 || history[1].State.Pleasure != 0.1 {
		t.Errorf("sample order = [%v, %v], want newest first", history[0].State, history[1].State)
	}
	if history[0].Dopamine != 0.54 || history[0].Cortisol != 0.32 {
		t.Errorf("chemistry round-trip = (%v, %v), want (0.54, 0.32)", history[0].Dopamine, history[0].Cortisol)
	}

	limited, err := repo.AffectHistory(ctx, "s-1", 1)
	if err != nil {
		t.Fatalf("AffectHistory(limit 1) error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("AffectHistory(limit 1) returned %d samples, want 1", len(limited))
	}
}
