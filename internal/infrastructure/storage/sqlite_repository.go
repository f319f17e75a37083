package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"Cadence/internal/domain"
	"Cadence/internal/ports"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS turns (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		user_text  TEXT NOT NULL,
		reply_text TEXT NOT NULL,
		pleasure   REAL NOT NULL,
		arousal    REAL NOT NULL,
		dominance  REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS turn_actions (
		turn_id     TEXT NOT NULL REFERENCES turns(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		kind        TEXT NOT NULL,
		content     TEXT NOT NULL,
		duration_ns INTEGER NOT NULL,
		metadata    TEXT,
		PRIMARY KEY (turn_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS affect_samples (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		pleasure   REAL NOT NULL,
		arousal    REAL NOT NULL,
		dominance  REAL NOT NULL,
		dopamine   REAL NOT NULL,
		cortisol   REAL NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_affect_session ON affect_samples(session_id, created_at)`,
}

// SQLiteRepository journals turns, action streams, and affect samples.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.TranscriptRepository = (*SQLiteRepository)(nil)

// Open opens (or creates) the journal at path, applies pragmas and the
// schema, and returns a ready repository.
func Open(ctx context.Context, path string) (*SQLiteRepository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	repo := NewSQLiteRepository(db)
	if err := repo.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewSQLiteRepository wires an existing sql.DB.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Close releases the underlying database handle.
func (r *SQLiteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return nil
}

// SaveTurn inserts the turn row; the action stream is saved separately.
func (r *SQLiteRepository) SaveTurn(ctx context.Context, turn domain.Turn) error {
	query, args, err := sq.Insert("turns").
		Columns("id", "session_id", "user_text", "reply_text", "pleasure", "arousal", "dominance", "created_at").
		Values(turn.ID, turn.SessionID, turn.UserText, turn.ReplyText,
			turn.Affect.Pleasure, turn.Affect.Arousal, turn.Affect.Dominance, turn.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build turn insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}
	return nil
}

// SaveActions journals the delivered action stream for a turn, one row per
// action in sequence order.
func (r *SQLiteRepository) SaveActions(ctx context.Context, turnID string, actions domain.ActionSequence) error {
	if len(actions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin actions tx: %w", err)
	}

	for i, action := range actions {
		var metadata any
		if len(action.Metadata) > 0 {
			raw, mErr := json.Marshal(action.Metadata)
			if mErr != nil {
				_ = tx.Rollback()
				return fmt.Errorf("marshal action %d metadata: %w", i, mErr)
			}
			metadata = string(raw)
		}

		query, args, bErr := sq.Insert("turn_actions").
			Columns("turn_id", "seq", "kind", "content", "duration_ns", "metadata").
			Values(turnID, i, string(action.Kind), action.Content, int64(action.Duration), metadata).
			ToSql()
		if bErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build action insert: %w", bErr)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert action %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit actions: %w", err)
	}
	return nil
}

// SaveAffectSample appends one mood snapshot to the session's history.
func (r *SQLiteRepository) SaveAffectSample(ctx context.Context, sample domain.AffectSample) error {
	query, args, err := sq.Insert("affect_samples").
		Columns("session_id", "pleasure", "arousal", "dominance", "dopamine", "cortisol", "created_at").
		Values(sample.SessionID, sample.State.Pleasure, sample.State.Arousal, sample.State.Dominance,
			sample.Dopamine, sample.Cortisol, sample.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sample insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// RecentTurns returns up to limit turns for a session, newest first, with
// their action streams attached.
func (r *SQLiteRepository) RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	query, args, err := sq.Select("id", "session_id", "user_text", "reply_text", "pleasure", "arousal", "dominance", "created_at").
		From("turns").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build turns select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}

	var turns []domain.Turn
	for rows.Next() {
		var t domain.Turn
		var createdAt time.Time
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserText, &t.ReplyText,
			&t.Affect.Pleasure, &t.Affect.Arousal, &t.Affect.Dominance, &createdAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = createdAt.UTC()
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}

	for i := range turns {
		actions, err := r.loadActions(ctx, turns[i].ID)
		if err != nil {
			return nil, err
		}
		turns[i].Actions = actions
	}
	return turns, nil
}

// AffectHistory returns up to limit samples for a session, newest first.
func (r *SQLiteRepository) AffectHistory(ctx context.Context, sessionID string, limit int) ([]domain.AffectSample, error) {
	query, args, err := sq.Select("session_id", "pleasure", "arousal", "dominance", "dopamine", "cortisol", "created_at").
		From("affect_samples").
		Where(sq.Eq{"session_id": sessionID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build samples select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []domain.AffectSample
	for rows.Next() {
		var s domain.AffectSample
		var createdAt time.Time
		if err := rows.Scan(&s.SessionID, &s.State.Pleasure, &s.State.Arousal, &s.State.Dominance,
			&s.Dopamine, &s.Cortisol, &createdAt); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		s.CreatedAt = createdAt.UTC()
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return samples, nil
}

func (r *SQLiteRepository) loadActions(ctx context.Context, turnID string) (domain.ActionSequence, error) {
	query, args, err := sq.Select("kind", "content", "duration_ns", "metadata").
		From("turn_actions").
		Where(sq.Eq{"turn_id": turnID}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build actions select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var actions domain.ActionSequence
	for rows.Next() {
		var (
			kind       string
			content    string
			durationNS int64
			metadata   sql.NullString
		)
		if err := rows.Scan(&kind, &content, &durationNS, &metadata); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}

		action := domain.ActionEvent{
			Kind:     domain.ActionKind(kind),
			Content:  content,
			Duration: time.Duration(durationNS),
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &action.Metadata); err != nil {
				return nil, fmt.Errorf("decode action metadata: %w", err)
			}
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return actions, nil
}
