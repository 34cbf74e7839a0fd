package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Maxservais/chat/internal/db"
)

// Store persists per-session message history and derived profiles.
type Store struct {
	db *db.DB
}

// NewStore creates a session store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Ensure creates the session row if it does not exist yet. Sessions are
// created on first contact and never deleted.
func (s *Store) Ensure(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (key) VALUES (?) ON CONFLICT(key) DO NOTHING`, key)
	if err != nil {
		return fmt.Errorf("ensuring session: %w", err)
	}
	return nil
}

// AppendMessage appends a message to the session history. The caller
// must supply a fresh ID; colliding with an existing ID is an error on
// this path.
func (s *Store) AppendMessage(ctx context.Context, key string, m Message) error {
	inserted, err := s.append(ctx, key, m, false)
	if err != nil {
		return err
	}
	if !inserted {
		return fmt.Errorf("duplicate message id %q in session %q", m.ID, key)
	}
	return nil
}

// AppendMessageIfAbsent appends only when no message with the same ID
// exists in the session, and reports whether the append happened. This
// identifier check is the sole deduplication mechanism for
// background-originated messages.
func (s *Store) AppendMessageIfAbsent(ctx context.Context, key string, m Message) (bool, error) {
	return s.append(ctx, key, m, true)
}

func (s *Store) append(ctx context.Context, key string, m Message, ignoreDup bool) (bool, error) {
	if err := s.Ensure(ctx, key); err != nil {
		return false, err
	}

	parts, err := json.Marshal(m.Parts)
	if err != nil {
		return false, fmt.Errorf("encoding message parts: %w", err)
	}

	conflict := ""
	if ignoreDup {
		conflict = " ON CONFLICT(session_key, id) DO NOTHING"
	}

	// The seq subselect and the insert execute as one statement, so
	// concurrent appenders cannot interleave sequence numbers.
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (session_key, id, role, parts, seq)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM chat_messages WHERE session_key = ?))`+conflict,
		key, m.ID, string(m.Role), string(parts), key)
	if err != nil {
		return false, fmt.Errorf("appending message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("appending message: %w", err)
	}
	return n > 0, nil
}

// History returns the session's messages in append order.
func (s *Store) History(ctx context.Context, key string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, role, parts, created_at FROM chat_messages
		 WHERE session_key = ? ORDER BY seq ASC`, key)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var role, parts string
		if err := rows.Scan(&m.ID, &role, &parts, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Role = Role(role)
		if err := json.Unmarshal([]byte(parts), &m.Parts); err != nil {
			return nil, fmt.Errorf("decoding message parts: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Clear truncates the session's message list and profile. The session
// itself survives.
func (s *Store) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("clearing messages: %w", err)
	}
	return s.ClearProfile(ctx, key)
}

// SetProfile overwrites the session's derived profile wholesale.
func (s *Store) SetProfile(ctx context.Context, key string, p Profile) error {
	if err := s.Ensure(ctx, key); err != nil {
		return err
	}
	topics, err := json.Marshal(p.Topics)
	if err != nil {
		return fmt.Errorf("encoding topics: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles (session_key, subject, topics, summary, items_analyzed, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_key) DO UPDATE SET
		   subject = excluded.subject,
		   topics = excluded.topics,
		   summary = excluded.summary,
		   items_analyzed = excluded.items_analyzed,
		   updated_at = excluded.updated_at`,
		key, p.Subject, string(topics), p.Summary, p.ItemsAnalyzed, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing profile: %w", err)
	}
	return nil
}

// GetProfile returns the session's profile, or nil when none exists.
func (s *Store) GetProfile(ctx context.Context, key string) (*Profile, error) {
	var p Profile
	var topics string
	err := s.db.QueryRowContext(ctx,
		`SELECT subject, topics, summary, items_analyzed, updated_at
		 FROM profiles WHERE session_key = ?`, key,
	).Scan(&p.Subject, &topics, &p.Summary, &p.ItemsAnalyzed, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	if err := json.Unmarshal([]byte(topics), &p.Topics); err != nil {
		return nil, fmt.Errorf("decoding topics: %w", err)
	}
	return &p, nil
}

// ClearProfile drops the session's profile if present.
func (s *Store) ClearProfile(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE session_key = ?`, key); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}
	return nil
}
