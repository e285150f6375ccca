package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/financeguardian/dashboard/internal/database"
)

// Session is an authenticated user's server-side state. All fields are
// written in a single row, so a session is either fully populated or absent.
type Session struct {
	ID        string
	Token     string
	Username  string
	Group     string
	ExpiresAt time.Time
}

// Store persists sessions in SQLite. Reads treat expired rows as absent,
// so a session that was never explicitly deleted still disappears when its
// TTL passes.
type Store struct {
	db  *database.DB
	log zerolog.Logger
	now func() time.Time
}

// NewStore creates a session store
func NewStore(db *database.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "session_store").Logger(),
		now: time.Now,
	}
}

// Create inserts a new session with the given TTL and returns it.
// Token, username and group share one expiry by construction.
func (s *Store) Create(token, username, group string, ttl time.Duration) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		Username:  username,
		Group:     group,
		ExpiresAt: s.now().Add(ttl),
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, token, username, group_name, expires_at) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.Token, sess.Username, sess.Group, sess.ExpiresAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.log.Debug().Str("username", username).Str("group", group).Msg("Session created")
	return sess, nil
}

// Get returns the session for id, or nil when the id is unknown or the
// session has expired.
func (s *Store) Get(id string) (*Session, error) {
	if id == "" {
		return nil, nil
	}

	row := s.db.QueryRow(
		`SELECT id, token, username, group_name, expires_at FROM sessions WHERE id = ?`,
		id,
	)

	var sess Session
	var expiresAt int64
	err := row.Scan(&sess.ID, &sess.Token, &sess.Username, &sess.Group, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	sess.ExpiresAt = time.Unix(expiresAt, 0)
	if !s.now().Before(sess.ExpiresAt) {
		return nil, nil
	}

	return &sess, nil
}

// Delete removes the session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) error {
	if id == "" {
		return nil
	}
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes all expired rows and returns how many were deleted
func (s *Store) PurgeExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
