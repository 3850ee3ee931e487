package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is one run of the display loop.
type Session struct {
	ID            string     `json:"id"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	DisplayWidth  int        `json:"display_width"`
	DisplayHeight int        `json:"display_height"`
	Style         string     `json:"style"`
}

// SessionSummary is a session with its selection totals.
type SessionSummary struct {
	Session
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// SessionRepository reads and writes sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session. A zero StartedAt is set to now.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	if sess.Style == "" {
		sess.Style = "classic"
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, display_width, display_height, style)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.StartedAt, sess.DisplayWidth, sess.DisplayHeight, sess.Style,
	)
	return err
}

// End records when the session finished.
func (r *SessionRepository) End(id string, at time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const summaryQuery = `
	SELECT s.id, s.started_at, s.ended_at, s.display_width, s.display_height, s.style,
	       COALESCE(SUM(CASE WHEN sel.correct = 1 THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN sel.correct = 0 THEN 1 ELSE 0 END), 0)
	FROM sessions s
	LEFT JOIN selections sel ON sel.session_id = s.id`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*SessionSummary, error) {
	sum := &SessionSummary{}
	var ended sql.NullTime
	err := row.Scan(&sum.ID, &sum.StartedAt, &ended, &sum.DisplayWidth, &sum.DisplayHeight, &sum.Style, &sum.Correct, &sum.Wrong)
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sum.EndedAt = &t
	}
	return sum, nil
}

// GetByID returns a session with its totals.
func (r *SessionRepository) GetByID(id string) (*SessionSummary, error) {
	sum, err := scanSummary(r.db.QueryRow(summaryQuery+` WHERE s.id = ? GROUP BY s.id`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sum, nil
}

// List returns sessions newest first, at most limit of them. A limit of
// zero or less returns all.
func (r *SessionRepository) List(limit int) ([]*SessionSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(summaryQuery+` GROUP BY s.id ORDER BY s.started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SessionSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a session and its selections.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
