package store

import (
	"database/sql"
	"time"
)

// Selection is one resolved charge.
type Selection struct {
	ID         string        `json:"id"`
	SessionID  string        `json:"session_id"`
	Correct    bool          `json:"correct"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	ChargeTime time.Duration `json:"charge_time"`
	CreatedAt  time.Time     `json:"created_at"`
}

// SelectionRepository reads and writes selections.
type SelectionRepository struct {
	db *sql.DB
}

// Selections returns the selection repository for this store.
func (s *Store) Selections() *SelectionRepository {
	return &SelectionRepository{db: s.db}
}

// Create inserts a selection. The session must exist.
func (r *SelectionRepository) Create(sel *Selection) error {
	if sel.CreatedAt.IsZero() {
		sel.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO selections (id, session_id, correct, x, y, charge_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sel.ID, sel.SessionID, sel.Correct, sel.X, sel.Y, sel.ChargeTime.Milliseconds(), sel.CreatedAt,
	)
	return err
}

// ListBySession returns the selections of a session, oldest first.
func (r *SelectionRepository) ListBySession(sessionID string) ([]*Selection, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, correct, x, y, charge_ms, created_at
		 FROM selections WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Selection
	for rows.Next() {
		sel := &Selection{}
		var correct int
		var chargeMs int64
		if err := rows.Scan(&sel.ID, &sel.SessionID, &correct, &sel.X, &sel.Y, &chargeMs, &sel.CreatedAt); err != nil {
			return nil, err
		}
		sel.Correct = correct == 1
		sel.ChargeTime = time.Duration(chargeMs) * time.Millisecond
		out = append(out, sel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
