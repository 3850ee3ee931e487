package store

func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per run of the display loop.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			display_width INTEGER NOT NULL,
			display_height INTEGER NOT NULL,
			style TEXT NOT NULL DEFAULT 'classic'
		)`,

		// Resolved charges.
		`CREATE TABLE IF NOT EXISTS selections (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			correct INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			charge_ms INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_selections_session_id ON selections(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
