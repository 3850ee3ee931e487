package store

import (
	"database/sql"
	"errors"
)

// Setting keys.
const (
	SettingTrackingEnabled = "tracking.enabled"
)

// SettingsRepository stores string key-value settings.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the value of key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var v string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// GetBool returns the boolean under key, or def when unset.
func (r *SettingsRepository) GetBool(key string, def bool) bool {
	v, err := r.Get(key)
	if err != nil {
		return def
	}
	return v == "true"
}

// SetBool stores a boolean under key.
func (r *SettingsRepository) SetBool(key string, v bool) error {
	s := "false"
	if v {
		s = "true"
	}
	return r.Set(key, s)
}
