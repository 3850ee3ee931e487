// Package plugin runs external hook executables when the pinch cursor
// resolves a selection.
package plugin

import (
	"encoding/json"
	"slices"
)

// Hook events a plugin may subscribe to.
const (
	EventSelectionCorrect = "selection.correct"
	EventSelectionWrong   = "selection.wrong"
)

// Manifest describes a plugin's metadata and the events it handles.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Events      []string        `json:"events"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Subscribes reports whether the manifest lists event.
func (m Manifest) Subscribes(event string) bool {
	return slices.Contains(m.Events, event)
}

// Request is written to the plugin's stdin.
type Request struct {
	Event       string          `json:"event"`
	SessionID   string          `json:"session_id"`
	SelectionID string          `json:"selection_id"`
	Correct     bool            `json:"correct"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	ChargeMs    int64           `json:"charge_ms"`
	Timestamp   int64           `json:"timestamp"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
