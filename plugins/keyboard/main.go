// Package main is a selection hook for macOS that sends a keystroke per
// selection outcome, for example to advance a slide after a correct answer.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request is the selection event written by the hook executor.
type Request struct {
	Event   string          `json:"event"`
	Correct bool            `json:"correct"`
	Config  json.RawMessage `json:"config"`
}

// Response is read back by the hook executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Keystroke is one key with optional modifiers.
type Keystroke struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"` // command, option, control, shift
}

// Config maps each outcome to a keystroke. An outcome without one is
// ignored.
type Config struct {
	Correct *Keystroke `json:"correct"`
	Wrong   *Keystroke `json:"wrong"`
}

var modifierMap = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}
	writeResponse(handle(req))
}

func handle(req Request) error {
	var cfg Config
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ks, err := keystrokeFor(req.Event, cfg)
	if err != nil || ks == nil {
		return err
	}
	if ks.Key == "" {
		return fmt.Errorf("key is required for %s", req.Event)
	}
	return runAppleScript(buildKeystrokeScript(ks.Key, ks.Modifiers))
}

func keystrokeFor(event string, cfg Config) (*Keystroke, error) {
	switch event {
	case "selection.correct":
		return cfg.Correct, nil
	case "selection.wrong":
		return cfg.Wrong, nil
	default:
		return nil, fmt.Errorf("unknown event: %s", event)
	}
}

// buildKeystrokeScript generates an AppleScript for the given key and modifiers.
func buildKeystrokeScript(key string, modifiers []string) string {
	var appleModifiers []string
	for _, mod := range modifiers {
		if appleMod, ok := modifierMap[strings.ToLower(mod)]; ok {
			appleModifiers = append(appleModifiers, appleMod)
		}
	}

	if len(appleModifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s" using {%s}`, key, strings.Join(appleModifiers, ", "))
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
