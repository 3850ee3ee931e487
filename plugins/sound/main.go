// Package main is a selection hook for macOS that plays a sound per
// selection outcome.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Request is the selection event written by the hook executor.
type Request struct {
	Event   string          `json:"event"`
	Correct bool            `json:"correct"`
	Config  json.RawMessage `json:"config"`
}

// Response is read back by the hook executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Config names the sound file for each outcome. Volume is 0..1; zero
// means the system default.
type Config struct {
	Correct string  `json:"correct"`
	Wrong   string  `json:"wrong"`
	Volume  float64 `json:"volume"`
}

// DefaultConfig uses the stock macOS sounds.
func DefaultConfig() Config {
	return Config{
		Correct: "/System/Library/Sounds/Glass.aiff",
		Wrong:   "/System/Library/Sounds/Basso.aiff",
	}
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
	cfg := DefaultConfig()
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	args, err := playArgs(req.Event, cfg)
	if err != nil {
		return err
	}
	output, err := exec.Command("afplay", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("afplay: %w: %s", err, string(output))
	}
	return nil
}

// playArgs returns the afplay arguments for event.
func playArgs(event string, cfg Config) ([]string, error) {
	var file string
	switch event {
	case "selection.correct":
		file = cfg.Correct
	case "selection.wrong":
		file = cfg.Wrong
	default:
		return nil, fmt.Errorf("unknown event: %s", event)
	}
	if file == "" {
		return nil, fmt.Errorf("no sound configured for %s", event)
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return nil, fmt.Errorf("volume %v out of range", cfg.Volume)
	}

	var args []string
	if cfg.Volume > 0 {
		args = append(args, "-v", strconv.FormatFloat(cfg.Volume, 'f', -1, 64))
	}
	return append(args, file), nil
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
