package plugin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ayusman/pinchcursor/internal/app"
)

// Hooks runs the subscribed plugins for every selection. It is an
// app.Sink.
type Hooks struct {
	manager  *Manager
	executor *Executor
}

// NewHooks creates Hooks over discovered plugins.
func NewHooks(manager *Manager, executor *Executor) *Hooks {
	return &Hooks{manager: manager, executor: executor}
}

// EventFor returns the hook event of a selection.
func EventFor(s app.Selection) string {
	if s.Correct {
		return EventSelectionCorrect
	}
	return EventSelectionWrong
}

// NewRequest builds the stdin payload for a selection.
func NewRequest(s app.Selection) *Request {
	return &Request{
		Event:       EventFor(s),
		SessionID:   s.SessionID,
		SelectionID: s.ID,
		Correct:     s.Correct,
		X:           s.Position.X,
		Y:           s.Position.Y,
		ChargeMs:    s.ChargeTime.Milliseconds(),
		Timestamp:   s.At.UnixMilli(),
	}
}

// HandleSelection runs every plugin subscribed to the selection's event in
// name order. A failing plugin does not stop the rest; all failures are
// returned joined.
func (h *Hooks) HandleSelection(ctx context.Context, s app.Selection) error {
	event := EventFor(s)
	var errs []error
	for _, p := range h.manager.Subscribers(event) {
		req := NewRequest(s)
		req.Config = p.Manifest.Config

		resp, err := h.executor.Execute(ctx, p, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Manifest.Name, err))
			continue
		}
		if !resp.Success {
			errs = append(errs, fmt.Errorf("%s: %s", p.Manifest.Name, resp.Error))
			continue
		}
		log.Printf("Plugin %s handled %s", p.Manifest.Name, event)
	}
	return errors.Join(errs...)
}
