package app

import (
	"context"
	"log"
	"time"

	"github.com/ayusman/pinchcursor/internal/cursor"
)

// Display is the window the cursor is drawn into.
type Display interface {
	// Begin returns a cleared canvas for the next frame.
	Begin() cursor.Canvas
	// Present shows the frame and reports false when the user closed the
	// display.
	Present() bool
}

// Run ticks at the configured rate until ctx is done or the display is
// closed.
func (a *App) Run(ctx context.Context, display Display) error {
	interval := a.cfg.TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Display loop started at %v per tick, session %s", interval, a.sessionID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.Tick(now, display.Begin())
			if !display.Present() {
				log.Println("Display closed")
				return nil
			}
		}
	}
}
