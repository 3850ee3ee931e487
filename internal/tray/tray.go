// Package tray provides the system tray menu of the pinch cursor.
package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/pinchcursor/internal/app"
)

// Tray is the system tray menu. Its callbacks run on the menu click goroutine.
type Tray struct {
	onToggle func(enabled bool)
	onQuit   func()
	enabled  bool
	last     string
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a Tray. enabled is the initial tracking state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled: enabled,
		last:    "none",
	}
}

// OnToggle sets the callback run when tracking is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnQuit sets the callback run when quit is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It blocks until Quit and must run on the main
// goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Pinch")
	systray.SetTooltip("Pinch Cursor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle hand tracking")
	systray.AddSeparator()
	t.menuLast = systray.AddMenuItem("Last: "+t.last, "Last selection")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Pinch Cursor")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.Toggle()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}

// Toggle flips the tracking state and runs the toggle callback.
func (t *Tray) Toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// outside the lock: the callback may call back into the tray
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// HandleSelection shows the outcome of s in the menu. It is an app.Sink.
func (t *Tray) HandleSelection(_ context.Context, s app.Selection) error {
	outcome := "wrong"
	if s.Correct {
		outcome = "correct"
	}
	t.SetLastSelection(fmt.Sprintf("%s at (%.0f, %.0f)", outcome, s.Position.X, s.Position.Y))
	return nil
}

// SetLastSelection updates the last selection line.
func (t *Tray) SetLastSelection(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if text == "" {
		text = "none"
	}
	t.last = text
	if t.menuLast != nil {
		t.menuLast.SetTitle("Last: " + text)
	}
}

// LastSelection returns the text of the last selection line.
func (t *Tray) LastSelection() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// IsEnabled returns the current tracking state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
