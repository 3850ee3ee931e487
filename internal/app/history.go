package app

import (
	"context"
	"fmt"

	"github.com/ayusman/pinchcursor/internal/store"
)

// HistorySink records every selection in the store under its session.
type HistorySink struct {
	store *store.Store
}

// NewHistorySink creates a HistorySink writing to st.
func NewHistorySink(st *store.Store) *HistorySink {
	return &HistorySink{store: st}
}

// HandleSelection inserts s.
func (h *HistorySink) HandleSelection(_ context.Context, s Selection) error {
	err := h.store.Selections().Create(&store.Selection{
		ID:         s.ID,
		SessionID:  s.SessionID,
		Correct:    s.Correct,
		X:          s.Position.X,
		Y:          s.Position.Y,
		ChargeTime: s.ChargeTime,
		CreatedAt:  s.At,
	})
	if err != nil {
		return fmt.Errorf("record selection %s: %w", s.ID, err)
	}
	return nil
}
