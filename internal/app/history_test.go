package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ayusman/pinchcursor/internal/pointer"
	"github.com/ayusman/pinchcursor/internal/store"
)

func TestHistorySink(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	if err := st.Sessions().Create(&store.Session{ID: "sess", DisplayWidth: 1920, DisplayHeight: 1080}); err != nil {
		t.Fatal(err)
	}

	at := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	sink := NewHistorySink(st)
	sel := Selection{
		ID:         "sel",
		SessionID:  "sess",
		Correct:    true,
		Position:   pointer.Target{X: 12.5, Y: 99},
		ChargeTime: 1200 * time.Millisecond,
		At:         at,
	}
	if err := sink.HandleSelection(context.Background(), sel); err != nil {
		t.Fatalf("HandleSelection() error = %v", err)
	}

	got, err := st.Selections().ListBySession("sess")
	if err != nil {
		t.Fatal(err)
	}
	want := []*store.Selection{{
		ID: "sel", SessionID: "sess", Correct: true, X: 12.5, Y: 99,
		ChargeTime: 1200 * time.Millisecond, CreatedAt: at,
	}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApproxTime(time.Millisecond)); diff != "" {
		t.Errorf("stored selections (-want +got):\n%s", diff)
	}

	if err := sink.HandleSelection(context.Background(), Selection{ID: "orphan", SessionID: "missing"}); err == nil {
		t.Error("selection for an unknown session should fail")
	}
}
