package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDispatcher_DeliversToAllSinks(t *testing.T) {
	var a, b []string
	d := NewDispatcher(8,
		SinkFunc(func(ctx context.Context, s Selection) error { a = append(a, s.ID); return nil }),
		SinkFunc(func(ctx context.Context, s Selection) error { b = append(b, s.ID); return nil }),
	)

	for _, id := range []string{"one", "two", "three"} {
		if !d.Publish(Selection{ID: id}) {
			t.Fatalf("Publish(%s) dropped", id)
		}
	}
	d.Close()

	if len(a) != 3 || len(b) != 3 || a[2] != "three" || b[0] != "one" {
		t.Errorf("sinks saw %v and %v", a, b)
	}
	if s := d.Stats(); s.Handled != 3 || s.Dropped != 0 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	d := NewDispatcher(1, SinkFunc(func(ctx context.Context, s Selection) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}))

	d.Publish(Selection{ID: "busy"})
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("sink never started")
	}

	if !d.Publish(Selection{ID: "queued"}) {
		t.Fatal("second selection should fit the queue")
	}
	if d.Publish(Selection{ID: "dropped"}) {
		t.Error("third selection should be dropped")
	}

	close(release)
	d.Close()

	if s := d.Stats(); s.Handled != 2 || s.Dropped != 1 {
		t.Errorf("Stats() = %+v, want 2 handled, 1 dropped", s)
	}
}

func TestDispatcher_SinkErrorsAreCounted(t *testing.T) {
	d := NewDispatcher(2, SinkFunc(func(ctx context.Context, s Selection) error {
		return errors.New("disk full")
	}))
	d.Publish(Selection{ID: "x"})
	d.Close()

	if s := d.Stats(); s.Failed != 1 || s.Handled != 1 {
		t.Errorf("Stats() = %+v", s)
	}
}

func TestDispatcher_PublishAfterClose(t *testing.T) {
	d := NewDispatcher(1)
	d.Close()
	d.Close()

	if d.Publish(Selection{ID: "late"}) {
		t.Error("Publish after Close should drop")
	}
}
