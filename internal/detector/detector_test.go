package detector

import (
	"errors"
	"testing"
)

func TestPrimary(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		if _, ok := Primary(nil); ok {
			t.Error("expected no primary hand for empty input")
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		low := OpenPalmLandmarks()
		low.Score = 0.6
		high := PinchLandmarks()
		high.Score = 0.9

		hand, ok := Primary([]HandLandmarks{low, high})
		if !ok {
			t.Fatal("expected a primary hand")
		}
		if hand.Score != 0.9 {
			t.Errorf("primary score = %f, want 0.9", hand.Score)
		}
	})
}

func TestOffset(t *testing.T) {
	hand := OpenPalmLandmarks()
	moved := Offset(hand, 0.1, -0.2)

	for i := range hand.Points {
		if d := moved.Points[i].X - hand.Points[i].X; d < 0.0999 || d > 0.1001 {
			t.Errorf("point %d X moved by %f, want 0.1", i, d)
		}
		if d := moved.Points[i].Y - hand.Points[i].Y; d < -0.2001 || d > -0.1999 {
			t.Errorf("point %d Y moved by %f, want -0.2", i, d)
		}
	}
	if hand.Points[Wrist].X != 0.5 {
		t.Error("Offset should not modify its input")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{PinchLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Errorf("expected 1 hand, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("Calls() = %d, want 1", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 1 {
		t.Errorf("MaxHands = %d, want 1", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.7 {
		t.Errorf("MinConfidence = %f, want 0.7", cfg.MinConfidence)
	}
}
