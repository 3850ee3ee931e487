package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlayArgs(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		cfg     Config
		want    []string
		wantErr bool
	}{
		{name: "correct default", event: "selection.correct", cfg: DefaultConfig(), want: []string{"/System/Library/Sounds/Glass.aiff"}},
		{name: "wrong default", event: "selection.wrong", cfg: DefaultConfig(), want: []string{"/System/Library/Sounds/Basso.aiff"}},
		{name: "volume", event: "selection.wrong", cfg: Config{Wrong: "buzz.wav", Volume: 0.5}, want: []string{"-v", "0.5", "buzz.wav"}},
		{name: "unknown event", event: "selection.maybe", cfg: DefaultConfig(), wantErr: true},
		{name: "missing file", event: "selection.correct", cfg: Config{}, wantErr: true},
		{name: "bad volume", event: "selection.correct", cfg: Config{Correct: "a.wav", Volume: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := playArgs(tt.event, tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("playArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("playArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
