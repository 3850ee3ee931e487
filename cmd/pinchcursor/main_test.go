package main

import (
	"image"
	"testing"

	"github.com/ayusman/pinchcursor/internal/config"
	"github.com/ayusman/pinchcursor/internal/render"
)

func TestParseRect(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{in: "10,20,100,50", want: image.Rect(10, 20, 110, 70)},
		{in: " 0, 0, 1, 1", want: image.Rect(0, 0, 1, 1)},
		{in: "10,20,100", wantErr: true},
		{in: "a,b,c,d", wantErr: true},
		{in: "0,0,0,10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseRect() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectsFlag(t *testing.T) {
	var r rectsFlag
	if err := r.Set("0,0,10,10"); err != nil {
		t.Fatal(err)
	}
	if err := r.Set("20,20,5,5"); err != nil {
		t.Fatal(err)
	}
	if len(r) != 2 || r[1] != image.Rect(20, 20, 25, 25) {
		t.Errorf("rects = %v", r)
	}
	if got := r.String(); got != "(0,0)-(10,10) (20,20)-(25,25)" {
		t.Errorf("String() = %q", got)
	}
}

func TestCentreTarget(t *testing.T) {
	got := centreTarget(config.Default())
	if want := image.Rect(760, 340, 1160, 740); got != want {
		t.Errorf("centreTarget() = %v, want %v", got, want)
	}
}

func TestOpenDisplay_TrayIsHeadless(t *testing.T) {
	cfg := config.Default()
	cfg.Tray = true

	display, closeDisplay := openDisplay(cfg, true)
	defer closeDisplay()

	if _, ok := display.(*render.Headless); !ok {
		t.Fatalf("openDisplay() with tray = %T, want *render.Headless", display)
	}
	if c := display.Begin(); c != nil {
		t.Errorf("Begin() = %v, want no canvas", c)
	}
}
