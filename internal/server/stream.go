package server

import (
	"fmt"
	"net/http"
	"time"
)

// PreviewHandler serves the tracker's annotated frames as MJPEG.
type PreviewHandler struct {
	source   PreviewSource
	interval time.Duration
}

// NewPreviewHandler creates a PreviewHandler polling source every interval.
func NewPreviewHandler(source PreviewSource, interval time.Duration) *PreviewHandler {
	return &PreviewHandler{source: source, interval: interval}
}

// ServeHTTP writes each new frame as one multipart part.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		jpeg, seq := h.source.Latest()
		if seq != lastSeq && len(jpeg) > 0 {
			lastSeq = seq
			if err := writePart(w, jpeg); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
