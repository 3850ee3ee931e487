package main

import (
	"encoding/json"
	"testing"
)

func TestBuildKeystrokeScript(t *testing.T) {
	tests := []struct {
		key       string
		modifiers []string
		want      string
	}{
		{"n", nil, `tell application "System Events" to keystroke "n"`},
		{"n", []string{"Cmd", "shift"}, `tell application "System Events" to keystroke "n" using {command down, shift down}`},
		{"n", []string{"hyper"}, `tell application "System Events" to keystroke "n"`},
	}
	for _, tt := range tests {
		if got := buildKeystrokeScript(tt.key, tt.modifiers); got != tt.want {
			t.Errorf("buildKeystrokeScript(%q, %v) = %q, want %q", tt.key, tt.modifiers, got, tt.want)
		}
	}
}

func TestHandle_NoKeystrokeConfigured(t *testing.T) {
	req := Request{Event: "selection.wrong", Config: json.RawMessage(`{"correct":{"key":"n"}}`)}
	if err := handle(req); err != nil {
		t.Errorf("handle() error = %v, want nil for an unmapped outcome", err)
	}
}

func TestHandle_Errors(t *testing.T) {
	tests := []Request{
		{Event: "selection.maybe"},
		{Event: "selection.correct", Config: json.RawMessage(`{"correct":{"key":""}}`)},
		{Event: "selection.correct", Config: json.RawMessage(`not json`)},
	}
	for _, req := range tests {
		if err := handle(req); err == nil {
			t.Errorf("handle(%+v) should fail", req)
		}
	}
}
