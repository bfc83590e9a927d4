package components

import (
	"strings"
	"testing"
)

func TestProgress_View(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		bar     string
		label   string
	}{
		{name: "zero", percent: 0, width: 8, bar: "□□□□□□□□", label: "0% Complete"},
		{name: "half", percent: 50, width: 8, bar: "■■■■□□□□", label: "50% Complete"},
		{name: "rounds down", percent: 33, width: 10, bar: "■■■□□□□□□□", label: "33% Complete"},
		{name: "full", percent: 100, width: 8, bar: "■■■■■■■■", label: "100% Complete"},
		{name: "clamps above", percent: 140, width: 4, bar: "■■■■", label: "100% Complete"},
		{name: "clamps below", percent: -5, width: 4, bar: "□□□□", label: "0% Complete"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewProgress(tt.percent, tt.width).View()
			if !strings.HasPrefix(got, tt.bar) {
				t.Errorf("expected bar %q, got: %s", tt.bar, got)
			}
			if !strings.HasSuffix(got, tt.label) {
				t.Errorf("expected label %q, got: %s", tt.label, got)
			}
		})
	}
}

func TestProgress_View_ZeroWidth(t *testing.T) {
	if got := NewProgress(50, 0).View(); got != "" {
		t.Errorf("expected empty string for zero width, got: %s", got)
	}
}
