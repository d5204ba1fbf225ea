package ui

import (
	"strings"
	"testing"
)

func TestPalette(t *testing.T) {
	var _ Painter = Styles

	tests := []struct {
		name   string
		render func(string) string
		prefix string
	}{
		{"ok", Plain().OK, "✓ "},
		{"error", Plain().Error, "✗ "},
		{"warn", Plain().Warn, "⚠ "},
		{"title", Plain().Title, ""},
		{"help", Plain().Help, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.render("done"); got != tt.prefix+"done" {
				t.Errorf("expected %q, got %q", tt.prefix+"done", got)
			}
		})
	}

	t.Run("styled output keeps text", func(t *testing.T) {
		if got := Styles.OK("synced"); !strings.Contains(got, "synced") {
			t.Errorf("expected text in styled output, got %q", got)
		}
	})
}
