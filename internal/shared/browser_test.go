package shared

import (
	"errors"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	tests := []struct {
		goos string
		bin  string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"windows", "rundll32"},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browserCommand(tt.goos, "http://localhost:3000/login")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if cmd.Args[0] != tt.bin {
				t.Errorf("expected %s, got %s", tt.bin, cmd.Args[0])
			}
			if last := cmd.Args[len(cmd.Args)-1]; last != "http://localhost:3000/login" {
				t.Errorf("expected URL as last argument, got %s", last)
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		original := getRuntime
		defer func() { getRuntime = original }()
		getRuntime = func() string { return "plan9" }

		err := OpenBrowser("http://localhost")
		if !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}
