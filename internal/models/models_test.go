package models

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestDestination(t *testing.T) {
	t.Run("names", func(t *testing.T) {
		want := []string{"BASS", "TECHNO", "HOUSE", "DNB", "AMBIENT", "REST"}
		for i, d := range Destinations() {
			if d.String() != want[i] {
				t.Errorf("expected %s, got %s", want[i], d)
			}
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if got := Destination(42).String(); got != "Destination(42)" {
			t.Errorf("unexpected name %q", got)
		}
	})
}

func TestCredential(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	t.Run("ValidAt", func(t *testing.T) {
		c := &Credential{AccessToken: "a", ExpiresAt: now.Add(time.Minute)}
		if !c.ValidAt(now) {
			t.Error("expected credential to be valid before expiry")
		}
		if c.ValidAt(now.Add(time.Minute)) {
			t.Error("expected credential to be invalid at expiry")
		}

		var nilCred *Credential
		if nilCred.ValidAt(now) {
			t.Error("expected nil credential to be invalid")
		}
	})

	t.Run("token conversion", func(t *testing.T) {
		tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: now}
		c := CredentialFromToken(tok)
		if c.AccessToken != "a" || c.RefreshToken != "r" || !c.ExpiresAt.Equal(now) {
			t.Errorf("unexpected credential %+v", c)
		}
		back := c.Token()
		if back.AccessToken != "a" || back.RefreshToken != "r" || back.TokenType != "Bearer" {
			t.Errorf("unexpected token %+v", back)
		}
	})
}

func TestPlaylistState(t *testing.T) {
	s := NewPlaylistState("p1")
	s.Insert("spotify:track:1", "spotify:track:2", "spotify:track:1")

	if s.Len() != 2 {
		t.Errorf("expected 2 known URIs, got %d", s.Len())
	}
	if !s.Contains("spotify:track:2") {
		t.Error("expected track 2 to be known")
	}
	if s.Contains("spotify:track:3") {
		t.Error("expected track 3 to be unknown")
	}
}

func TestRunStats(t *testing.T) {
	s := NewRunStats()
	s.RecordProcessed(Techno)
	s.RecordAdded(Techno, 3)
	s.RecordProcessed(Rest)
	s.RecordNotFound(Rest)
	s.RecordProcessed(Rest)
	s.RecordSkipped(Rest)

	techno := s.For(Techno)
	if techno.Processed != 1 || techno.Added != 3 {
		t.Errorf("unexpected techno counters %+v", techno)
	}

	total := s.Total()
	want := Counters{Processed: 3, Added: 3, NotFound: 1, SkippedDuplicates: 1}
	if total != want {
		t.Errorf("expected %+v, got %+v", want, total)
	}

	if (s.For(House) != Counters{}) {
		t.Error("expected zero counters for untouched destination")
	}
}
