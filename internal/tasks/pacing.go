package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/crate/internal/shared"
)

// Pause names a fixed delay taken after a remote call.
type Pause int

const (
	PauseSearch Pause = iota
	PauseTracks
	PauseWrite
	PausePage
	PausePreload
)

func (p Pause) String() string {
	switch p {
	case PauseSearch:
		return "search"
	case PauseTracks:
		return "tracks"
	case PauseWrite:
		return "write"
	case PausePage:
		return "page"
	case PausePreload:
		return "preload"
	default:
		return ""
	}
}

// Pacer sleeps for the configured delay of each [Pause], returning early when the context ends.
type Pacer struct {
	delays map[Pause]time.Duration
	sleep  func(ctx context.Context, pause Pause, d time.Duration) error
}

// NewPacer creates a [Pacer] from the pacing config section.
func NewPacer(cfg shared.PacingConfig) *Pacer {
	return &Pacer{
		delays: map[Pause]time.Duration{
			PauseSearch:  cfg.Search,
			PauseTracks:  cfg.Tracks,
			PauseWrite:   cfg.Write,
			PausePage:    cfg.Page,
			PausePreload: cfg.Preload,
		},
		sleep: sleep,
	}
}

// NoPacing returns a [Pacer] with every delay set to zero.
func NoPacing() *Pacer {
	return NewPacer(shared.PacingConfig{})
}

// Delay returns the configured delay for p.
func (p *Pacer) Delay(pause Pause) time.Duration {
	if p == nil {
		return 0
	}
	return p.delays[pause]
}

// Wait sleeps for the delay of pause. It returns ctx.Err() if the context ends first.
func (p *Pacer) Wait(ctx context.Context, pause Pause) error {
	d := p.Delay(pause)
	if d <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, pause, d)
}

func sleep(ctx context.Context, _ Pause, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
