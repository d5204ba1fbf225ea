package tasks

import (
	"fmt"

	"github.com/desertthunder/crate/internal/models"
)

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	Authorize Phase = iota
	Preload
	FetchPage
	MatchRelease
	WriteTracks
	Complete
)

func (p Phase) String() string {
	switch p {
	case Authorize:
		return "authorize"
	case Preload:
		return "preload"
	case FetchPage:
		return "fetch_page"
	case MatchRelease:
		return "match_release"
	case WriteTracks:
		return "write_tracks"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func authorizeUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Authorize, Step: 1, Total: 1, Message: "Waiting for Spotify authorization..."}
}

func preloadUpdate(step, total int, dest models.Destination, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Preload,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading %s playlist (%s)...", dest, playlistID),
	}
}

func fetchPageUpdate(step, total, page int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching page %d...", step, total, page),
	}
}

func matchReleaseUpdate(step, total int, r models.ClassifiedRelease) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchRelease,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s (%s)", step, total, r.Artist, r.Album, r.Destination),
		Data:    r,
	}
}

func writeTracksUpdate(r models.ClassifiedRelease, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteTracks,
		Step:    added,
		Total:   added,
		Message: fmt.Sprintf("✓ %s - %s: %d tracks added to %s", r.Artist, r.Album, added, r.Destination),
		Data:    r,
	}
}

func completeUpdate(result *RunResult) ProgressUpdate {
	total := result.Stats.Total()
	return ProgressUpdate{
		Phase:   Complete,
		Step:    result.Pages,
		Total:   result.Pages,
		Message: fmt.Sprintf("Done: %d processed, %d added, %d not found", total.Processed, total.Added, total.NotFound),
		Data:    result,
	}
}
