// package formatter renders run output: the not-found report, the summary table, and release listings
package formatter

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const (
	reportPrefix    = "not-found-albums-"
	reportExt       = ".md"
	generatedLayout = "2006-01-02 15:04:05"
)

// ReportFilename returns the dated report filename for now, e.g. not-found-albums-2025-01-31.md
func ReportFilename(now time.Time) string {
	return reportPrefix + now.Format(time.DateOnly) + reportExt
}

// group is the not-found entries of a single destination in run order.
type group struct {
	name    string
	entries []models.NotFoundEntry
}

func groupByDestination(entries []models.NotFoundEntry) []group {
	index := make(map[string]int)
	var groups []group
	for _, e := range entries {
		name := e.Destination.String()
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, group{name: name})
		}
		groups[i].entries = append(groups[i].entries, e)
	}

	slices.SortFunc(groups, func(a, b group) int { return cmp.Compare(a.name, b.name) })
	return groups
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	return strings.Join(tags, ", ")
}

// RenderNotFound converts the not-found entries to Markdown, grouped by destination sorted by name
func RenderNotFound(entries []models.NotFoundEntry, generatedAt time.Time) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Albums Not Found on Spotify\n\n")
	buf.WriteString(fmt.Sprintf("Generated: %s\n", generatedAt.Format(generatedLayout)))
	buf.WriteString(fmt.Sprintf("Total: %d albums\n\n", len(entries)))
	buf.WriteString("---\n")

	for _, g := range groupByDestination(entries) {
		buf.WriteString(fmt.Sprintf("\n## %s (%d)\n\n", g.name, len(g.entries)))
		for i, e := range g.entries {
			buf.WriteString(fmt.Sprintf("%d. [%s - %s](%s) - tags: %s\n", i+1, e.Artist, e.Album, e.SourceURL, tagList(e.Tags)))
		}
	}

	return buf.Bytes()
}

// WriteNotFoundReport writes the dated report into dir, overwriting a report of the same date.
//
// No file is written when entries is empty; the returned path is then "".
func WriteNotFoundReport(dir string, entries []models.NotFoundEntry, now time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create report directory: %v", shared.ErrWrite, err)
	}

	path := filepath.Join(dir, ReportFilename(now))
	if err := os.WriteFile(path, RenderNotFound(entries, now), 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write report: %v", shared.ErrWrite, err)
	}
	return path, nil
}

// RenderReleases converts classified releases to plain text, one numbered block per release
func RenderReleases(page int, releases []models.ClassifiedRelease) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Page: %d\n", page))
	buf.WriteString(fmt.Sprintf("Releases: %d\n\n", len(releases)))

	for i, r := range releases {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, r.Artist, r.Album, r.Destination))
		buf.WriteString(fmt.Sprintf("   Tags: %s\n", tagList(r.Tags)))
		if r.SourceURL != "" {
			buf.WriteString(fmt.Sprintf("   URL: %s\n", r.SourceURL))
		}
	}

	return buf.Bytes()
}
