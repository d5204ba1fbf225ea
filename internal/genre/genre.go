// Package genre assigns each release to exactly one destination playlist from its tags.
package genre

import (
	"strings"

	"github.com/desertthunder/crate/internal/models"
)

type rule struct {
	destination models.Destination
	keywords    []string
}

// dnb shadows every other rule; ambient applies only when no primary rule matched.
var (
	dnb     = rule{models.DNB, []string{"Drum n Bass", "Jungle", "Hardcore"}}
	primary = []rule{
		{models.Bass, []string{"Breaks", "Dubstep", "Bass"}},
		{models.House, []string{"House"}},
		{models.Techno, []string{"Techno"}},
	}
	ambient = rule{models.Ambient, []string{"Ambient"}}
)

// Classify maps a tag set to its destination. Matching is exact and case-insensitive.
func Classify(tags []string) models.Destination {
	if len(tags) == 0 {
		return models.Rest
	}

	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[normalize(tag)] = struct{}{}
	}

	if dnb.matches(set) {
		return dnb.destination
	}
	for _, r := range primary {
		if r.matches(set) {
			return r.destination
		}
	}
	if ambient.matches(set) {
		return ambient.destination
	}
	return models.Rest
}

// ClassifyRelease wraps r with its destination.
func ClassifyRelease(r models.Release) models.ClassifiedRelease {
	return models.ClassifiedRelease{Release: r, Destination: Classify(r.Tags)}
}

func (r rule) matches(set map[string]struct{}) bool {
	for _, kw := range r.keywords {
		if _, ok := set[normalize(kw)]; ok {
			return true
		}
	}
	return false
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
