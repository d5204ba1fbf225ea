package genre

import (
	"testing"

	"github.com/desertthunder/crate/internal/models"
)

func TestClassify(t *testing.T) {
	tc := []struct {
		name string
		tags []string
		want models.Destination
	}{
		{name: "no tags", tags: nil, want: models.Rest},
		{name: "empty slice", tags: []string{}, want: models.Rest},
		{name: "techno", tags: []string{"Techno"}, want: models.Techno},
		{name: "house", tags: []string{"House"}, want: models.House},
		{name: "breaks is bass", tags: []string{"Breaks"}, want: models.Bass},
		{name: "dubstep is bass", tags: []string{"Dubstep"}, want: models.Bass},
		{name: "ambient alone", tags: []string{"Ambient"}, want: models.Ambient},
		{name: "ambient yields to techno", tags: []string{"Ambient", "Techno"}, want: models.Techno},
		{name: "bass beats house", tags: []string{"House", "Bass"}, want: models.Bass},
		{name: "house beats techno", tags: []string{"Techno", "House"}, want: models.House},
		{name: "dnb beats bass", tags: []string{"Bass", "Drum n Bass"}, want: models.DNB},
		{name: "jungle beats everything", tags: []string{"Techno", "House", "Ambient", "Jungle"}, want: models.DNB},
		{name: "hardcore", tags: []string{"hardcore"}, want: models.DNB},
		{name: "case insensitive", tags: []string{"tEcHnO"}, want: models.Techno},
		{name: "surrounding space", tags: []string{"  House "}, want: models.House},
		{name: "substring does not match", tags: []string{"Deep House"}, want: models.Rest},
		{name: "unknown tags", tags: []string{"Jazz", "Folk"}, want: models.Rest},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.tags); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.tags, got, tt.want)
			}
		})
	}
}

func TestClassifyDNBShadowsAll(t *testing.T) {
	others := []string{"Breaks", "Dubstep", "Bass", "House", "Techno", "Ambient", "Jazz"}
	for _, kw := range []string{"Drum n Bass", "Jungle", "Hardcore"} {
		for _, other := range others {
			tags := []string{other, kw}
			if got := Classify(tags); got != models.DNB {
				t.Errorf("Classify(%v) = %s, want DNB", tags, got)
			}
		}
	}
}

func TestClassifyRelease(t *testing.T) {
	r := models.Release{Artist: "A", Album: "B", Tags: []string{"Ambient"}}
	got := ClassifyRelease(r)
	if got.Destination != models.Ambient {
		t.Errorf("expected AMBIENT, got %s", got.Destination)
	}
	if got.Artist != "A" || got.Album != "B" {
		t.Errorf("expected release fields to be kept, got %+v", got.Release)
	}
}
