package scraper

import (
	"regexp"
	"strings"
)

// formatTag matches bracketed four character tokens such as "[FLAC]" or "[320K]".
var formatTag = regexp.MustCompile(`\[.{4}\]`)

const labelSeparator = "/ "

// Label is the artist and album parsed from an item's display text.
type Label struct {
	Artist string
	Album  string
}

// ParseLabel parses display text of the form "[XXXX]Artist / Album".
//
// It reports false when the text does not split into exactly two non-empty parts.
func ParseLabel(text string) (Label, bool) {
	cleaned := formatTag.ReplaceAllString(text, "")
	parts := strings.Split(cleaned, labelSeparator)
	if len(parts) != 2 {
		return Label{}, false
	}

	artist := strings.TrimSpace(parts[0])
	album := strings.TrimSpace(parts[1])
	if artist == "" || album == "" {
		return Label{}, false
	}
	return Label{Artist: artist, Album: album}, true
}
