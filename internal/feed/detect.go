package feed

import (
	"fmt"
	"strings"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// Detect finds the channel of an uploaded file from its name. Channels are
// tried in portal order; a portal's stock feed is tried before the portal
// itself because its marker contains the portal's marker.
func Detect(fileName string) (listing.Definition, error) {
	lower := strings.ToLower(fileName)
	for _, def := range detectionOrder() {
		if def.FileMarker != "" && strings.Contains(lower, strings.ToLower(def.FileMarker)) {
			return def, nil
		}
	}
	return listing.Definition{}, fmt.Errorf("%s: %w", fileName, ErrUnknownFile)
}

func detectionOrder() []listing.Definition {
	var order []listing.Definition
	for _, def := range listing.Portals() {
		if companion, ok := listing.Lookup(def.Companion); ok && !companion.Portal() {
			order = append(order, companion)
		}
		order = append(order, def)
	}
	return order
}

// CheckSet validates the channels of one upload: no channel twice and every
// feed together with its companion.
func CheckSet(tables []*Table) error {
	seen := make(map[listing.Channel]string, len(tables))
	for _, t := range tables {
		if prev, dup := seen[t.Channel]; dup {
			return fmt.Errorf("%s and %s: %w", prev, t.FileName, ErrDuplicateChannel)
		}
		seen[t.Channel] = t.FileName
	}
	for _, t := range tables {
		def, ok := listing.Lookup(t.Channel)
		if !ok || def.Companion == "" {
			continue
		}
		if _, ok := seen[def.Companion]; !ok {
			return fmt.Errorf("%s requires %s: %w", def.Label, labelOf(def.Companion), ErrMissingPair)
		}
	}
	return nil
}

func labelOf(ch listing.Channel) string {
	if def, ok := listing.Lookup(ch); ok {
		return def.Label
	}
	return string(ch)
}
