// Package channels registers the listing definitions of every supported
// sales channel with the listing registry.
// Import this package to ensure all channels are registered.
package channels

import (
	"slices"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// Channel identifiers. Companion stock feeds are never reported on their own.
const (
	Choice        listing.Channel = "choice"
	ChoiceStock   listing.Channel = "choice_stock"
	Rakuten       listing.Channel = "rakuten"
	ANA           listing.Channel = "ana"
	Furunavi      listing.Channel = "furunavi"
	JAL           listing.Channel = "jal"
	Maifuru       listing.Channel = "maifuru"
	Mynavi        listing.Channel = "mynavi"
	Premium       listing.Channel = "premium"
	JRE           listing.Channel = "jre"
	Satofull      listing.Channel = "satofull"
	SatofullStock listing.Channel = "satofull_stock"
	Amazon        listing.Channel = "amazon"
	Hyakusen      listing.Channel = "hyakusen"
	HyakusenStock listing.Channel = "hyakusen_stock"
	Gurunavi      listing.Channel = "gurunavi"
)

var name = listing.Name

// facts is what the rule chains of most channels look at.
type facts struct {
	found     bool
	status    string // primary status or publication flag
	display   string // visibility setting
	stock     string
	stockMode string // marks unlimited stock
	order     string // order button
	warehouse bool
	sale      listing.Window
	apply     listing.Window
}

func saleWindow(f facts) listing.Window  { return f.sale }
func applyWindow(f facts) listing.Window { return f.apply }

func notFound(f facts, _ string) bool    { return !f.found }
func statusEmpty(f facts, _ string) bool { return !f.found || f.status == "" }
func stockZero(f facts, _ string) bool   { return listing.IsZero(f.stock) }

func statusIn(values ...string) func(facts, string) bool {
	return func(f facts, _ string) bool { return slices.Contains(values, f.status) }
}

func displayIn(values ...string) func(facts, string) bool {
	return func(f facts, _ string) bool { return slices.Contains(values, f.display) }
}

// limitedStockZero matches zero stock unless stockMode equals unlimited.
func limitedStockZero(unlimited string) func(facts, string) bool {
	return func(f facts, _ string) bool {
		return f.stockMode != unlimited && listing.IsZero(f.stock)
	}
}

