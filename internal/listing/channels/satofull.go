package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

// Satofull column headers.
const (
	SatofullItemName = "お礼品名"
	SatofullItemID   = "お礼品ID"

	satofullPublish   = "公開フラグ"
	satofullStock     = "全在庫数"
	satofullStartDate = "受付開始日"
	satofullEndDate   = "受付終了日"
)

func init() {
	listing.Register(listing.Definition{
		Channel:    Satofull,
		Label:      "さとふる",
		Order:      10,
		FileMarker: "さとふる",
		// The item code is embedded in the item name as "[CODE]".
		Key:        listing.KeySpec{Field: name(SatofullItemName), Bracket: true},
		NameField:  name(SatofullItemName),
		Required:   []string{SatofullItemName, SatofullItemID},
		Companion:  SatofullStock,
		Classifier: listing.Chain(extractSatofull, satofullRules, listing.OpenEndedPeriodRules(saleWindow)),
	})
	listing.Register(listing.Definition{
		Channel:    SatofullStock,
		Label:      "さとふる在庫",
		FileMarker: "さとふる在庫",
		Key:        listing.KeySpec{Field: name(SatofullItemID)},
		Required:   []string{SatofullItemID},
		Companion:  Satofull,
	})
}

var satofullRules = []listing.Rule[facts]{
	{Name: "publish flag missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "publish flag hidden", When: statusIn("2"), Then: listing.Hidden},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

// Stock and acceptance dates live in the stock feed, joined by item ID. The
// listing's own dates are used when the stock feed has no row for it.
func extractSatofull(code string, c *listing.Context) facts {
	r, ok := c.Record(Satofull, code)
	if !ok {
		return facts{}
	}
	f := facts{found: true, status: r.Get(name(satofullPublish))}

	dates := r
	if s, ok := c.Record(SatofullStock, listing.NormalizeCode(r.Get(name(SatofullItemID)))); ok {
		f.stock = s.Get(name(satofullStock))
		dates = s
	}
	f.sale = listing.NewWindow(dates.Get(name(satofullStartDate)), dates.Get(name(satofullEndDate)))
	return f
}
