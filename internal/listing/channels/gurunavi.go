package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

// Gurunavi exports come in two layouts. The listing layout carries a
// publication state and a sale window, the sales layout a sales state only.
const (
	gurunaviListingState = "公開状態"
	gurunaviSalesState   = "販売状態"
)

var (
	gurunaviListingChain = listing.Chain(
		gurunaviExtractor(gurunaviListingState),
		[]listing.Rule[facts]{
			{Name: "publication state missing", When: statusEmpty, Then: listing.Unregistered},
			{Name: "private", When: statusIn("非公開"), Then: listing.Hidden},
			{Name: "limited stock zero", When: limitedStockZero("1"), Then: listing.OutOfStock},
		},
		listing.PeriodRules(saleWindow),
	)
	gurunaviSalesChain = listing.Chain(
		gurunaviExtractor(gurunaviSalesState),
		[]listing.Rule[facts]{
			{Name: "sales state missing", When: statusEmpty, Then: listing.Unregistered},
			{Name: "sales ended", When: statusIn("販売終了"), Then: listing.Closed},
			{Name: "sales suspended", When: statusIn("停止中"), Then: listing.Hidden},
			{Name: "limited stock zero", When: limitedStockZero("1"), Then: listing.OutOfStock},
		},
	)
	gurunaviMissingChain = listing.Chain(
		func(string, *listing.Context) facts { return facts{} },
		[]listing.Rule[facts]{{Name: "item or layout unknown", When: notFound, Then: listing.Unregistered}},
	)
)

func init() {
	names := append([]string{}, gurunaviMissingChain.Rules...)
	names = append(names, gurunaviListingChain.Rules...)
	names = append(names, gurunaviSalesChain.Rules...)

	listing.Register(listing.Definition{
		Channel:    Gurunavi,
		Label:      "ぐるなび",
		Order:      13,
		FileMarker: "ぐるなび",
		Key:        listing.KeySpec{Field: name("商品番号")},
		NameField:  name("商品名"),
		Required:   []string{"商品番号"},
		Classifier: listing.Dispatch(pickGurunavi, names),
	})
}

func pickGurunavi(code string, c *listing.Context) listing.Classifier {
	r, ok := c.Record(Gurunavi, code)
	switch {
	case !ok:
		return gurunaviMissingChain
	case r.Has(name(gurunaviListingState)):
		return gurunaviListingChain
	case r.Has(name(gurunaviSalesState)):
		return gurunaviSalesChain
	default:
		return gurunaviMissingChain
	}
}

func gurunaviExtractor(stateColumn string) func(string, *listing.Context) facts {
	return func(code string, c *listing.Context) facts {
		r, ok := c.Record(Gurunavi, code)
		if !ok {
			return facts{}
		}
		return facts{
			found:     true,
			status:    r.Get(name(stateColumn)),
			stock:     r.Get(name("在庫数")),
			stockMode: r.Get(name("在庫無制限")),
			sale:      listing.NewWindow(r.Get(name("販売開始日時")), r.Get(name("販売終了日時"))),
		}
	}
}
