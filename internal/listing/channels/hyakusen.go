package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

func init() {
	listing.Register(listing.Definition{
		Channel:    Hyakusen,
		Label:      "百選",
		Order:      12,
		FileMarker: "百選",
		Key:        listing.KeySpec{Field: name("返礼品コード")},
		NameField:  name("返礼品名称"),
		Required:   []string{"返礼品コード"},
		Companion:  HyakusenStock,
		Classifier: listing.Chain(
			extractHyakusen,
			hyakusenRules,
			listing.TwoPeriodRules(saleWindow, applyWindow),
		),
	})
	listing.Register(listing.Definition{
		Channel:    HyakusenStock,
		Label:      "百選在庫",
		FileMarker: "百選在庫",
		Key:        listing.KeySpec{Field: name("返礼品コード")},
		Required:   []string{"返礼品コード"},
		Companion:  Hyakusen,
	})
}

var hyakusenRules = []listing.Rule[facts]{
	{Name: "item missing", When: notFound, Then: listing.Unregistered},
	{Name: "publish flag off", When: statusIn("0"), Then: listing.Hidden},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

// Grouped items are listed under their parent line "<code>（親）". Whichever
// key matched is also used for the stock feed.
func extractHyakusen(code string, c *listing.Context) facts {
	r, key, ok := c.Index(Hyakusen).LookupWithParent(code, c.ParentMarker)
	if !ok {
		return facts{}
	}
	f := facts{
		found:  true,
		status: r.Get(name("公開フラグ")),
		stock:  r.Get(name("在庫数")),
		sale:   listing.NewWindow(r.Get(name("公開開始日時")), r.Get(name("公開終了日時"))),
		apply:  listing.NewWindow(r.Get(name("申込開始日時")), r.Get(name("申込終了日時"))),
	}
	if s, ok := c.Record(HyakusenStock, key); ok {
		f.stock = s.Get(name("在庫数"))
	}
	return f
}
