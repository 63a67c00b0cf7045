package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

// Channels exported from the same catalog system: a status column, a
// visibility setting, stock, and separate display and donation windows.

type catalogChannel struct {
	label   string
	order   int
	marker  string
	display string // visibility column
	rules   []listing.Rule[facts]
	period  []listing.Rule[facts]
}

var catalogs = map[listing.Channel]catalogChannel{
	JAL: {
		label:   "JAL",
		order:   5,
		marker:  "jal",
		display: "表示設定",
		rules:   []listing.Rule[facts]{
			{Name: "status missing", When: statusEmpty, Then: listing.Unregistered},
			{Name: "closed or sold out", When: statusIn("受付終了", "品切れ"), Then: listing.Closed},
			{Name: "display hidden", When: displayIn("非表示"), Then: listing.Hidden},
			{Name: "stock zero", When: jalStockZero, Then: listing.OutOfStock},
		},
		period: listing.PeriodRules(jalWindow),
	},
	Maifuru: {
		label:   "まいふる",
		order:   6,
		marker:  "まいふる",
		display: "状態",
		rules:   catalogRules,
		period:  listing.DisplayFirstRules(saleWindow, applyWindow),
	},
	Mynavi: {
		label:   "マイナビ",
		order:   7,
		marker:  "マイナビ",
		display: "表示設定",
		rules:   catalogRules,
		period:  listing.DisplayFirstRules(saleWindow, applyWindow),
	},
}

var catalogRules = []listing.Rule[facts]{
	{Name: "status missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "sold out", When: statusIn("売り切れ"), Then: listing.Hidden},
	{Name: "closed", When: statusIn("受付終了"), Then: listing.Closed},
	{Name: "display hidden", When: displayIn("非表示"), Then: listing.Hidden},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

func init() {
	for _, ch := range []listing.Channel{JAL, Maifuru, Mynavi} {
		registerCatalog(ch, catalogs[ch])
	}
}

func registerCatalog(ch listing.Channel, cat catalogChannel) {
	listing.Register(listing.Definition{
		Channel:    ch,
		Label:      cat.label,
		Order:      cat.order,
		FileMarker: cat.marker,
		Key:        listing.KeySpec{Field: name("返礼品番号")},
		NameField:  name("返礼品名"),
		Required:   []string{"返礼品番号"},
		Classifier: listing.Chain(catalogExtractor(ch, cat.display), cat.rules, cat.period),
	})
}

func catalogExtractor(ch listing.Channel, display string) func(string, *listing.Context) facts {
	return func(code string, c *listing.Context) facts {
		r, ok := c.Record(ch, code)
		if !ok {
			return facts{}
		}
		return facts{
			found:     true,
			status:    r.Get(name("ステータス")),
			display:   r.Get(name(display)),
			stock:     r.Get(name("在庫数")),
			stockMode: r.Get(name("在庫設定")),
			sale:      listing.NewWindow(r.Get(name("表示開始日時")), r.Get(name("表示終了日時"))),
			apply:     listing.NewWindow(r.Get(name("寄附開始日時")), r.Get(name("寄附終了日時"))),
		}
	}
}

// jalStockZero reads 在庫設定 in place of an empty 在庫数.
func jalStockZero(f facts, _ string) bool {
	if f.stock == "" {
		return f.stockMode == "在庫0"
	}
	return listing.IsZero(f.stock)
}

// jalWindow takes each side from the donation window when set and from the
// display window otherwise.
func jalWindow(f facts) listing.Window {
	w := f.apply
	if w.Start == "" {
		w.Start = f.sale.Start
	}
	if w.End == "" {
		w.End = f.sale.End
	}
	return w
}
