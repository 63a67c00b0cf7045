package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

// Channels with one publication flag, one stock column and one sale window.

func init() {
	listing.Register(listing.Definition{
		Channel:    ANA,
		Label:      "ANA",
		Order:      3,
		FileMarker: "ana",
		Key:        listing.KeySpec{Field: name("返礼品識別コード")},
		NameField:  name("返礼品名"),
		Required:   []string{"返礼品識別コード"},
		Classifier: listing.Chain(extractANA, anaRules, listing.PeriodRules(saleWindow)),
	})
	listing.Register(listing.Definition{
		Channel:    Furunavi,
		Label:      "ふるなび",
		Order:      4,
		FileMarker: "ふるなび",
		Key:        listing.KeySpec{Field: name("外部返礼品コード")},
		NameField:  name("返礼品名"),
		Required:   []string{"外部返礼品コード"},
		Classifier: listing.Chain(extractFurunavi, furunaviRules, listing.PeriodRules(saleWindow)),
	})
	listing.Register(listing.Definition{
		Channel:    Premium,
		Label:      "プレミアム",
		Order:      8,
		FileMarker: "プレミアム",
		Key:        listing.KeySpec{Field: name("SKU")},
		NameField:  name("返礼品名"),
		Required:   []string{"SKU"},
		Classifier: listing.Chain(extractPremium, premiumRules, listing.OpenEndedPeriodRules(saleWindow)),
	})
	listing.Register(listing.Definition{
		Channel:    JRE,
		Label:      "JRE",
		Order:      9,
		FileMarker: "jre",
		Key:        listing.KeySpec{Field: name("品番1")},
		NameField:  name("商品名"),
		Required:   []string{"品番1"},
		Classifier: listing.Chain(extractJRE, jreRules, listing.PeriodRules(saleWindow)),
	})
}

var anaRules = []listing.Rule[facts]{
	{Name: "listing flag missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "listing flag private", When: statusIn("1"), Then: listing.Hidden},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

func extractANA(code string, c *listing.Context) facts {
	r, ok := c.Record(ANA, code)
	if !ok {
		return facts{}
	}
	return facts{
		found:  true,
		status: r.Get(name("状態(掲載フラグ)")),
		stock:  r.Get(name("在庫数")),
		sale:   listing.NewWindow(r.Get(name("販売開始日")), r.Get(name("販売終了日"))),
	}
}

var furunaviRules = []listing.Rule[facts]{
	{Name: "sales flag missing", When: statusEmpty, Then: listing.Unregistered},
	{
		Name: "sales or publish flag off",
		When: func(f facts, _ string) bool { return f.status == "off" || f.display == "off" },
		Then: listing.Hidden,
	},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

func extractFurunavi(code string, c *listing.Context) facts {
	r, ok := c.Record(Furunavi, code)
	if !ok {
		return facts{}
	}
	return facts{
		found:   true,
		status:  r.Get(name("販売フラグ")),
		display: r.Get(name("公開フラグ")),
		stock:   r.Get(name("在庫数")),
		sale:    listing.NewWindow(r.Get(name("公開開始日")), r.Get(name("公開終了日"))),
	}
}

var premiumRules = []listing.Rule[facts]{
	{Name: "publish status missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "private or draft", When: statusIn("非公開/下書き", "非公開", "下書き"), Then: listing.Hidden},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

func extractPremium(code string, c *listing.Context) facts {
	r, ok := c.Record(Premium, code)
	if !ok {
		return facts{}
	}
	return facts{
		found:  true,
		status: r.Get(name("公開ステータス")),
		stock:  r.Get(name("在庫数")),
		sale:   listing.NewWindow(r.Get(name("公開開始日時")), r.Get(name("公開終了日時"))),
	}
}

var jreRules = []listing.Rule[facts]{
	{Name: "listing status missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "listing rejected", When: statusIn("掲載不可"), Then: listing.Hidden},
	{Name: "limited stock zero", When: limitedStockZero("無制限"), Then: listing.OutOfStock},
}

func extractJRE(code string, c *listing.Context) facts {
	r, ok := c.Record(JRE, code)
	if !ok {
		return facts{}
	}
	return facts{
		found:     true,
		status:    r.Get(name("掲載ステータス")),
		stock:     r.Get(name("在庫数")),
		stockMode: r.Get(name("在庫扱いの種別")),
		sale:      listing.NewWindow(r.Get(name("販売期間（開始）")), r.Get(name("販売期間（終了）"))),
	}
}
