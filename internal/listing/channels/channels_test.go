package channels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

const asOf = "20240101"

// load indexes rows for a registered channel. A nil header loads a
// headerless feed.
func load(t *testing.T, c *listing.Context, ch listing.Channel, header []string, rows ...[]string) {
	t.Helper()
	def, ok := listing.Lookup(ch)
	require.True(t, ok, "channel %s not registered", ch)
	var h *listing.Header
	if header != nil {
		h = listing.NewHeader(header)
	}
	c.Load(def, listing.NewRecords(h, rows))
}

// choiceRow builds a headerless choice row.
func choiceRow(code, display, start, end string) []string {
	row := make([]string, 103)
	row[1] = "M-" + code
	row[2] = "name " + code
	row[97] = display
	row[98] = start
	row[99] = end
	row[102] = code
	return row
}

func TestPortalOrder(t *testing.T) {
	var got []listing.Channel
	for _, def := range listing.Portals() {
		got = append(got, def.Channel)
	}
	assert.Equal(t, []listing.Channel{
		Choice, Rakuten, ANA, Furunavi, JAL, Maifuru, Mynavi,
		Premium, JRE, Satofull, Amazon, Hyakusen, Gurunavi,
	}, got)

	for _, stock := range []listing.Channel{ChoiceStock, SatofullStock, HyakusenStock} {
		def, ok := listing.Lookup(stock)
		require.True(t, ok)
		assert.False(t, def.Portal())
		assert.NotEmpty(t, def.Companion)
	}
}

func TestChoice(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Choice, nil,
		choiceRow("12abcd001", "1", "", "20991231"),
		choiceRow("12ABCD002", "1", "", "20200101"),
		choiceRow("12ABCD003", "", "", ""),
		choiceRow("12ABCD004", "0.0", "", ""),
		choiceRow("12ABCD005", "1", "", ""),
		choiceRow("12ABCD006", "1", "20250101", ""),
	)
	load(t, c, ChoiceStock, nil,
		[]string{"12ABCD004", "", "M-12ABCD004", "", "0"},
		[]string{"12ABCD005", "", "M-12ABCD005", "", "0"},
		[]string{"12ABCD006", "", "M-12ABCD006", "", "3"},
	)

	tests := []struct {
		code string
		want listing.Status
	}{
		{"12ABCD001", listing.Published},
		{"12ABCD002", listing.Closed},
		{"12ABCD003", listing.Unregistered},
		{"12ABCD004", listing.Hidden}, // hidden wins over zero stock
		{"12ABCD005", listing.OutOfStock},
		{"12ABCD006", listing.NotYetOpen},
		{"UNKNOWN", listing.Unregistered},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, listing.Classify(Choice, tt.code, c))
			assert.Equal(t, tt.want, listing.Classify(Choice, tt.code, c), "classification must be deterministic")
		})
	}
}

var rakutenHeader = RakutenRequired

// rakutenRow fills a Rakuten row; RakutenRequired order is
// manage, item, name, warehouse, search, start, end, order, sku, system sku, stock, sku warehouse.
func rakutenRow(manage, item, warehouse, search, start, end, order, sku, stock string) []string {
	return []string{manage, item, "name", warehouse, search, start, end, order, sku, "", stock, ""}
}

func TestRakutenGroupFallback(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Rakuten, rakutenHeader,
		// group of two: only the second row carries stock 0
		rakutenRow("pair", "PAIR-1", "0", "1", "", "", "1", "", ""),
		rakutenRow("pair", "PAIR-2", "0", "1", "", "", "1", "", "0"),
		// group of three with the same shape
		rakutenRow("trio", "TRIO-1", "0", "1", "", "20200101", "1", "", ""),
		rakutenRow("trio", "TRIO-2", "0", "1", "", "20200101", "1", "", "0"),
		rakutenRow("trio", "TRIO-3", "0", "1", "", "20200101", "1", "", ""),
	)

	assert.Equal(t, listing.OutOfStock, listing.Classify(Rakuten, "PAIR-1", c))
	assert.Equal(t, listing.OutOfStock, listing.Classify(Rakuten, "PAIR-2", c))
	assert.Equal(t, listing.Closed, listing.Classify(Rakuten, "TRIO-1", c), "ambiguous fallback falls through to dates")
	assert.Equal(t, listing.OutOfStock, listing.Classify(Rakuten, "TRIO-2", c))
}

func TestRakutenRules(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Rakuten, rakutenHeader,
		rakutenRow("", "NOPARENT", "0", "1", "", "", "1", "", "5"),
		rakutenRow("a", "HIDDEN", "1", "0", "", "", "1", "", "0"),
		rakutenRow("b", "STORED", "1", "1", "", "", "1", "", "0"),
		rakutenRow("c", "ZERO", "0", "1", "", "", "0", "", "0"),
		rakutenRow("d", "NOORDER", "0", "1", "", "", "0", "", "5"),
		rakutenRow("e", "FUTURE", "0", "1", "2025-01-01 00:00", "", "1", "", "5"),
		rakutenRow("f", "OPEN", "0", "1", "2023-01-01", "2099-12-31", "1", "", "5"),
	)

	tests := []struct {
		code string
		want listing.Status
	}{
		{"NOPARENT", listing.Unregistered},
		{"MISSING", listing.Unregistered},
		{"HIDDEN", listing.Hidden},
		{"STORED", listing.Warehouse},
		{"ZERO", listing.OutOfStock},
		{"NOORDER", listing.NotYetOpen},
		{"FUTURE", listing.NotYetOpen},
		{"OPEN", listing.Published},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, listing.Classify(Rakuten, tt.code, c))
		})
	}
}

func TestRakutenWarehouseFromLine(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Rakuten, rakutenHeader,
		rakutenRow("g", "ITEM-G", "0", "1", "", "", "1", "", "5"),
		// a SKU line whose management number equals the parent id
		rakutenRow("other", "ITEM-O", "1", "1", "", "", "1", "G", "5"),
	)
	assert.Equal(t, listing.Warehouse, listing.Classify(Rakuten, "ITEM-G", c))
}

func TestRakutenItemOrder(t *testing.T) {
	h := listing.NewHeader(rakutenHeader)
	row := func(warehouse, search, stock, systemSKU string) listing.Record {
		cells := rakutenRow("m", "DUP", warehouse, search, "", "", "1", "", stock)
		cells[9] = systemSKU
		return listing.NewRecord(h, cells)
	}
	less := rakutenItemOrder(asOf)

	noSKU := row("0", "1", "9", "")
	stored := row("1", "1", "9", "S1")
	visible := row("0", "1", "1", "S2")
	visibleMore := row("0", "1", "5", "S3")

	assert.Less(t, less(stored, noSKU), 0, "rows with a system SKU come first")
	assert.Less(t, less(visible, stored), 0, "warehouse off ranks higher")
	assert.Less(t, less(visibleMore, visible), 0, "more stock ranks higher")
	assert.Equal(t, 0, less(noSKU, row("1", "0", "0", "")), "rows without SKU keep file order")
}

func TestSatofull(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Satofull, []string{"お礼品ID", "お礼品名", "公開フラグ", "受付開始日", "受付終了日"},
		[]string{"101", "お米 [12abcd001]", "1", "", ""},
		[]string{"102", "お肉 [12ABCD002]", "2", "", ""},
		[]string{"103", "お魚 [12ABCD003]", "1", "", ""},
		[]string{"104", "野菜 [12ABCD004]", "1", "", "20200101"},
		[]string{"105", "果物 [12ABCD005]", "", "", ""},
		[]string{"106", "no code", "1", "", ""},
		[]string{"107", "卵 [12ABCD007]", "1", "", ""},
		[]string{"108", "蜂蜜 [12ABCD008]", "1", "", ""},
	)
	load(t, c, SatofullStock, []string{"お礼品ID", "全在庫数", "受付開始日", "受付終了日"},
		[]string{"101", "10", "", "20991231"},
		[]string{"102", "0", "", ""},
		[]string{"103", "0", "", ""},
		[]string{"107", "5", "20250101", ""},
		[]string{"108", "5", "20250101", "20251231"},
	)

	assert.Equal(t, listing.Published, listing.Classify(Satofull, "12ABCD001", c))
	assert.Equal(t, listing.Hidden, listing.Classify(Satofull, "12ABCD002", c))
	assert.Equal(t, listing.OutOfStock, listing.Classify(Satofull, "12ABCD003", c))
	assert.Equal(t, listing.Closed, listing.Classify(Satofull, "12ABCD004", c), "own dates used without a stock row")
	assert.Equal(t, listing.Unregistered, listing.Classify(Satofull, "12ABCD005", c))
	assert.Equal(t, listing.Published, listing.Classify(Satofull, "12ABCD007", c), "future start without end date")
	assert.Equal(t, listing.NotYetOpen, listing.Classify(Satofull, "12ABCD008", c))
	assert.Equal(t, []string{"12ABCD001", "12ABCD002", "12ABCD003", "12ABCD004", "12ABCD005", "12ABCD007", "12ABCD008"}, c.Index(Satofull).Codes())
}

func TestFlagChannels(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, ANA, []string{"返礼品識別コード", "状態(掲載フラグ)", "在庫数", "販売開始日", "販売終了日"},
		[]string{"A1", "0", "5", "", ""},
		[]string{"A2", "1", "0", "", ""},
		[]string{"A3", "0", "0", "", ""},
		[]string{"A4", "", "5", "", ""},
		[]string{"A5", "0", "5", "2024/02/01", ""},
	)
	load(t, c, Furunavi, []string{"外部返礼品コード", "販売フラグ", "公開フラグ", "在庫数", "公開開始日", "公開終了日"},
		[]string{"F1", "on", "on", "5", "", ""},
		[]string{"F2", "on", "off", "0", "", ""},
		[]string{"F3", "", "on", "5", "", ""},
		[]string{"F4", "on", "on", "0", "", ""},
		[]string{"F5", "on", "on", "5", "", "2023/12/31"},
	)
	load(t, c, Premium, []string{"SKU", "公開ステータス", "在庫数", "公開開始日時", "公開終了日時"},
		[]string{"P1", "公開", "5", "", ""},
		[]string{"P2", "非公開/下書き", "5", "", ""},
		[]string{"P3", "公開", "0", "", ""},
		[]string{"P4", "", "5", "", ""},
		[]string{"P5", "公開", "5", "2025/01/01", ""},
		[]string{"P6", "公開", "5", "2025/01/01", "2025/12/31"},
		[]string{"P7", "公開", "5", "", "2023/12/31"},
	)
	load(t, c, JRE, []string{"品番1", "掲載ステータス", "在庫数", "在庫扱いの種別", "販売期間（開始）", "販売期間（終了）"},
		[]string{"J1", "掲載中", "0", "無制限", "", ""},
		[]string{"J2", "掲載中", "0", "通常", "", ""},
		[]string{"J3", "掲載不可", "0", "通常", "", ""},
		[]string{"J4", "", "0", "通常", "", ""},
	)

	tests := []struct {
		ch   listing.Channel
		code string
		want listing.Status
	}{
		{ANA, "A1", listing.Published},
		{ANA, "A2", listing.Hidden},
		{ANA, "A3", listing.OutOfStock},
		{ANA, "A4", listing.Unregistered},
		{ANA, "A5", listing.NotYetOpen},
		{ANA, "A9", listing.Unregistered},
		{Furunavi, "F1", listing.Published},
		{Furunavi, "F2", listing.Hidden},
		{Furunavi, "F3", listing.Unregistered},
		{Furunavi, "F4", listing.OutOfStock},
		{Furunavi, "F5", listing.Closed},
		{Premium, "P1", listing.Published},
		{Premium, "P2", listing.Hidden},
		{Premium, "P3", listing.OutOfStock},
		{Premium, "P4", listing.Unregistered},
		{Premium, "P5", listing.Published}, // future start without end date
		{Premium, "P6", listing.NotYetOpen},
		{Premium, "P7", listing.Closed},
		{JRE, "J1", listing.Published},
		{JRE, "J2", listing.OutOfStock},
		{JRE, "J3", listing.Hidden},
		{JRE, "J4", listing.Unregistered},
	}
	for _, tt := range tests {
		t.Run(string(tt.ch)+"/"+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, listing.Classify(tt.ch, tt.code, c))
		})
	}
}

func TestCatalogChannels(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, JAL, []string{"返礼品番号", "ステータス", "表示設定", "在庫数", "在庫設定", "表示開始日時", "表示終了日時", "寄附開始日時", "寄附終了日時"},
		[]string{"J1", "受付中", "表示", "5", "", "", "", "", ""},
		[]string{"J2", "品切れ", "非表示", "0", "", "", "", "", ""},
		[]string{"J3", "受付中", "非表示", "0", "", "", "", "", ""},
		[]string{"J4", "受付中", "表示", "0", "在庫設定あり", "", "", "", ""},
		[]string{"J5", "受付中", "表示", "0", "在庫設定なし", "", "", "", ""},
		[]string{"J6", "受付中", "表示", "5", "", "", "", "2025/01/01", ""},
		[]string{"J7", "受付中", "表示", "5", "", "", "2023/12/31", "2025/01/01", ""},
		[]string{"J8", "受付中", "表示", "5", "", "2099/01/01", "", "2020/01/01", "2099/12/31"},
		[]string{"J9", "受付中", "表示", "5", "", "", "2023/12/31", "", "2099/12/31"},
		[]string{"J10", "受付中", "表示", "", "在庫0", "", "", "", ""},
		[]string{"J11", "受付中", "表示", "", "在庫設定なし", "", "", "", ""},
		[]string{"J12", "受付中", "表示", "5", "", "2099/01/01", "", "", ""},
	)
	load(t, c, Maifuru, []string{"返礼品番号", "ステータス", "状態", "在庫数", "表示開始日時", "表示終了日時", "寄附開始日時", "寄附終了日時"},
		[]string{"M1", "受付中", "表示", "5", "", "", "", ""},
		[]string{"M2", "売り切れ", "表示", "5", "", "", "", ""},
		[]string{"M3", "受付中", "非表示", "5", "", "", "", ""},
		[]string{"M4", "受付中", "表示", "5", "", "", "", "2020/01/01"},
		[]string{"M5", "受付中", "表示", "5", "", "2099/12/31", "", "2020/01/01"},
		[]string{"M6", "受付中", "表示", "5", "2025/01/01", "", "", ""},
		[]string{"M7", "受付中", "表示", "5", "", "2023/12/31", "2025/01/01", ""},
		[]string{"M8", "受付中", "表示", "5", "", "2099/12/31", "2025/01/01", ""},
		[]string{"M9", "受付終了", "表示", "5", "", "", "", ""},
		[]string{"M10", "受付中", "表示", "0", "", "", "", ""},
	)
	load(t, c, Mynavi, []string{"返礼品番号", "ステータス", "表示設定", "在庫数", "表示開始日時", "表示終了日時", "寄附開始日時", "寄附終了日時"},
		[]string{"Y1", "受付中", "非表示", "0", "", "", "", ""},
		[]string{"Y2", "受付終了", "非表示", "0", "", "", "", ""},
		[]string{"Y3", "", "表示", "5", "", "", "", ""},
		[]string{"Y4", "売り切れ", "表示", "5", "", "", "", ""},
		[]string{"Y5", "受付中", "表示", "5", "2023/01/01", "", "2025/01/01", ""},
		[]string{"Y6", "受付中", "表示", "5", "", "2099/12/31", "", "2023/12/31"},
	)

	tests := []struct {
		ch   listing.Channel
		code string
		want listing.Status
	}{
		{JAL, "J1", listing.Published},
		{JAL, "J2", listing.Closed},
		{JAL, "J3", listing.Hidden},
		{JAL, "J4", listing.OutOfStock},
		{JAL, "J5", listing.OutOfStock}, // zero stock counts whatever the stock setting
		{JAL, "J6", listing.NotYetOpen},
		{JAL, "J7", listing.NotYetOpen}, // donation start paired with display end
		{JAL, "J8", listing.Published},  // donation start wins over display start
		{JAL, "J9", listing.Published},  // donation end wins over display end
		{JAL, "J10", listing.OutOfStock},
		{JAL, "J11", listing.Published},
		{JAL, "J12", listing.NotYetOpen},
		{Maifuru, "M1", listing.Published},
		{Maifuru, "M2", listing.Hidden},
		{Maifuru, "M3", listing.Hidden},
		{Maifuru, "M4", listing.Published}, // no display end skips the donation window
		{Maifuru, "M5", listing.Closed},
		{Maifuru, "M6", listing.NotYetOpen},
		{Maifuru, "M7", listing.Closed},
		{Maifuru, "M8", listing.NotYetOpen},
		{Maifuru, "M9", listing.Closed},
		{Maifuru, "M10", listing.OutOfStock},
		{Mynavi, "Y1", listing.Hidden},
		{Mynavi, "Y2", listing.Closed},
		{Mynavi, "Y3", listing.Unregistered},
		{Mynavi, "Y4", listing.Hidden},
		{Mynavi, "Y5", listing.Published},
		{Mynavi, "Y6", listing.Closed},
	}
	for _, tt := range tests {
		t.Run(string(tt.ch)+"/"+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, listing.Classify(tt.ch, tt.code, c))
		})
	}
}

func TestAmazon(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Amazon, []string{"出品者SKU", "数量"},
		[]string{"az1", "3"},
		[]string{"az2", "0"},
		[]string{"az3", ""},
	)
	assert.Equal(t, listing.Published, listing.Classify(Amazon, "AZ1", c))
	assert.Equal(t, listing.OutOfStock, listing.Classify(Amazon, "AZ2", c))
	assert.Equal(t, listing.Published, listing.Classify(Amazon, "AZ3", c))
	assert.Equal(t, listing.Unregistered, listing.Classify(Amazon, "AZ4", c))
}

func TestHyakusenParentLine(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Hyakusen, []string{"返礼品コード", "返礼品名称", "公開フラグ", "公開開始日時", "公開終了日時", "申込開始日時", "申込終了日時"},
		[]string{"h1（親）", "set", "1", "", "", "", ""},
		[]string{"h2", "", "0", "", "", "", ""},
		[]string{"h3", "", "1", "", "", "2025-01-01", ""},
		[]string{"h4", "", "1", "", "", "", ""},
	)
	load(t, c, HyakusenStock, []string{"返礼品コード", "在庫数"},
		[]string{"h1（親）", "0"},
		[]string{"h4", "2"},
	)

	assert.Equal(t, listing.OutOfStock, listing.Classify(Hyakusen, "H1", c), "parent line and its stock are found")
	assert.Equal(t, listing.Hidden, listing.Classify(Hyakusen, "H2", c))
	assert.Equal(t, listing.NotYetOpen, listing.Classify(Hyakusen, "H3", c))
	assert.Equal(t, listing.Published, listing.Classify(Hyakusen, "H4", c))
	assert.Equal(t, listing.Unregistered, listing.Classify(Hyakusen, "H5", c))

	c.ParentMarker = ""
	assert.Equal(t, listing.Unregistered, listing.Classify(Hyakusen, "H1", c))
}

func TestGurunaviLayouts(t *testing.T) {
	listingLayout := listing.NewContext(asOf)
	load(t, listingLayout, Gurunavi, []string{"商品番号", "公開状態", "在庫数", "在庫無制限", "販売開始日時", "販売終了日時"},
		[]string{"G1", "公開", "5", "", "", ""},
		[]string{"G2", "非公開", "5", "", "", ""},
		[]string{"G3", "公開", "0", "", "", ""},
		[]string{"G4", "公開", "0", "1", "", "2020/01/01"},
		[]string{"G5", "", "5", "", "", ""},
	)
	assert.Equal(t, listing.Published, listing.Classify(Gurunavi, "G1", listingLayout))
	assert.Equal(t, listing.Hidden, listing.Classify(Gurunavi, "G2", listingLayout))
	assert.Equal(t, listing.OutOfStock, listing.Classify(Gurunavi, "G3", listingLayout))
	assert.Equal(t, listing.Closed, listing.Classify(Gurunavi, "G4", listingLayout))
	assert.Equal(t, listing.Unregistered, listing.Classify(Gurunavi, "G5", listingLayout))

	sales := listing.NewContext(asOf)
	load(t, sales, Gurunavi, []string{"商品番号", "販売状態", "在庫数", "販売終了日時"},
		[]string{"S1", "販売中", "5", "2020/01/01"},
		[]string{"S2", "販売終了", "5", ""},
		[]string{"S3", "停止中", "0", ""},
		[]string{"S4", "販売中", "0", ""},
	)
	assert.Equal(t, listing.Published, listing.Classify(Gurunavi, "S1", sales), "sales layout has no date rules")
	assert.Equal(t, listing.Closed, listing.Classify(Gurunavi, "S2", sales))
	assert.Equal(t, listing.Hidden, listing.Classify(Gurunavi, "S3", sales))
	assert.Equal(t, listing.OutOfStock, listing.Classify(Gurunavi, "S4", sales))

	unknown := listing.NewContext(asOf)
	load(t, unknown, Gurunavi, []string{"商品番号", "在庫数"}, []string{"U1", "5"})
	assert.Equal(t, listing.Unregistered, listing.Classify(Gurunavi, "U1", unknown))
	assert.Equal(t, listing.Unregistered, listing.Classify(Gurunavi, "NONE", unknown))

	def, _ := listing.Lookup(Gurunavi)
	assert.Contains(t, def.Classifier.Rules, "sales ended")
	assert.Contains(t, def.Classifier.Rules, "private")
}

func TestEndToEnd(t *testing.T) {
	c := listing.NewContext(asOf)
	load(t, c, Choice, nil,
		choiceRow("12ABCD001", "1", "", "20991231"),
		choiceRow("12ABCD002", "1", "", ""),
	)
	load(t, c, ChoiceStock, nil)
	load(t, c, Amazon, []string{"出品者SKU", "数量"}, []string{"12abcd001", "0"})

	rows, err := listing.Aggregate(t.Context(), listing.AggregateInput{
		Base:     Choice,
		Channels: []listing.Channel{Amazon, Choice},
		Context:  c,
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "name 12ABCD001", rows[0].Name)
	assert.Equal(t, listing.Published, rows[0].Status(Choice))
	assert.Equal(t, listing.OutOfStock, rows[0].Status(Amazon))
	assert.Equal(t, listing.NeedsReview, rows[0].Check)
	assert.Equal(t, 1, rows[0].Published)

	assert.Equal(t, listing.Unregistered, rows[1].Status(Amazon))
	assert.Equal(t, listing.NeedsReview, rows[1].Check)
}
