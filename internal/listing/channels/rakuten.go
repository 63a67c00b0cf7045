package channels

import (
	"cmp"
	"math"
	"strconv"
	"strings"

	"github.com/makoto1101/check-publication-status/internal/listing"
)

// Rakuten column headers.
const (
	RakutenManageNo     = "商品管理番号（商品URL）"
	RakutenItemNo       = "商品番号"
	RakutenItemName     = "商品名"
	RakutenWarehouse    = "倉庫指定"
	RakutenSearch       = "サーチ表示"
	RakutenSaleStart    = "販売期間指定（開始日時）"
	RakutenSaleEnd      = "販売期間指定（終了日時）"
	RakutenOrderButton  = "注文ボタン"
	RakutenSKUManageNo  = "SKU管理番号"
	RakutenSystemSKU    = "システム連携用SKU番号"
	RakutenStock        = "在庫数"
	RakutenSKUWarehouse = "SKU倉庫指定"
)

// RakutenRequired lists the columns a Rakuten export must carry.
var RakutenRequired = []string{
	RakutenManageNo, RakutenItemNo, RakutenItemName, RakutenWarehouse,
	RakutenSearch, RakutenSaleStart, RakutenSaleEnd, RakutenOrderButton,
	RakutenSKUManageNo, RakutenSystemSKU, RakutenStock, RakutenSKUWarehouse,
}

// RakutenGroupFilled lists the columns that every row of a management group
// inherits from the group's first row.
var RakutenGroupFilled = []string{
	RakutenItemName, RakutenSearch, RakutenSaleStart, RakutenSaleEnd, RakutenOrderButton,
}

var rakutenRelations = listing.RelationFields{
	Item:  name(RakutenItemNo),
	Group: name(RakutenManageNo),
	Line:  name(RakutenSKUManageNo),
}

func init() {
	listing.Register(listing.Definition{
		Channel:    Rakuten,
		Label:      "楽天",
		Order:      2,
		FileMarker: "楽天",
		Key:        listing.KeySpec{Field: name(RakutenItemNo)},
		NameField:  name(RakutenItemName),
		Required:   RakutenRequired,
		Relations:  &rakutenRelations,
		ItemOrder:  rakutenItemOrder,
		Classifier: listing.Chain(extractRakuten, rakutenRules, listing.PeriodRules(saleWindow)),
	})
}

var rakutenRules = []listing.Rule[facts]{
	{Name: "management number missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "search display off", When: displayIn("0"), Then: listing.Hidden},
	{Name: "in warehouse", When: func(f facts, _ string) bool { return f.warehouse }, Then: listing.Warehouse},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
	{Name: "order button off", When: func(f facts, _ string) bool { return f.order == "0" }, Then: listing.NotYetOpen},
}

func extractRakuten(code string, c *listing.Context) facts {
	rel := c.Relations(Rakuten)
	parent := rel.Parent(code)
	if parent == "" {
		return facts{}
	}

	f := facts{
		found:   true,
		status:  parent,
		stock:   rel.Attr(code, name(RakutenStock)),
		display: rel.Attr(code, name(RakutenSearch)),
		order:   rel.Attr(code, name(RakutenOrderButton)),
		sale: listing.NewWindow(
			rel.Attr(code, name(RakutenSaleStart)),
			rel.Attr(code, name(RakutenSaleEnd)),
		),
		warehouse: rel.Attr(code, name(RakutenWarehouse)) == "1",
	}
	// A SKU line filed under the management number also moves the item to
	// the warehouse.
	if line, ok := rel.ByLine.Lookup(parent); ok && line.Get(name(RakutenWarehouse)) == "1" {
		f.warehouse = true
	}
	return f
}

// rakutenItemOrder ranks rows sharing an item code. Rows carrying a system
// SKU come first, ordered by how sellable they are as of asOf; other rows
// keep file order behind them.
func rakutenItemOrder(asOf string) func(a, b listing.Record) int {
	return func(a, b listing.Record) int {
		aSKU, bSKU := hasSystemSKU(a), hasSystemSKU(b)
		switch {
		case aSKU && !bSKU:
			return -1
		case !aSKU && bSKU:
			return 1
		case !aSKU:
			return 0
		}
		ka, kb := rakutenRank(a, asOf), rakutenRank(b, asOf)
		return cmp.Or(
			cmp.Compare(ka.warehouse, kb.warehouse),
			cmp.Compare(kb.search, ka.search),
			cmp.Compare(kb.order, ka.order),
			cmp.Compare(ka.startCat, kb.startCat),
			cmp.Compare(ka.start, kb.start),
			cmp.Compare(ka.endCat, kb.endCat),
			cmp.Compare(kb.end, ka.end),
			cmp.Compare(kb.stock, ka.stock),
		)
	}
}

type rank struct {
	warehouse int
	search    float64
	order     float64
	startCat  int
	start     string
	endCat    int
	end       string
	stock     float64
}

func rakutenRank(r listing.Record, asOf string) rank {
	k := rank{
		warehouse: 1,
		search:    number(r.Get(name(RakutenSearch))),
		order:     number(r.Get(name(RakutenOrderButton))),
		start:     listing.CompactDate(r.Get(name(RakutenSaleStart))),
		end:       listing.CompactDate(r.Get(name(RakutenSaleEnd))),
		stock:     number(r.Get(name(RakutenStock))),
	}
	if r.Get(name(RakutenWarehouse)) == "0" {
		k.warehouse = 0
	}
	// empty < started < future
	switch {
	case k.start == "":
		k.startCat = 0
	case k.start <= asOf:
		k.startCat = 1
	default:
		k.startCat = 2
	}
	// empty < still open < ended
	switch {
	case k.end == "":
		k.endCat = 0
	case k.end >= asOf:
		k.endCat = 1
	default:
		k.endCat = 2
	}
	return k
}

func hasSystemSKU(r listing.Record) bool {
	return r.Get(name(RakutenSystemSKU)) != ""
}

// number parses a numeric cell; anything else counts as 0.
func number(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}
