package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

// Choice feeds carry no header row, so every column is addressed by position.
var (
	// ChoiceManageNo is the management number column. The raw stock feed
	// carries the same number at the same position.
	ChoiceManageNo = listing.Pos(1)
	// ChoiceCode is the item code column.
	ChoiceCode = listing.Pos(102)

	choiceName    = listing.Pos(2)
	choiceDisplay = listing.Pos(97)
	choiceStart   = listing.Pos(98)
	choiceEnd     = listing.Pos(99)

	// Stock feed columns after the item code has been prepended.
	choiceStockCode = listing.Pos(0)
	choiceStockQty  = listing.Pos(4)
)

func init() {
	listing.Register(listing.Definition{
		Channel:    Choice,
		Label:      "チョイス",
		Order:      1,
		FileMarker: "チョイス",
		Headerless: true,
		Key:        listing.KeySpec{Field: ChoiceCode},
		NameField:  choiceName,
		Companion:  ChoiceStock,
		Classifier: listing.Chain(extractChoice, choiceRules, listing.PeriodRules(saleWindow)),
	})
	listing.Register(listing.Definition{
		Channel:    ChoiceStock,
		Label:      "チョイス在庫",
		FileMarker: "チョイス在庫",
		Headerless: true,
		Key:        listing.KeySpec{Field: choiceStockCode},
		Companion:  Choice,
	})
}

var choiceRules = []listing.Rule[facts]{
	{Name: "display flag missing", When: statusEmpty, Then: listing.Unregistered},
	{Name: "display flag off", When: func(f facts, _ string) bool { return listing.IsZero(f.status) }, Then: listing.Hidden},
	{Name: "stock zero", When: stockZero, Then: listing.OutOfStock},
}

func extractChoice(code string, c *listing.Context) facts {
	r, ok := c.Record(Choice, code)
	if !ok {
		return facts{}
	}
	f := facts{
		found:  true,
		status: r.Get(choiceDisplay),
		sale:   listing.NewWindow(r.Get(choiceStart), r.Get(choiceEnd)),
	}
	if s, ok := c.Record(ChoiceStock, code); ok {
		f.stock = s.Get(choiceStockQty)
	}
	return f
}
