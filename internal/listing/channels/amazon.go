package channels

import "github.com/makoto1101/check-publication-status/internal/listing"

// AmazonHeaders maps the English headers of some Amazon exports to the
// Japanese ones the definition expects.
var AmazonHeaders = map[string]string{
	"sku":      "出品者SKU",
	"asin":     "ASIN",
	"price":    "価格",
	"quantity": "数量",
}

func init() {
	listing.Register(listing.Definition{
		Channel:    Amazon,
		Label:      "Amazon",
		Order:      11,
		FileMarker: "amazon",
		Key:        listing.KeySpec{Field: name("出品者SKU")},
		Required:   []string{"出品者SKU"},
		Classifier: listing.Chain(extractAmazon, amazonRules),
	})
}

// Amazon has no publication flag or sale window.
var amazonRules = []listing.Rule[facts]{
	{Name: "sku missing", When: notFound, Then: listing.Unregistered},
	{Name: "quantity zero", When: stockZero, Then: listing.OutOfStock},
}

func extractAmazon(code string, c *listing.Context) facts {
	r, ok := c.Record(Amazon, code)
	if !ok {
		return facts{}
	}
	return facts{found: true, stock: r.Get(name("数量"))}
}
