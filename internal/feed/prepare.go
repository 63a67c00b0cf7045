package feed

import (
	"strings"

	"github.com/makoto1101/check-publication-status/internal/listing"
	"github.com/makoto1101/check-publication-status/internal/listing/channels"
)

// Normalize applies the channel-specific fixes to a freshly parsed table and
// checks its required columns. On a schema error the table is left unchanged.
func Normalize(t *Table) error {
	def, ok := listing.Lookup(t.Channel)
	if !ok {
		return nil
	}

	if t.Channel == channels.Amazon {
		renameHeaders(t, channels.AmazonHeaders)
	}
	if !def.Headerless {
		if err := listing.CheckHeaders(def.Channel, listing.NewHeader(t.Header), def.Required); err != nil {
			return err
		}
	}
	if t.Channel == channels.Rakuten {
		prepareRakuten(t)
	}
	return nil
}

func renameHeaders(t *Table, names map[string]string) {
	for i, h := range t.Header {
		if to, ok := names[h]; ok {
			t.Header[i] = to
		}
	}
}

// prepareRakuten folds SKU-level values into the item columns and spreads
// group-level values over every row of a management group:
//
//   - a system SKU replaces the item number
//   - a SKU warehouse flag replaces the item warehouse flag
//   - name, search display, sale period and order button come from the
//     group's first row
func prepareRakuten(t *Table) {
	col := func(name string) int { return t.Column(name) }
	item, systemSKU := col(channels.RakutenItemNo), col(channels.RakutenSystemSKU)
	warehouse, skuWarehouse := col(channels.RakutenWarehouse), col(channels.RakutenSKUWarehouse)
	manage := col(channels.RakutenManageNo)

	filled := make([]int, len(channels.RakutenGroupFilled))
	for i, name := range channels.RakutenGroupFilled {
		filled[i] = col(name)
	}

	first := make(map[string][]string)
	for i, row := range t.Rows {
		row = padRow(row, len(t.Header))
		t.Rows[i] = row

		if v := trim(row[systemSKU]); v != "" {
			row[item] = v
		}
		if v := trim(row[skuWarehouse]); v != "" {
			row[warehouse] = v
		}

		group := trim(row[manage])
		if group == "" {
			continue
		}
		head, seen := first[group]
		if !seen {
			head = make([]string, len(filled))
			for j, c := range filled {
				head[j] = row[c]
			}
			first[group] = head
			continue
		}
		for j, c := range filled {
			row[c] = head[j]
		}
	}
}

func padRow(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

// JoinChoiceStock prepends the item code to every row of the choice stock
// feed. The code is found through the management number shared by both
// feeds; the first choice row of a management number wins. Stock rows
// without a match get an empty code and are therefore never indexed.
func JoinChoiceStock(choice, stock *Table) {
	get := func(row []string, f listing.FieldID) string {
		return listing.NewRecord(nil, row).Get(f)
	}

	codes := make(map[string]string)
	for _, row := range choice.Rows {
		m := get(row, channels.ChoiceManageNo)
		if _, dup := codes[m]; dup || m == "" {
			continue
		}
		codes[m] = get(row, channels.ChoiceCode)
	}

	for i, row := range stock.Rows {
		joined := make([]string, 0, len(row)+1)
		joined = append(joined, codes[get(row, channels.ChoiceManageNo)])
		stock.Rows[i] = append(joined, row...)
	}
}

// Filter keeps rows whose item code (or vendor code derived from it)
// contains one of the given codes, ignoring case. Empty lists match all.
type Filter struct {
	ItemCodes   []string
	VendorCodes []string
}

// Empty reports whether the filter keeps every row.
func (f Filter) Empty() bool { return len(f.ItemCodes) == 0 && len(f.VendorCodes) == 0 }

// Applies reports whether the channel is filtered at all. The relationship
// channel and the stock feeds are always kept whole so that links between
// their rows survive.
func (f Filter) Applies(ch listing.Channel) bool {
	def, ok := listing.Lookup(ch)
	return ok && def.Portal() && def.Relations == nil
}

// Apply filters the table in place.
func (f Filter) Apply(t *Table) {
	if f.Empty() || !f.Applies(t.Channel) {
		return
	}
	def, _ := listing.Lookup(t.Channel)
	key := rawKey(def, t)

	items := lowerAll(f.ItemCodes)
	vendors := lowerAll(f.VendorCodes)

	kept := t.Rows[:0]
	for _, row := range t.Rows {
		code := key(row)
		if code == "" {
			continue
		}
		if len(items) > 0 && !containsAny(code, items) {
			continue
		}
		if len(vendors) > 0 {
			vendor := listing.VendorCode(code)
			if vendor == "" || !containsAny(vendor, vendors) {
				continue
			}
		}
		kept = append(kept, row)
	}
	t.Rows = kept
}

// rawKey extracts the trimmed, not case-folded item code of a row.
func rawKey(def listing.Definition, t *Table) func([]string) string {
	h := headerOf(t)
	return func(row []string) string {
		v := listing.NewRecord(h, row).Get(def.Key.Field)
		if def.Key.Bracket {
			inner, ok := listing.BracketKey(v)
			if !ok {
				return ""
			}
			v = inner
		}
		return trim(v)
	}
}

func headerOf(t *Table) *listing.Header {
	if t.Header == nil {
		return nil
	}
	return listing.NewHeader(t.Header)
}

func lowerAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
