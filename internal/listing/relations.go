package listing

import "slices"

// RelationFields names the columns that link the rows of a split item.
type RelationFields struct {
	Item  FieldID // item (variant) code
	Group FieldID // parent identifier shared by all rows of an item
	Line  FieldID // line-level sub-code, compared case-sensitively
}

// Relations resolves attributes for a channel whose feed spreads one catalog
// item over several linked rows.
type Relations struct {
	ByItem  *Index
	ByGroup *Index
	ByLine  *Index

	fields RelationFields
	groups map[string][]Record
}

// BuildRelations indexes records (in file order) by item, group and line.
// itemOrder, when non-nil, decides which row wins for a duplicated item code;
// the group and line indices always keep file order.
func BuildRelations(records []Record, fields RelationFields, itemOrder func(a, b Record) int) *Relations {
	byItem := records
	if itemOrder != nil {
		byItem = slices.Clone(records)
		slices.SortStableFunc(byItem, itemOrder)
	}

	rel := &Relations{
		ByItem:  BuildIndex(byItem, KeySpec{Field: fields.Item}),
		ByGroup: BuildIndex(records, KeySpec{Field: fields.Group}),
		ByLine:  BuildIndex(records, KeySpec{Field: fields.Line, Exact: true}),
		fields:  fields,
		groups:  make(map[string][]Record),
	}
	for _, r := range records {
		parent := NormalizeCode(r.Get(fields.Group))
		if parent == "" {
			continue
		}
		rel.groups[parent] = append(rel.groups[parent], r)
	}
	return rel
}

// Product returns the row stored for an item code.
func (rel *Relations) Product(code string) (Record, bool) {
	if rel == nil {
		return Record{}, false
	}
	return rel.ByItem.Lookup(code)
}

// Parent returns the parent identifier of an item, "" when the item is
// unknown or has no parent.
func (rel *Relations) Parent(code string) string {
	r, ok := rel.Product(code)
	if !ok {
		return ""
	}
	return NormalizeCode(r.Get(rel.fields.Group))
}

// Group returns every row sharing the parent identifier, in file order.
func (rel *Relations) Group(parent string) []Record {
	if rel == nil {
		return nil
	}
	return rel.groups[parent]
}

// GroupCount returns the number of distinct parents.
func (rel *Relations) GroupCount() int {
	if rel == nil {
		return 0
	}
	return len(rel.groups)
}

// Attr resolves one attribute of an item. The product row's own value is
// used when set. Otherwise a group of exactly two rows lends the value of the
// other row; larger groups are ambiguous and resolve to "".
func (rel *Relations) Attr(code string, field FieldID) string {
	r, ok := rel.Product(code)
	if !ok {
		return ""
	}
	if v := r.Get(field); v != "" {
		return v
	}

	parent := NormalizeCode(r.Get(rel.fields.Group))
	members := rel.groups[parent]
	if parent == "" || len(members) != 2 {
		return ""
	}
	for _, m := range members {
		if NormalizeCode(m.Get(rel.fields.Item)) != code {
			return m.Get(field)
		}
	}
	return ""
}
