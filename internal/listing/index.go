package listing

// KeySpec describes how the item key of a record is extracted.
type KeySpec struct {
	Field FieldID

	// Bracket extracts the key from the first "[...]" of the field.
	Bracket bool

	// Exact keeps the key's case. Used for identifiers that are compared
	// case-sensitively by the channel.
	Exact bool
}

// Key extracts the canonical key of r. An empty result means r has no key.
func (k KeySpec) Key(r Record) string {
	raw := r.Get(k.Field)
	if k.Bracket {
		inner, ok := BracketKey(raw)
		if !ok {
			return ""
		}
		raw = inner
	}
	if k.Exact {
		return cleanKey(raw)
	}
	return NormalizeCode(raw)
}

// Index maps canonical codes to records. When two records share a key the
// first one wins. An Index is immutable once built.
type Index struct {
	records map[string]Record
	order   []string
}

// BuildIndex indexes records by the key of spec. Records without a key are
// skipped.
func BuildIndex(records []Record, spec KeySpec) *Index {
	ix := &Index{records: make(map[string]Record, len(records))}
	for _, r := range records {
		key := spec.Key(r)
		if key == "" {
			continue
		}
		if _, exists := ix.records[key]; exists {
			continue
		}
		ix.records[key] = r
		ix.order = append(ix.order, key)
	}
	return ix
}

// Lookup returns the record stored under a canonical code.
// A nil Index contains nothing.
func (ix *Index) Lookup(code string) (Record, bool) {
	if ix == nil || code == "" {
		return Record{}, false
	}
	r, ok := ix.records[code]
	return r, ok
}

// ParentKey is the key under which a grouped parent line is listed.
func ParentKey(code, marker string) string {
	return NormalizeCode(code + "（" + marker + "）")
}

// LookupWithParent looks up code and, only when it is absent, the parent
// line "<code>（<marker>）". The matched key is returned so that further
// lookups for the item use the same key.
func (ix *Index) LookupWithParent(code, marker string) (Record, string, bool) {
	if r, ok := ix.Lookup(code); ok {
		return r, code, true
	}
	if marker == "" {
		return Record{}, code, false
	}
	key := ParentKey(code, marker)
	if r, ok := ix.Lookup(key); ok {
		return r, key, true
	}
	return Record{}, code, false
}

// Codes returns the distinct keys in first-seen order.
func (ix *Index) Codes() []string {
	if ix == nil {
		return nil
	}
	out := make([]string, len(ix.order))
	copy(out, ix.order)
	return out
}

// Len returns the number of distinct keys.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.order)
}
