package listing

// DefaultParentMarker is the marker of grouped parent lines, as in "ABC001（親）".
const DefaultParentMarker = "親"

// Context carries everything a classifier may read during one run.
// It is built once and only read afterwards.
type Context struct {
	AsOf         string // YYYYMMDD
	ParentMarker string

	indices   map[Channel]*Index
	relations map[Channel]*Relations
}

// NewContext creates an empty context for the given as-of date.
func NewContext(asOf string) *Context {
	return &Context{
		AsOf:         CompactDate(asOf),
		ParentMarker: DefaultParentMarker,
		indices:      make(map[Channel]*Index),
		relations:    make(map[Channel]*Relations),
	}
}

// SetIndex stores the index of a channel. Only valid while building.
func (c *Context) SetIndex(ch Channel, ix *Index) { c.indices[ch] = ix }

// SetRelations stores the relationship maps of a channel. Only valid while building.
func (c *Context) SetRelations(ch Channel, rel *Relations) { c.relations[ch] = rel }

// Index returns the index of a channel, nil when the channel was not loaded.
func (c *Context) Index(ch Channel) *Index { return c.indices[ch] }

// Relations returns the relationship maps of a channel, nil when absent.
func (c *Context) Relations(ch Channel) *Relations { return c.relations[ch] }

// Loaded reports whether an index exists for the channel.
func (c *Context) Loaded(ch Channel) bool {
	_, ok := c.indices[ch]
	return ok
}

// Record looks up an item in a channel's index.
func (c *Context) Record(ch Channel, code string) (Record, bool) {
	return c.indices[ch].Lookup(code)
}

// Load indexes the records of a registered channel and stores the index
// (and relationship maps, when the channel defines them). For related
// channels the item index is the priority-ordered one.
func (c *Context) Load(def Definition, records []Record) {
	if def.Relations == nil {
		c.SetIndex(def.Channel, BuildIndex(records, def.Key))
		return
	}
	var order func(a, b Record) int
	if def.ItemOrder != nil {
		order = def.ItemOrder(c.AsOf)
	}
	rel := BuildRelations(records, *def.Relations, order)
	c.SetRelations(def.Channel, rel)
	c.SetIndex(def.Channel, rel.ByItem)
}

// Classify returns the status of an item in one channel. Channels without a
// registered classifier yield Unimplemented.
func Classify(ch Channel, code string, c *Context) Status {
	def, ok := Lookup(ch)
	if !ok {
		return Unimplemented
	}
	return def.Classifier.Classify(code, c)
}
