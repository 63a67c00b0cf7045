package listing

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Channel identifies a sales channel or a companion stock feed.
type Channel string

// ErrUnknownChannel is returned for channels that were never registered.
var ErrUnknownChannel = errors.New("unknown channel")

// Definition contains everything needed to index and classify one channel.
type Definition struct {
	Channel Channel
	Label   string // display name used in reports and file names

	// Order is the position in the portal column order. Companion feeds that
	// are never reported on their own have Order 0.
	Order int

	// FileMarker is matched case-insensitively against uploaded file names.
	FileMarker string

	Headerless bool
	Key        KeySpec
	NameField  FieldID
	Required   []string // header names that must be present

	// Companion is a feed that must be uploaded together with this one.
	Companion Channel

	// Relations is set for the channel that splits items over linked rows.
	Relations *RelationFields

	// ItemOrder, when set, ranks duplicate item rows as of a given date.
	ItemOrder func(asOf string) func(a, b Record) int

	Classifier Classifier
}

// Portal reports whether the channel gets its own report column.
func (d Definition) Portal() bool { return d.Order > 0 }

var (
	registry   = make(map[Channel]Definition)
	registryMu sync.RWMutex
)

// Register adds a channel definition to the registry.
// Panics if the channel is already registered.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Channel]; exists {
		panic(fmt.Sprintf("channel already registered: %s", def.Channel))
	}
	registry[def.Channel] = def
}

// Lookup returns a channel definition.
func Lookup(ch Channel) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[ch]
	return def, ok
}

// All returns every registered definition, portals first in portal order,
// then companion feeds by channel name.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Portal() != b.Portal() {
			return a.Portal()
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Channel < b.Channel
	})
	return result
}

// Portals returns the reportable channels in portal order.
func Portals() []Definition {
	var out []Definition
	for _, def := range All() {
		if def.Portal() {
			out = append(out, def)
		}
	}
	return out
}

// PortalOrder sorts channels in place by portal order. Unknown channels go last.
func PortalOrder(channels []Channel) {
	rank := func(ch Channel) int {
		if def, ok := Lookup(ch); ok && def.Portal() {
			return def.Order
		}
		return 1 << 30
	}
	sort.SliceStable(channels, func(i, j int) bool {
		return rank(channels[i]) < rank(channels[j])
	})
}

// ChannelCount returns the number of registered channels.
func ChannelCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered channels.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[Channel]Definition)
}
