// Package listing reconciles product-listing exports from many sales channels
// into one status per item and channel.
//
// This package holds the engine only. It knows nothing about files, HTTP or
// storage and can be driven by the web service, the CLI or tests alike.
//
// # Architecture
//
// Data flows strictly forward through five stages:
//
//   - Key normalization: raw cells become canonical codes ([NormalizeCode]).
//   - Indexing: each channel feed becomes a first-wins [Index] ([BuildIndex]).
//   - Relationships: the channel that splits one item across linked rows is
//     resolved through [Relations].
//   - Classification: every channel registers a [Definition] whose rule chain
//     maps a code to a [Status] ([Classify]).
//   - Aggregation: statuses of all active channels are combined into one [Row]
//     per base-channel item ([Aggregate]).
//
// # Channel Registry
//
// Channels register at init time using [Register], in the same way as the
// channel definitions in the channels subpackage:
//
//	listing.Register(listing.Definition{
//	    Channel: "amazon",
//	    Label:   "Amazon",
//	    Order:   11,
//	    Key:     listing.KeySpec{Field: listing.Name("出品者SKU")},
//	    Classifier: listing.Chain(extractAmazon, amazonRules),
//	})
//
// Indices and relationship maps are built once per run and never mutated
// afterwards, so a [Context] may be shared by any number of goroutines.
package listing
