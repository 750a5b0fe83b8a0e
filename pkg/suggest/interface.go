// Package suggest is the core, fanning a query out into single-character expansions
// and merging the provider's completions into one capped, deduplicated list.
//
// For a query of at least MinQueryLength characters the Engine builds one expansion per
// suffix (space, then 'a' through 'z'), fetches completions for each from a
// provider.Source, and merges them in suffix order. A completion is kept the first
// time it is seen; the merge stops as soon as MaxResults completions are held, even
// in the middle of one expansion's list.
//
// Dispatch is parallel by default: fetches run on an ants pool and are merged in
// suffix order, not arrival order, so the output depends only on what the provider
// returned. Sequential dispatch fetches one expansion at a time and never issues
// calls past the cap.
package suggest

import "context"

// Suggester is the single operation served by the transports.
type Suggester interface {
	// Suggest returns up to MaxResults unique completions for query.
	// The slice is never nil. An error means the request itself failed,
	// never that the provider did.
	Suggest(ctx context.Context, query string) ([]string, error)
}
