// Package provider talks to the external autocomplete service.
//
// A Source answers one expansion with the completions the service returned,
// in the service's own order. Failures never surface as errors: a Source that
// cannot produce completions returns an empty slice and the caller moves on.
package provider

import "context"

// Source fetches completions for a single expansion string.
// Implementations must be safe for concurrent use.
type Source interface {
	// Fetch returns the provider's completions for expansion, or nil on any failure.
	Fetch(ctx context.Context, expansion string) []string
}

// Func adapts a plain function to the Source interface.
type Func func(ctx context.Context, expansion string) []string

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, expansion string) []string {
	return f(ctx, expansion)
}
