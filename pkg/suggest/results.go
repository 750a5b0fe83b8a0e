package suggest

import (
	"github.com/tchap/go-patricia/v2/patricia"
)

// ResultSet is an ordered, duplicate-free and capped list of completions.
// It is not safe for concurrent use; one merging goroutine owns it.
type ResultSet struct {
	items []string
	seen  *patricia.Trie
	limit int
}

// NewResultSet creates an empty set holding at most limit entries.
func NewResultSet(limit int) *ResultSet {
	return &ResultSet{
		items: make([]string, 0, limit),
		seen:  patricia.NewTrie(),
		limit: limit,
	}
}

// Add appends completion if it is non-empty, unseen and the set is not full.
// Reports whether it was appended.
func (r *ResultSet) Add(completion string) bool {
	if completion == "" || r.Full() {
		return false
	}
	if !r.seen.Insert(patricia.Prefix(completion), struct{}{}) {
		return false
	}
	r.items = append(r.items, completion)
	return true
}

// Merge adds completions in order and reports whether the set is full.
// Once full, the remaining completions are not looked at.
func (r *ResultSet) Merge(completions []string) bool {
	for _, c := range completions {
		if r.Full() {
			return true
		}
		r.Add(c)
	}
	return r.Full()
}

// Full reports whether the cap is reached.
func (r *ResultSet) Full() bool {
	return len(r.items) >= r.limit
}

// Len returns the number of held completions.
func (r *ResultSet) Len() int {
	return len(r.items)
}

// Contains reports whether completion is held.
func (r *ResultSet) Contains(completion string) bool {
	return completion != "" && r.seen.Match(patricia.Prefix(completion))
}

// Items returns a copy of the completions in first-seen order. Never nil.
func (r *ResultSet) Items() []string {
	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}
