package server

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

// fakeSuggester answers from a fixed map and records the queries it saw.
type fakeSuggester struct {
	mu      sync.Mutex
	answers map[string][]string
	err     error
	queries []string
}

func (f *fakeSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if items, ok := f.answers[query]; ok {
		return items, nil
	}
	return []string{}, nil
}

func (f *fakeSuggester) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}
