package suggest

import (
	"context"
	"sync"
	"time"
)

// mockSource is a test double for provider.Source.
// Responses are keyed by expansion; unknown expansions yield nothing.
type mockSource struct {
	mu        sync.Mutex
	responses map[string][]string
	delays    map[string]time.Duration
	panics    map[string]bool
	block     bool
	calls     []string
	cancelled int
}

func newMockSource(responses map[string][]string) *mockSource {
	if responses == nil {
		responses = map[string][]string{}
	}
	return &mockSource{
		responses: responses,
		delays:    map[string]time.Duration{},
		panics:    map[string]bool{},
	}
}

func (m *mockSource) Fetch(ctx context.Context, expansion string) []string {
	m.mu.Lock()
	m.calls = append(m.calls, expansion)
	delay := m.delays[expansion]
	shouldPanic := m.panics[expansion]
	resp, ok := m.responses[expansion]
	block := m.block && !ok
	m.mu.Unlock()

	if shouldPanic {
		panic("provider exploded for " + expansion)
	}

	if block {
		<-ctx.Done()
		m.mu.Lock()
		m.cancelled++
		m.mu.Unlock()
		return nil
	}

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
	return resp
}

// CallCount returns how many fetches were issued.
func (m *mockSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the fetched expansions in call order.
func (m *mockSource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Cancelled returns how many blocked fetches observed cancellation.
func (m *mockSource) Cancelled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelled
}
