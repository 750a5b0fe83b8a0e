package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

type stubSuggester struct {
	mu      sync.Mutex
	answers map[string][]string
	err     error
	seen    []string
}

func (s *stubSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, query)
	if s.err != nil {
		return nil, s.err
	}
	return s.answers[query], nil
}

func TestInputHandler(t *testing.T) {
	stub := &stubSuggester{answers: map[string][]string{
		"test": {"test video", "test drive"},
	}}
	var out bytes.Buffer
	in := strings.NewReader("test\n\n  abc  \nnothing\n")

	h := NewInputHandler(stub, in, NewPrinter(&out, false), 4)
	require.NoError(t, h.Start(context.Background()))

	assert.Equal(t, []string{"test", "nothing"}, stub.seen)
	assert.Equal(t, 4, h.requestCount)

	got := out.String()
	assert.Contains(t, got, "2 suggestions for 'test':")
	assert.Contains(t, got, " 1. test video")
	assert.Contains(t, got, " 2. test drive")
	assert.Contains(t, got, "no suggestions for 'nothing'")
	assert.NotContains(t, got, "took")
}

func TestInputHandlerSuggestError(t *testing.T) {
	stub := &stubSuggester{err: errors.New("boom")}
	var out bytes.Buffer

	h := NewInputHandler(stub, strings.NewReader("test\n"), NewPrinter(&out, false), 4)
	require.NoError(t, h.Start(context.Background()))
	assert.NotContains(t, out.String(), "suggestions for")
}

func TestInputHandlerStopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	h := NewInputHandler(&stubSuggester{}, pr, NewPrinter(io.Discard, false), 4)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("input loop did not stop")
	}
}

func TestPrinterTiming(t *testing.T) {
	var out bytes.Buffer
	NewPrinter(&out, true).Print("test", []string{"test one"}, 1500*time.Microsecond)
	assert.Contains(t, out.String(), "took 1.5ms")
}
