package suggest

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfan/internal/logger"
	"github.com/bastiangx/wordfan/pkg/provider"
	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultMinQueryLength is the shortest query that triggers provider calls.
	DefaultMinQueryLength = 4
	// DefaultMaxResults caps the merged result list.
	DefaultMaxResults = 20
	// DefaultSuffixes is the expansion alphabet, in merge order.
	DefaultSuffixes = " abcdefghijklmnopqrstuvwxyz"
	// DefaultPoolSize is the number of concurrent fetch workers shared by all requests.
	DefaultPoolSize = 64
)

// Engine aggregates provider completions across every expansion of a query.
type Engine struct {
	source     provider.Source
	pool       *ants.Pool
	suffixes   []rune
	minLength  int
	maxResults int
	poolSize   int
	sequential bool
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithMinQueryLength sets the length below which Suggest returns nothing.
func WithMinQueryLength(n int) Option {
	return func(e *Engine) error {
		if n < 0 {
			return fmt.Errorf("%w: min query length %d", ErrInvalidOption, n)
		}
		e.minLength = n
		return nil
	}
}

// WithMaxResults sets the result cap.
func WithMaxResults(n int) Option {
	return func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("%w: max results %d", ErrInvalidOption, n)
		}
		e.maxResults = n
		return nil
	}
}

// WithSuffixes replaces the expansion alphabet. Each rune is one suffix, in merge order.
// An empty alphabet is accepted here and fails every Suggest call with ErrNoExpansions.
func WithSuffixes(suffixes string) Option {
	return func(e *Engine) error {
		e.suffixes = []rune(suffixes)
		return nil
	}
}

// WithSequential fetches expansions one at a time instead of on the pool.
func WithSequential(sequential bool) Option {
	return func(e *Engine) error {
		e.sequential = sequential
		return nil
	}
}

// WithPoolSize sets the number of fetch workers.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			return fmt.Errorf("%w: pool size %d", ErrInvalidOption, size)
		}
		e.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger. nil keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) error {
		if l != nil {
			e.logger = l
		}
		return nil
	}
}

// NewEngine creates an engine fetching from source.
// The worker pool is only created for parallel dispatch; call Release when done.
func NewEngine(source provider.Source, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	e := &Engine{
		source:     source,
		suffixes:   []rune(DefaultSuffixes),
		minLength:  DefaultMinQueryLength,
		maxResults: DefaultMaxResults,
		poolSize:   DefaultPoolSize,
		logger:     logger.Default("engine"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if !e.sequential {
		pool, err := ants.NewPool(e.poolSize, ants.WithPanicHandler(func(p any) {
			e.logger.Error("fetch worker panicked", "panic", p)
		}))
		if err != nil {
			return nil, err
		}
		e.pool = pool
	}
	return e, nil
}

// Release frees the worker pool. The engine must not be used afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// MaxResults returns the configured result cap.
func (e *Engine) MaxResults() int {
	return e.maxResults
}

// Expansions returns query with each suffix appended, in merge order.
// Queries shorter than the minimum length have no expansions.
func (e *Engine) Expansions(query string) []string {
	if e.tooShort(query) {
		return nil
	}
	out := make([]string, len(e.suffixes))
	for i, s := range e.suffixes {
		out[i] = query + string(s)
	}
	return out
}

// Suggest implements Suggester.
func (e *Engine) Suggest(ctx context.Context, query string) ([]string, error) {
	if e.tooShort(query) {
		e.logger.Debug("query below minimum length", "query", query, "min", e.minLength)
		return []string{}, nil
	}

	expansions := e.Expansions(query)
	if len(expansions) == 0 {
		return nil, ErrNoExpansions
	}

	start := time.Now()
	results := NewResultSet(e.maxResults)

	var err error
	if e.sequential {
		err = e.collectSequential(ctx, expansions, results)
	} else {
		err = e.collectParallel(ctx, expansions, results)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Debug("suggest done", "query", query, "count", results.Len(), "took", time.Since(start))
	return results.Items(), nil
}

// tooShort counts characters, not bytes.
func (e *Engine) tooShort(query string) bool {
	return utf8.RuneCountInString(query) < e.minLength
}

func (e *Engine) collectSequential(ctx context.Context, expansions []string, results *ResultSet) error {
	for _, exp := range expansions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if results.Merge(e.fetch(ctx, exp)) {
			return nil
		}
	}
	return nil
}

// collectParallel submits every expansion to the pool, then merges the slots in
// expansion order. Reaching the cap cancels fetches still in flight.
func (e *Engine) collectParallel(ctx context.Context, expansions []string, results *ResultSet) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]chan []string, len(expansions))
	for i := range slots {
		slots[i] = make(chan []string, 1)
	}

	for i, exp := range expansions {
		slot := slots[i]
		if err := e.pool.Submit(func() {
			slot <- e.fetch(ctx, exp)
		}); err != nil {
			return fmt.Errorf("submit fetch for %q: %w", exp, err)
		}
	}

	for _, slot := range slots {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case completions := <-slot:
			if results.Merge(completions) {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// fetch calls the source, turning a panic into zero completions.
func (e *Engine) fetch(ctx context.Context, expansion string) (completions []string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("source panicked", "expansion", expansion, "panic", r)
			completions = nil
		}
	}()
	return e.source.Fetch(ctx, expansion)
}
