package suggest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var dispatchModes = []struct {
	name       string
	sequential bool
}{
	{"parallel", false},
	{"sequential", true},
}

func newTestEngine(t *testing.T, src *mockSource, opts ...Option) *Engine {
	t.Helper()
	engine, err := NewEngine(src, opts...)
	require.NoError(t, err)
	t.Cleanup(engine.Release)
	return engine
}

// uniquePerExpansion returns one distinct completion for every default expansion of query.
func uniquePerExpansion(query string) map[string][]string {
	responses := map[string][]string{}
	for _, s := range DefaultSuffixes {
		exp := query + string(s)
		responses[exp] = []string{exp + "-completion"}
	}
	return responses
}

func TestNewEngine(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		_, err := NewEngine(nil)
		assert.ErrorIs(t, err, ErrSourceRequired)
	})

	t.Run("invalid options", func(t *testing.T) {
		src := newMockSource(nil)
		for _, opt := range []Option{WithMaxResults(0), WithMinQueryLength(-1), WithPoolSize(0)} {
			_, err := NewEngine(src, opt)
			assert.ErrorIs(t, err, ErrInvalidOption)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		engine := newTestEngine(t, newMockSource(nil), WithLogger(nil))
		assert.Equal(t, DefaultMaxResults, engine.MaxResults())
		assert.NotNil(t, engine.pool)
	})

	t.Run("sequential has no pool", func(t *testing.T) {
		engine := newTestEngine(t, newMockSource(nil), WithSequential(true))
		assert.Nil(t, engine.pool)
	})
}

func TestExpansions(t *testing.T) {
	engine := newTestEngine(t, newMockSource(nil))

	got := engine.Expansions("test")
	require.Len(t, got, 27)
	assert.Equal(t, "test ", got[0])
	assert.Equal(t, "testa", got[1])
	assert.Equal(t, "tests", got[19])
	assert.Equal(t, "testz", got[26])
	for i, s := range DefaultSuffixes {
		assert.Equal(t, "test"+string(s), got[i])
	}

	assert.Nil(t, engine.Expansions("abc"))
}

func TestSuggestShortQuery(t *testing.T) {
	for _, mode := range dispatchModes {
		t.Run(mode.name, func(t *testing.T) {
			src := newMockSource(map[string][]string{"abc ": {"abc news"}})
			engine := newTestEngine(t, src, WithSequential(mode.sequential))

			for _, q := range []string{"", "a", "ab", "abc", "ção"} {
				got, err := engine.Suggest(context.Background(), q)
				require.NoError(t, err)
				assert.NotNil(t, got)
				assert.Empty(t, got)
			}
			assert.Equal(t, 0, src.CallCount())
		})
	}
}

func TestSuggestCountsCharacters(t *testing.T) {
	src := newMockSource(map[string][]string{"café ": {"café near me"}})
	engine := newTestEngine(t, src, WithSequential(true))

	got, err := engine.Suggest(context.Background(), "café")
	require.NoError(t, err)
	assert.Equal(t, []string{"café near me"}, got)
	assert.Equal(t, 27, src.CallCount())
}

func TestSuggestScenarios(t *testing.T) {
	testCases := []struct {
		description string
		query       string
		responses   map[string][]string
		expected    []string
	}{
		{
			description: "only the space expansion answers",
			query:       "test",
			responses:   map[string][]string{"test ": {"test video", "test drive"}},
			expected:    []string{"test video", "test drive"},
		},
		{
			description: "duplicate kept at first occurrence",
			query:       "test",
			responses: map[string][]string{
				"testa": {"testing", "test automation"},
				"testb": {"testing", "test bank"},
			},
			expected: []string{"testing", "test automation", "test bank"},
		},
		{
			description: "duplicates inside one expansion",
			query:       "test",
			responses:   map[string][]string{"test ": {"x", "x", "y"}},
			expected:    []string{"x", "y"},
		},
		{
			description: "provider down everywhere",
			query:       "test",
			responses:   nil,
			expected:    []string{},
		},
		{
			description: "empty completions are dropped",
			query:       "test",
			responses:   map[string][]string{"test ": {"", "test prep"}},
			expected:    []string{"test prep"},
		},
	}

	for _, mode := range dispatchModes {
		for _, tc := range testCases {
			t.Run(mode.name+"/"+tc.description, func(t *testing.T) {
				src := newMockSource(tc.responses)
				engine := newTestEngine(t, src, WithSequential(mode.sequential))

				got, err := engine.Suggest(context.Background(), tc.query)
				require.NoError(t, err)
				assert.Equal(t, tc.expected, got)
				assert.Equal(t, 27, src.CallCount())
			})
		}
	}
}

func TestSuggestCap(t *testing.T) {
	expansions := make([]string, 0, 27)
	for _, s := range DefaultSuffixes {
		expansions = append(expansions, "test"+string(s))
	}

	expected := make([]string, 0, 20)
	for _, exp := range expansions[:20] {
		expected = append(expected, exp+"-completion")
	}

	t.Run("sequential stops issuing calls", func(t *testing.T) {
		src := newMockSource(uniquePerExpansion("test"))
		engine := newTestEngine(t, src, WithSequential(true))

		got, err := engine.Suggest(context.Background(), "test")
		require.NoError(t, err)
		assert.Equal(t, expected, got)
		assert.Equal(t, expansions[:20], src.Calls())
		assert.Equal(t, "tests-completion", got[19])
	})

	t.Run("parallel merges the first twenty expansions", func(t *testing.T) {
		src := newMockSource(uniquePerExpansion("test"))
		engine := newTestEngine(t, src)

		got, err := engine.Suggest(context.Background(), "test")
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	})
}

func TestSuggestTruncatesMidExpansion(t *testing.T) {
	first := make([]string, 19)
	for i := range first {
		first[i] = fmt.Sprintf("test %02d", i)
	}
	responses := map[string][]string{
		"test ": first,
		"testa": {"test a1", "test a2", "test a3"},
		"testb": {"test b1"},
	}

	for _, mode := range dispatchModes {
		t.Run(mode.name, func(t *testing.T) {
			src := newMockSource(responses)
			engine := newTestEngine(t, src, WithSequential(mode.sequential))

			got, err := engine.Suggest(context.Background(), "test")
			require.NoError(t, err)
			require.Len(t, got, 20)
			assert.Equal(t, first, got[:19])
			assert.Equal(t, "test a1", got[19])
			assert.NotContains(t, got, "test a2")
			assert.NotContains(t, got, "test b1")
		})
	}
}

func TestSuggestMergesInAlphabetOrderNotArrival(t *testing.T) {
	src := newMockSource(map[string][]string{
		"testa": {"slow a"},
		"testb": {"fast b"},
		"testc": {"fast c"},
	})
	src.delays["testa"] = 80 * time.Millisecond

	engine := newTestEngine(t, src)
	got, err := engine.Suggest(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"slow a", "fast b", "fast c"}, got)
}

func TestSuggestDeterministic(t *testing.T) {
	responses := map[string][]string{}
	for i, s := range DefaultSuffixes {
		exp := "test" + string(s)
		responses[exp] = []string{
			fmt.Sprintf("shared %d", i%3),
			fmt.Sprintf("%s one", exp),
		}
	}

	for _, mode := range dispatchModes {
		t.Run(mode.name, func(t *testing.T) {
			src := newMockSource(responses)
			for i := 0; i < 3; i++ {
				src.delays["test"+string(rune('a'+i))] = time.Duration(30-i*10) * time.Millisecond
			}
			engine := newTestEngine(t, src, WithSequential(mode.sequential))

			first, err := engine.Suggest(context.Background(), "test")
			require.NoError(t, err)
			second, err := engine.Suggest(context.Background(), "test")
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestSuggestFailureIsolation(t *testing.T) {
	for _, mode := range dispatchModes {
		t.Run(mode.name, func(t *testing.T) {
			src := newMockSource(map[string][]string{
				"test ": {"test one"},
				"testb": {"test two"},
			})
			src.panics["testa"] = true

			engine := newTestEngine(t, src, WithSequential(mode.sequential))
			got, err := engine.Suggest(context.Background(), "test")
			require.NoError(t, err)
			assert.Equal(t, []string{"test one", "test two"}, got)
		})
	}
}

func TestSuggestInvariants(t *testing.T) {
	responses := map[string][]string{}
	for i, s := range DefaultSuffixes {
		exp := "word" + string(s)
		var list []string
		for j := 0; j < 7; j++ {
			list = append(list, fmt.Sprintf("word %d", (i*j)%11))
		}
		responses[exp] = list
	}

	for _, mode := range dispatchModes {
		t.Run(mode.name, func(t *testing.T) {
			engine := newTestEngine(t, newMockSource(responses), WithSequential(mode.sequential))
			got, err := engine.Suggest(context.Background(), "word")
			require.NoError(t, err)
			assert.LessOrEqual(t, len(got), 20)

			seen := map[string]bool{}
			for _, s := range got {
				assert.False(t, seen[s], "duplicate %q", s)
				seen[s] = true
			}
		})
	}
}

func TestSuggestCapCancelsInFlight(t *testing.T) {
	many := make([]string, 20)
	for i := range many {
		many[i] = fmt.Sprintf("test %d", i)
	}
	src := newMockSource(map[string][]string{"test ": many})
	src.block = true

	engine := newTestEngine(t, src)

	start := time.Now()
	got, err := engine.Suggest(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, many, got)
	assert.Less(t, time.Since(start), time.Second)

	assert.Eventually(t, func() bool {
		return src.Cancelled() == 26
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSuggestCallerCancellation(t *testing.T) {
	for _, mode := range dispatchModes {
		t.Run(mode.name, func(t *testing.T) {
			src := newMockSource(nil)
			src.block = true
			engine := newTestEngine(t, src, WithSequential(mode.sequential))

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			_, err := engine.Suggest(ctx, "test")
			assert.ErrorIs(t, err, context.DeadlineExceeded)
		})
	}
}

func TestSuggestNoExpansions(t *testing.T) {
	engine := newTestEngine(t, newMockSource(nil), WithSuffixes(""))
	_, err := engine.Suggest(context.Background(), "test")
	assert.ErrorIs(t, err, ErrNoExpansions)
}

func TestSuggestCustomLimits(t *testing.T) {
	src := newMockSource(uniquePerExpansion("go"))
	engine := newTestEngine(t, src, WithMinQueryLength(2), WithMaxResults(5), WithSuffixes(" abcdef"), WithPoolSize(2))

	got, err := engine.Suggest(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, []string{"go -completion", "goa-completion", "gob-completion", "goc-completion", "god-completion"}, got)
}

func TestSuggestAfterRelease(t *testing.T) {
	engine, err := NewEngine(newMockSource(nil))
	require.NoError(t, err)
	engine.Release()

	_, err = engine.Suggest(context.Background(), "test")
	assert.ErrorIs(t, err, ants.ErrPoolClosed)
}
