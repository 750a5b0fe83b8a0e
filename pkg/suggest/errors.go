package suggest

import "errors"

var (
	// ErrSourceRequired is returned by NewEngine when no provider.Source is given.
	ErrSourceRequired = errors.New("suggest: source is required")
	// ErrInvalidOption wraps option values that cannot be used.
	ErrInvalidOption = errors.New("suggest: invalid option")
	// ErrNoExpansions is returned by Suggest when the suffix alphabet produced nothing to fetch.
	ErrNoExpansions = errors.New("suggest: no expansions generated")
)
