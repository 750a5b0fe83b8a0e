package server

import (
	"context"
	"errors"

	"github.com/bastiangx/wordfan/pkg/suggest"
	"github.com/charmbracelet/log"
	graphql "github.com/graph-gophers/graphql-go"
)

// Schema is the GraphQL schema served on the graphql path.
const Schema = `
	schema {
		query: Query
	}

	type Suggestion {
		suggestions: [String]
	}

	type Query {
		autocomplete(query: String!): Suggestion
	}
`

// errInternal is what GraphQL clients see when the engine fails a request.
var errInternal = errors.New("internal error")

type rootResolver struct {
	suggester suggest.Suggester
	logger    *log.Logger
}

type autocompleteArgs struct {
	Query string
}

// Autocomplete resolves Query.autocomplete.
func (r *rootResolver) Autocomplete(ctx context.Context, args autocompleteArgs) (*suggestionResolver, error) {
	items, err := r.suggester.Suggest(ctx, args.Query)
	if err != nil {
		r.logger.Error("autocomplete failed", "request_id", RequestID(ctx), "query", args.Query, "err", err)
		return nil, errInternal
	}
	return &suggestionResolver{items: items}, nil
}

type suggestionResolver struct {
	items []string
}

// Suggestions resolves Suggestion.suggestions; an empty result is an empty list, never null.
func (s *suggestionResolver) Suggestions() *[]*string {
	out := make([]*string, len(s.items))
	for i := range s.items {
		out[i] = &s.items[i]
	}
	return &out
}

// NewSchema parses Schema against a resolver backed by suggester.
func NewSchema(suggester suggest.Suggester, logger *log.Logger) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, &rootResolver{suggester: suggester, logger: logger})
}
