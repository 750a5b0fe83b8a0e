/*
Package server exposes the autocomplete operation over two transports.

# IPC

IPCServer speaks msgpack over stdin/stdout for editor and tool integration.
Clients write a stream of msgpack maps; each one is answered in order.

	{"id": "req_001", "q": "golang"}

The server responds with the merged suggestions, their count and the time taken in microseconds:

	{"id": "req_001", "s": ["golang tutorial", "golang vs rust"], "c": 2, "t": 412093}

Requests may name an action; "autocomplete" is assumed when it is empty:

	{"id": "ping", "a": "health"}

Failures are answered with an error message and a status-like code:

	{"id": "req_002", "e": "unknown action: nope", "c": 400}

# HTTP

HTTPServer serves a GraphQL endpoint with a single query field:

	type Query { autocomplete(query: String!): Suggestion }
	type Suggestion { suggestions: [String] }

plus GET /healthz for liveness checks.
*/
package server

// Actions accepted in Request.Action.
const (
	ActionAutocomplete = "autocomplete"
	ActionHealth       = "health"
)

// Request - minimal IPC request
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a,omitempty"`
	Query  string `msgpack:"q"`
}

// AutocompleteResponse - suggestions for one request
type AutocompleteResponse struct {
	ID          string   `msgpack:"id"`
	Suggestions []string `msgpack:"s"`
	Count       int      `msgpack:"c"`
	TimeTaken   int64    `msgpack:"t"`
}

// HealthResponse - answer to a health action
type HealthResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
