package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bastiangx/wordfan/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

const (
	// DefaultEndpoint is the public completion endpoint queried by default.
	DefaultEndpoint = "http://google.com/complete/search"
	// DefaultClient is sent as the `client` parameter and selects the JSON array format.
	DefaultClient = "chrome"
	// DefaultTimeout bounds one round-trip, connect through body read.
	DefaultTimeout = time.Second
	// DefaultMaxBodyBytes caps how much of a response body is read.
	DefaultMaxBodyBytes int64 = 1 << 20
)

var (
	// ErrBadStatus is returned by fetch for non-2xx responses.
	ErrBadStatus = errors.New("provider returned non-success status")
	// ErrMalformedBody is returned by fetch when the body is not `[_, [strings...], ...]`.
	ErrMalformedBody = errors.New("provider response is not a completion array")
	// ErrBodyTooLarge is returned by fetch when the body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("provider response exceeds body limit")
)

// HTTPSource queries an autocomplete endpoint over HTTP GET.
type HTTPSource struct {
	client       *http.Client
	endpoint     string
	clientID     string
	userAgent    string
	timeout      time.Duration
	maxBodyBytes int64
	logger       *log.Logger
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithEndpoint sets the base URL, without query string.
func WithEndpoint(endpoint string) Option {
	return func(s *HTTPSource) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithClientID sets the `client` query parameter.
func WithClientID(id string) Option {
	return func(s *HTTPSource) {
		if id != "" {
			s.clientID = id
		}
	}
}

// WithTimeout sets the hard per-call deadline. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *HTTPSource) {
		s.userAgent = ua
	}
}

// WithMaxBodyBytes caps the response body size. Non-positive values keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithHTTPClient replaces the underlying client. Its Timeout is overwritten with the source timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHTTPSource creates a source with defaults matching the public chrome endpoint.
func NewHTTPSource(opts ...Option) *HTTPSource {
	s := &HTTPSource{
		endpoint:     DefaultEndpoint,
		clientID:     DefaultClient,
		timeout:      DefaultTimeout,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       logger.Default("provider"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: s.timeout}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     30 * time.Second,
			},
		}
	}
	s.client.Timeout = s.timeout
	return s
}

// Fetch issues one GET for expansion. Every failure is logged at debug level and yields nil.
func (s *HTTPSource) Fetch(ctx context.Context, expansion string) []string {
	start := time.Now()
	completions, err := s.fetch(ctx, expansion)
	if err != nil {
		s.logger.Debug("fetch failed", "expansion", expansion, "err", err, "took", time.Since(start))
		return nil
	}
	s.logger.Debug("fetched", "expansion", expansion, "count", len(completions), "took", time.Since(start))
	return completions
}

// RequestURL builds the outbound URL for expansion.
func (s *HTTPSource) RequestURL(expansion string) string {
	sep := "?"
	if strings.Contains(s.endpoint, "?") {
		sep = "&"
	}
	return s.endpoint + sep + "client=" + escape(s.clientID) + "&q=" + escape(expansion)
}

func (s *HTTPSource) fetch(ctx context.Context, expansion string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.RequestURL(expansion), nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return ParseCompletions(body)
}

// ParseCompletions extracts the completion list (index 1) from a provider body.
// Non-string entries inside the list are skipped.
func ParseCompletions(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedBody
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, ErrMalformedBody
	}
	list := root.Get("1")
	if !list.IsArray() {
		return nil, ErrMalformedBody
	}

	items := list.Array()
	completions := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == gjson.String {
			completions = append(completions, item.String())
		}
	}
	return completions, nil
}

// escape percent-encodes s for a query value, spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
