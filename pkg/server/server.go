package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bastiangx/wordfan/internal/logger"
	"github.com/bastiangx/wordfan/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// IPCServer handles msgpack IPC for autocomplete requests
type IPCServer struct {
	suggester suggest.Suggester
	decoder   *msgpack.Decoder
	writer    *bufio.Writer
	encoder   *msgpack.Encoder
	logger    *log.Logger
	requests  int
}

// NewIPCServer creates a server reading requests from r and writing responses to w
func NewIPCServer(suggester suggest.Suggester, r io.Reader, w io.Writer) *IPCServer {
	bw := bufio.NewWriter(w)
	return &IPCServer{
		suggester: suggester,
		decoder:   msgpack.NewDecoder(bufio.NewReader(r)),
		writer:    bw,
		encoder:   msgpack.NewEncoder(bw),
		logger:    logger.Default("ipc"),
	}
}

// Start begins listening for IPC requests. It returns nil on EOF or when ctx is done.
// Requests are served one at a time, in arrival order.
func (s *IPCServer) Start(ctx context.Context) error {
	s.logger.Debug("Starting IPC server.")

	if err := s.send(map[string]string{"status": "ready"}); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.logger.Debug("stdin closed", "served", s.requests)
				return nil
			}
			// the stream cannot be resynchronised after a bad frame
			s.logger.Errorf("Decoding request: %v", err)
			_ = s.sendError("", "invalid msgpack request", 400)
			return fmt.Errorf("decode request: %w", err)
		}

		if err := s.handleRequest(ctx, req); err != nil {
			return err
		}
	}
}

// handleRequest dispatches one decoded request
func (s *IPCServer) handleRequest(ctx context.Context, req Request) error {
	s.requests++
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	switch req.Action {
	case "", ActionAutocomplete:
		return s.handleAutocomplete(ctx, req)
	case ActionHealth:
		return s.send(HealthResponse{ID: req.ID, Status: "ok"})
	default:
		return s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

func (s *IPCServer) handleAutocomplete(ctx context.Context, req Request) error {
	start := time.Now()
	suggestions, err := s.suggester.Suggest(ctx, req.Query)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error("autocomplete failed", "id", req.ID, "query", req.Query, "err", err)
		return s.sendError(req.ID, "internal error", 500)
	}

	s.logger.Debug("autocomplete", "id", req.ID, "query", req.Query, "count", len(suggestions), "took", elapsed)
	return s.send(AutocompleteResponse{
		ID:          req.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// send encodes one response and flushes it so the client sees it immediately
func (s *IPCServer) send(response any) error {
	if err := s.encoder.Encode(response); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	return s.writer.Flush()
}

// sendError sends an error response
func (s *IPCServer) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
