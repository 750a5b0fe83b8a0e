// Package cli provides the interactive query loop used by the repl and query commands.
package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordfan/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler reads queries line by line and prints the merged suggestions for each.
type InputHandler struct {
	suggester    suggest.Suggester
	printer      *Printer
	in           io.Reader
	minLength    int
	requestCount int
}

// NewInputHandler creates an InputHandler reading from in.
// Lines shorter than minLength characters are rejected before reaching the suggester.
func NewInputHandler(suggester suggest.Suggester, in io.Reader, printer *Printer, minLength int) *InputHandler {
	return &InputHandler{
		suggester: suggester,
		printer:   printer,
		in:        in,
		minLength: minLength,
	}
}

// Start runs the loop until input is exhausted or ctx is done. Both end it without error.
func (h *InputHandler) Start(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	h.printer.Prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				log.Debug("input closed", "requests", h.requestCount)
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if query := strings.TrimSpace(line); query != "" {
				h.handleInput(ctx, query)
			}
			h.printer.Prompt()
		}
	}
}

// handleInput runs one query through the suggester and prints the result.
func (h *InputHandler) handleInput(ctx context.Context, query string) {
	h.requestCount++

	if utf8.RuneCountInString(query) < h.minLength {
		log.Warnf("Query too short: '%s' (min %d characters)", query, h.minLength)
		return
	}

	start := time.Now()
	suggestions, err := h.suggester.Suggest(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Suggest failed for '%s': %v", query, err)
		return
	}

	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)
	h.printer.Print(query, suggestions, elapsed)
}
