// Package client provides the subscription side of the scan status feed:
// a long-lived server-sent-events connection and the decoder that turns
// raw event payloads into typed status updates.
package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
)

// lastEventIDParam is the query parameter carrying the resume cursor when
// re-subscribing. The feed side uses the same name without importing this
// package.
const lastEventIDParam = "lastEventID"

const (
	// Room for a burst of events while the loop is mid-dispatch.
	eventBuffer = 16
	// SSE data lines carry whole JSON batches; allow large ones.
	maxLineSize = 1024 * 1024
)

// Event is one raw server-sent event: its payload and the server-assigned
// id identifying its position in the stream. The id is opaque here.
type Event struct {
	ID   string
	Data string
}

// Config describes how to reach the push endpoint. Credentials ride on the
// subscription request; they play no further part in the stream.
type Config struct {
	// URL is the full subscription URL, topic selection included.
	URL string
	// Token, if set, is sent as a bearer token.
	Token string
	// Cookie, if set, is sent verbatim as the Cookie header (session auth).
	Cookie string
	// HTTPClient overrides the transport; nil means a fresh client with no
	// timeout, since the subscription is expected to stay open.
	HTTPClient *http.Client
}

// Stream is one live subscription. Events are delivered on the channel
// returned by Events until the connection dies or Close is called, at
// which point the channel is closed.
type Stream struct {
	events    chan Event
	body      io.ReadCloser
	cancel    context.CancelFunc
	live      atomic.Bool
	closeOnce sync.Once
}

// Open establishes the subscription. A non-empty lastEventID is appended
// as a query parameter so the server can skip events already delivered;
// the server may still replay earlier ones, which the registry tolerates.
func Open(ctx context.Context, cfg Config, lastEventID string) (*Stream, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	if lastEventID != "" {
		q := u.Query()
		q.Set(lastEventIDParam, lastEventID)
		u.RawQuery = q.Encode()
	}

	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}
	if cfg.Cookie != "" {
		req.Header.Set("Cookie", cfg.Cookie)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	resp, err := hc.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("subscribe: %s", resp.Status)
	}

	s := &Stream{
		events: make(chan Event, eventBuffer),
		body:   resp.Body,
		cancel: cancel,
	}
	s.live.Store(true)
	go s.readLoop()
	return s, nil
}

// Events returns the delivery channel. It is closed exactly once, when
// the stream dies or is closed.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// IsLive reports current transport readiness without blocking. A server
// that silently stops sending while keeping the socket open is not
// detected here; the periodic probe interval bounds that window.
func (s *Stream) IsLive() bool {
	return s.live.Load()
}

// Close releases the underlying transport. Safe to call multiple times.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		s.live.Store(false)
		s.cancel()
		s.body.Close()
	})
}

// readLoop parses the text/event-stream framing: "id:" lines set the
// event id (which persists across events until replaced, as EventSource
// does), "data:" lines accumulate the payload, and a blank line
// dispatches. Comment lines (leading ':') and other fields are ignored.
func (s *Stream) readLoop() {
	defer func() {
		s.live.Store(false)
		close(s.events)
	}()

	sc := bufio.NewScanner(s.body)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var id string
	var data []string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if len(data) > 0 {
				s.events <- Event{ID: id, Data: strings.Join(data, "\n")}
				data = nil
			}
		case strings.HasPrefix(line, ":"):
			// keep-alive comment
		case strings.HasPrefix(line, "id:"):
			id = strings.TrimPrefix(strings.TrimPrefix(line, "id:"), " ")
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}
