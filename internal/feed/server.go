package feed

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// keepAliveInterval spaces comment frames so idle connections aren't
// reaped by intermediaries.
const keepAliveInterval = 15 * time.Second

// sessionCookie is the cookie name accepted for credentialed subscribers.
const sessionCookie = "scanstream_session"

// Server serves the event stream over HTTP.
type Server struct {
	feed      *Feed
	authToken string
}

func NewServer(feed *Feed, authToken string) *Server {
	return &Server{feed: feed, authToken: authToken}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/events", s.handleEvents)
}

// handleEvents holds the response open as a text/event-stream. A
// lastEventID query parameter replays history after that cursor before
// the live stream starts.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub, backlog := s.feed.subscribe(r.URL.Query().Get("lastEventID"))
	defer s.feed.unsubscribe(sub)

	log.Printf("subscriber connected: %s (replaying %d events)", r.RemoteAddr, len(backlog))

	for _, ev := range backlog {
		writeEvent(w, ev)
	}
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Printf("subscriber disconnected: %s", r.RemoteAddr)
			return
		case ev, ok := <-sub.ch:
			if !ok {
				return
			}
			writeEvent(w, ev)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev event) {
	fmt.Fprintf(w, "id: %d\ndata: %s\n\n", ev.id, ev.data)
}

func (s *Server) authorize(r *http.Request) bool {
	if s.authToken == "" {
		return true
	}

	if r.URL.Query().Get("token") == s.authToken {
		return true
	}

	if c, err := r.Cookie(sessionCookie); err == nil && c.Value == s.authToken {
		return true
	}

	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.authToken {
		return true
	}

	return false
}

func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Feed listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
