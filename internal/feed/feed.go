// Package feed implements the demo push endpoint: an HTTP server-sent
// event stream of scan status batches with monotonically assigned event
// ids, a bounded replay history for resuming clients, and a simulator
// that drives scans through their lifecycle.
package feed

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/zozs/scan-stream/internal/scan"
)

type event struct {
	id   uint64
	data []byte
}

type subscriber struct {
	ch chan event
}

// Feed assigns event ids, retains a bounded history for replay, and fans
// published batches out to all subscribers.
type Feed struct {
	mu      sync.Mutex
	subs    map[*subscriber]bool
	history []event
	nextID  uint64
	keep    int
}

func New(historySize int) *Feed {
	if historySize < 1 {
		historySize = 1
	}
	return &Feed{
		subs: make(map[*subscriber]bool),
		keep: historySize,
	}
}

// Publish assigns the next event id to the batch and delivers it to every
// subscriber. Subscribers that cannot keep up are dropped; a resuming
// client recovers the gap through the replay history. Fan-out happens
// under the lock: a channel is only ever closed while its subscriber is
// still in the map, so a send can never hit a closed channel.
func (f *Feed) Publish(updates []scan.StatusUpdate) {
	data, err := json.Marshal(updates)
	if err != nil {
		log.Printf("feed: marshal batch: %v", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	ev := event{id: f.nextID, data: data}
	f.history = append(f.history, ev)
	if len(f.history) > f.keep {
		f.history = f.history[len(f.history)-f.keep:]
	}

	for s := range f.subs {
		select {
		case s.ch <- ev:
		default:
			log.Printf("feed: subscriber too slow, dropping")
			delete(f.subs, s)
			close(s.ch)
		}
	}
}

// LastID returns the id of the most recently published event.
func (f *Feed) LastID() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextID
}

// subscribe registers a new subscriber and returns the backlog of events
// published after lastEventID. An unparsable or empty cursor yields no
// backlog: the subscriber starts from the live stream.
func (f *Feed) subscribe(lastEventID string) (*subscriber, []event) {
	after := uint64(0)
	replay := false
	if lastEventID != "" {
		if v, err := strconv.ParseUint(lastEventID, 10, 64); err == nil {
			after = v
			replay = true
		}
	}

	s := &subscriber{ch: make(chan event, 64)}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[s] = true

	var backlog []event
	if replay {
		for _, ev := range f.history {
			if ev.id > after {
				backlog = append(backlog, ev)
			}
		}
	}
	return s, backlog
}

func (f *Feed) unsubscribe(s *subscriber) {
	f.mu.Lock()
	if _, ok := f.subs[s]; ok {
		delete(f.subs, s)
		close(s.ch)
	}
	f.mu.Unlock()
}

// SubscriberCount returns the number of connected subscribers.
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
