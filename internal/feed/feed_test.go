package feed

import (
	"sync"
	"testing"

	"github.com/zozs/scan-stream/internal/scan"
)

func publishN(f *Feed, n int) {
	for i := 1; i <= n; i++ {
		f.Publish([]scan.StatusUpdate{{ScanID: i, Status: scan.Scanning}})
	}
}

func TestPublishAssignsSequentialIDs(t *testing.T) {
	f := New(16)
	publishN(f, 3)

	if f.LastID() != 3 {
		t.Errorf("LastID = %d, want 3", f.LastID())
	}
	sub, backlog := f.subscribe("0")
	defer f.unsubscribe(sub)

	if len(backlog) != 3 {
		t.Fatalf("backlog has %d events, want 3", len(backlog))
	}
	for i, ev := range backlog {
		if ev.id != uint64(i+1) {
			t.Errorf("backlog[%d].id = %d, want %d", i, ev.id, i+1)
		}
	}
}

func TestSubscribeReplaysAfterCursor(t *testing.T) {
	f := New(16)
	publishN(f, 5)

	sub, backlog := f.subscribe("3")
	defer f.unsubscribe(sub)

	if len(backlog) != 2 {
		t.Fatalf("backlog has %d events, want 2", len(backlog))
	}
	if backlog[0].id != 4 || backlog[1].id != 5 {
		t.Errorf("backlog ids = %d, %d, want 4, 5", backlog[0].id, backlog[1].id)
	}
}

func TestSubscribeWithoutCursorSkipsHistory(t *testing.T) {
	f := New(16)
	publishN(f, 5)

	sub, backlog := f.subscribe("")
	defer f.unsubscribe(sub)
	if len(backlog) != 0 {
		t.Errorf("fresh subscriber got %d replayed events, want 0", len(backlog))
	}

	// Garbage cursors are treated like a fresh subscription.
	sub2, backlog2 := f.subscribe("not-a-number")
	defer f.unsubscribe(sub2)
	if len(backlog2) != 0 {
		t.Errorf("garbage cursor got %d replayed events, want 0", len(backlog2))
	}
}

func TestHistoryIsBounded(t *testing.T) {
	f := New(3)
	publishN(f, 10)

	sub, backlog := f.subscribe("0")
	defer f.unsubscribe(sub)

	if len(backlog) != 3 {
		t.Fatalf("backlog has %d events, want history cap of 3", len(backlog))
	}
	if backlog[0].id != 8 {
		t.Errorf("oldest retained id = %d, want 8", backlog[0].id)
	}
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	f := New(16)
	sub, _ := f.subscribe("")
	defer f.unsubscribe(sub)

	f.Publish([]scan.StatusUpdate{{ScanID: 7, Status: scan.Failed}})

	select {
	case ev := <-sub.ch:
		if ev.id != 1 {
			t.Errorf("delivered id = %d, want 1", ev.id)
		}
		if string(ev.data) != `[{"scanId":7,"status":"failed"}]` {
			t.Errorf("delivered data = %s", ev.data)
		}
	default:
		t.Fatal("nothing delivered to subscriber")
	}
}

func TestSlowSubscriberDropped(t *testing.T) {
	f := New(16)
	sub, _ := f.subscribe("")
	for i := 0; i < cap(sub.ch); i++ {
		sub.ch <- event{}
	}

	f.Publish([]scan.StatusUpdate{{ScanID: 1, Status: scan.Scanning}})

	if f.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want slow subscriber dropped", f.SubscriberCount())
	}
	// The dropped channel must be closed so the handler's read loop ends.
	n := 0
	for range sub.ch {
		n++
	}
	if n != cap(sub.ch) {
		t.Errorf("drained %d buffered events, want %d", n, cap(sub.ch))
	}
}

func TestPublishDuringUnsubscribe(t *testing.T) {
	f := New(8)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		sub, _ := f.subscribe("")
		wg.Add(1)
		go func(s *subscriber) {
			defer wg.Done()
			f.unsubscribe(s)
		}(sub)
	}
	for i := 1; i <= 64; i++ {
		f.Publish([]scan.StatusUpdate{{ScanID: i, Status: scan.Scanning}})
	}
	wg.Wait()

	if f.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", f.SubscriberCount())
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	f := New(16)
	sub, _ := f.subscribe("")

	f.unsubscribe(sub)
	f.unsubscribe(sub)

	if f.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d, want 0", f.SubscriberCount())
	}
}
