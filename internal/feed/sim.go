package feed

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/zozs/scan-stream/internal/scan"
)

// simScan is one simulated scan in flight.
type simScan struct {
	id       int
	target   string
	endTick  int
	fail     bool
	finished bool
}

// Simulator drives fake scans through scanning → scanned/failed and
// publishes their status batches. It deliberately redelivers a fraction
// of notifications, including ones for already-terminal scans, so
// subscribers get exercised on duplicate and stale deliveries the way a
// real at-least-once feed would.
type Simulator struct {
	feed      *Feed
	interval  time.Duration
	failRatio float64
	targets   []string
	rng       *rand.Rand

	nextID int
	active []*simScan
	done   []*simScan
}

func NewSimulator(feed *Feed, interval time.Duration, failRatio float64) *Simulator {
	return &Simulator{
		feed:      feed,
		interval:  interval,
		failRatio: failRatio,
		targets:   scanTargets(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID:    1,
	}
}

// scanTargets names the things being "scanned". Real host partitions make
// the demo output recognizable; a synthetic list covers hosts where
// partition enumeration fails.
func scanTargets() []string {
	parts, err := disk.Partitions(false)
	if err != nil || len(parts) == 0 {
		return []string{"/data", "/home", "/srv", "/var/log"}
	}
	targets := make([]string, 0, len(parts))
	for _, p := range parts {
		targets = append(targets, p.Mountpoint)
	}
	return targets
}

func (s *Simulator) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Simulator) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tick++
			if batch := s.advance(tick); len(batch) > 0 {
				s.feed.Publish(batch)
			}
		}
	}
}

// advance moves the simulation one tick and returns the notifications to
// publish for it.
func (s *Simulator) advance(tick int) []scan.StatusUpdate {
	var batch []scan.StatusUpdate

	// Keep a handful of scans in flight.
	if len(s.active) < 3 && s.rng.Intn(3) == 0 {
		sc := &simScan{
			id:      s.nextID,
			target:  s.targets[s.rng.Intn(len(s.targets))],
			endTick: tick + 3 + s.rng.Intn(15),
			fail:    s.rng.Float64() < s.failRatio,
		}
		s.nextID++
		s.active = append(s.active, sc)
		log.Printf("scan %d started: %s", sc.id, sc.target)
		batch = append(batch, scan.StatusUpdate{ScanID: sc.id, Status: scan.Scanning})
	}

	remaining := s.active[:0]
	for _, sc := range s.active {
		if tick >= sc.endTick {
			st := scan.Scanned
			if sc.fail {
				st = scan.Failed
			}
			log.Printf("scan %d %s: %s", sc.id, st, sc.target)
			batch = append(batch, scan.StatusUpdate{ScanID: sc.id, Status: st})
			sc.finished = true
			s.done = append(s.done, sc)
		} else {
			remaining = append(remaining, sc)
		}
	}
	s.active = remaining

	// At-least-once delivery: sometimes repeat an old notification.
	if dup := s.redeliver(); dup != nil {
		batch = append(batch, *dup)
	}

	return batch
}

// redeliver picks an occasional stale notification: a repeated "scanning"
// for an in-flight scan, or any status for a finished one.
func (s *Simulator) redeliver() *scan.StatusUpdate {
	if s.rng.Intn(5) != 0 {
		return nil
	}
	if len(s.active) > 0 && s.rng.Intn(2) == 0 {
		sc := s.active[s.rng.Intn(len(s.active))]
		return &scan.StatusUpdate{ScanID: sc.id, Status: scan.Scanning}
	}
	if len(s.done) > 0 {
		sc := s.done[s.rng.Intn(len(s.done))]
		st := scan.Scanning
		if s.rng.Intn(2) == 0 {
			st = scan.Scanned
		}
		return &scan.StatusUpdate{ScanID: sc.id, Status: st}
	}
	return nil
}
