package scan

import (
	"sort"
	"time"
)

// Scan is one tracked scan. StartedAt is set when the scan first becomes
// known; Duration is only meaningful once Status is terminal.
type Scan struct {
	ID        int
	Status    Status
	StartedAt time.Time
	Duration  time.Duration
}

// Elapsed returns the final duration for a terminal scan, or the live
// elapsed time at now for one still scanning. Computed on demand so
// repeated reads reflect real elapsed time without mutating the scan.
func (s *Scan) Elapsed(now time.Time) time.Duration {
	if s.Status.IsTerminal() {
		return s.Duration
	}
	return now.Sub(s.StartedAt)
}

// Outcome describes what Apply did with a notification.
type Outcome int

const (
	// OutcomeCreated: the scan was not known before; it now exists.
	OutcomeCreated Outcome = iota
	// OutcomeCompleted: the scan moved from scanning to a terminal status.
	OutcomeCompleted
	// OutcomeDuplicate: a repeated "scanning" for a scan already scanning.
	OutcomeDuplicate
	// OutcomeRejected: a transition out of a terminal status was refused.
	OutcomeRejected
)

// Result reports the outcome of applying one notification, with enough
// context for the caller to emit a diagnostic.
type Result struct {
	Outcome  Outcome
	ScanID   int
	Current  Status // status after Apply returned
	Incoming Status // status the notification carried
}

// Registry is the authoritative scan id → scan state mapping. Keys are
// append-only: scans are created lazily on first reference and never
// removed. The registry is not synchronized; it must be owned and mutated
// by a single goroutine (the event loop).
type Registry struct {
	scans map[int]*Scan
}

func NewRegistry() *Registry {
	return &Registry{scans: make(map[int]*Scan)}
}

// Apply folds one notification into the registry at time now.
//
//	current         scanning    scanned            failed
//	Scanning(t0)    no change   Scanned(now-t0)    Failed(now-t0)
//	Scanned(d)      rejected    rejected           rejected
//	Failed(d)       rejected    rejected           rejected
//
// A scan seen for the first time is created as Scanning(now) before the
// incoming status is considered, so a direct "scanned" or "failed" still
// passes through the scanning origin and gets a duration (of zero or
// more). Re-applying a notification that produced no change produces no
// change again, which makes Apply idempotent under redelivery.
func (r *Registry) Apply(now time.Time, u StatusUpdate) Result {
	s, known := r.scans[u.ScanID]
	if !known {
		s = &Scan{ID: u.ScanID, Status: Scanning, StartedAt: now}
		r.scans[u.ScanID] = s
	}

	res := Result{ScanID: u.ScanID, Incoming: u.Status}

	switch {
	case s.Status.IsTerminal():
		res.Outcome = OutcomeRejected
	case u.Status == Scanning:
		if known {
			res.Outcome = OutcomeDuplicate
		} else {
			res.Outcome = OutcomeCreated
		}
	default:
		s.Status = u.Status
		s.Duration = now.Sub(s.StartedAt)
		if known {
			res.Outcome = OutcomeCompleted
		} else {
			// First reference already carried a terminal status.
			res.Outcome = OutcomeCreated
		}
	}

	res.Current = s.Status
	return res
}

// Get returns a copy of the scan with the given id.
func (r *Registry) Get(id int) (Scan, bool) {
	s, ok := r.scans[id]
	if !ok {
		return Scan{}, false
	}
	return *s, true
}

// Len returns the number of tracked scans.
func (r *Registry) Len() int {
	return len(r.scans)
}

// Counts returns how many scans are in each status.
func (r *Registry) Counts() (scanning, scanned, failed int) {
	for _, s := range r.scans {
		switch s.Status {
		case Scanning:
			scanning++
		case Scanned:
			scanned++
		case Failed:
			failed++
		}
	}
	return
}

// Snapshot returns copies of all scans sorted by descending id, newest
// scans first.
func (r *Registry) Snapshot() []Scan {
	out := make([]Scan, 0, len(r.scans))
	for _, s := range r.scans {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
