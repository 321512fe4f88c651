// Package scan holds the scan domain model: the wire-level status
// notification and the registry that folds notifications into per-scan
// lifecycle state.
package scan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the lifecycle phase reported for a scan.
type Status int

const (
	Scanning Status = iota
	Scanned
	Failed
)

var statusNames = map[Status]string{
	Scanning: "scanning",
	Scanned:  "scanned",
	Failed:   "failed",
}

var statusFromName = map[string]Status{
	"scanning": Scanning,
	"scanned":  Scanned,
	"failed":   Failed,
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// IsTerminal reports whether no further transition is accepted from s.
func (s Status) IsTerminal() bool {
	return s == Scanned || s == Failed
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses a status tag, normalizing case to the lower-case
// wire form. Unknown tags are an error so a malformed batch is dropped as
// a whole instead of being half-applied.
func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	v, ok := statusFromName[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown scan status %q", name)
	}
	*s = v
	return nil
}

// StatusUpdate is a single wire-level notification about one scan.
type StatusUpdate struct {
	ScanID int    `json:"scanId"`
	Status Status `json:"status"`
}
