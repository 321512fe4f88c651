package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zozs/scan-stream/internal/scan"
)

// ErrBadPayload marks a batch that could not be decoded: malformed JSON,
// a non-array payload, or an unknown status tag. Callers drop the whole
// batch; none of its updates are applied.
var ErrBadPayload = errors.New("malformed status payload")

// Batch is one decoded notification batch together with the cursor
// identifying its position in the stream.
type Batch struct {
	Updates []scan.StatusUpdate
	Cursor  string
}

// DecodeBatch parses a raw event payload into status updates. The payload
// must be a JSON array of {"scanId": int, "status": tag} objects.
func DecodeBatch(data []byte, cursor string) (Batch, error) {
	var updates []scan.StatusUpdate
	if err := json.Unmarshal(data, &updates); err != nil {
		return Batch{}, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return Batch{Updates: updates, Cursor: cursor}, nil
}
