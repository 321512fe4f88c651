package client

import (
	"errors"
	"testing"

	"github.com/zozs/scan-stream/internal/scan"
)

func TestDecodeBatch(t *testing.T) {
	payload := `[{"scanId": 1, "status": "scanning"}, {"scanId": 2, "status": "Failed"}]`

	b, err := DecodeBatch([]byte(payload), "41")
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if b.Cursor != "41" {
		t.Errorf("cursor = %q, want \"41\"", b.Cursor)
	}
	if len(b.Updates) != 2 {
		t.Fatalf("decoded %d updates, want 2", len(b.Updates))
	}
	if b.Updates[0].ScanID != 1 || b.Updates[0].Status != scan.Scanning {
		t.Errorf("updates[0] = %+v", b.Updates[0])
	}
	if b.Updates[1].ScanID != 2 || b.Updates[1].Status != scan.Failed {
		t.Errorf("updates[1] = %+v", b.Updates[1])
	}
}

func TestDecodeBatchEmpty(t *testing.T) {
	b, err := DecodeBatch([]byte(`[]`), "7")
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(b.Updates) != 0 {
		t.Errorf("decoded %d updates, want 0", len(b.Updates))
	}
	if b.Cursor != "7" {
		t.Errorf("cursor = %q, want \"7\"", b.Cursor)
	}
}

func TestDecodeBatchFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `not json at all`},
		{"not an array", `{"scanId": 1, "status": "scanning"}`},
		{"unknown status tag", `[{"scanId": 1, "status": "exploded"}]`},
		{"wrong id type", `[{"scanId": "one", "status": "scanning"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBatch([]byte(tt.payload), "1")
			if err == nil {
				t.Fatal("DecodeBatch succeeded, want error")
			}
			if !errors.Is(err, ErrBadPayload) {
				t.Errorf("error %v does not wrap ErrBadPayload", err)
			}
		})
	}
}
