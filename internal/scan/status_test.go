package scan

import (
	"encoding/json"
	"testing"
)

func TestStatusUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{"scanning", `"scanning"`, Scanning, false},
		{"scanned", `"scanned"`, Scanned, false},
		{"failed", `"failed"`, Failed, false},
		{"mixed case is normalized", `"Scanned"`, Scanned, false},
		{"upper case is normalized", `"FAILED"`, Failed, false},
		{"unknown tag", `"paused"`, 0, true},
		{"empty tag", `""`, 0, true},
		{"not a string", `42`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Status
			err := json.Unmarshal([]byte(tt.input), &s)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Unmarshal(%s) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal(%s): %v", tt.input, err)
			}
			if s != tt.want {
				t.Errorf("Unmarshal(%s) = %s, want %s", tt.input, s, tt.want)
			}
		})
	}
}

func TestStatusMarshal(t *testing.T) {
	data, err := json.Marshal(Scanned)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"scanned"` {
		t.Errorf("Marshal(Scanned) = %s, want \"scanned\"", data)
	}
}

func TestStatusUpdateWireFormat(t *testing.T) {
	var u StatusUpdate
	if err := json.Unmarshal([]byte(`{"scanId": 17, "status": "failed"}`), &u); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if u.ScanID != 17 || u.Status != Failed {
		t.Errorf("got %+v, want {17 failed}", u)
	}

	data, err := json.Marshal(StatusUpdate{ScanID: 3, Status: Scanning})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"scanId":3,"status":"scanning"}` {
		t.Errorf("Marshal = %s", data)
	}
}
