package plan

import (
	"encoding/json"
	"testing"
)

func TestDecodeID(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: `"65f1c0ffee"`, want: "65f1c0ffee"},
		{raw: `42`, want: "42"},
		{raw: ` 7 `, want: "7"},
		{raw: `null`, want: ""},
		{raw: ``, want: ""},
		{raw: `true`, wantErr: true},
		{raw: `{"id":1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := DecodeID(json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeID(%s) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DecodeID(%s) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNumericIDsDecode(t *testing.T) {
	var p Plan
	if err := json.Unmarshal([]byte(`{"id": 42, "goal": "Build a mobile app", "progress": 50, "tasks": []}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "42" || p.Goal != "Build a mobile app" || p.Progress != 50 {
		t.Errorf("unexpected plan: %+v", p)
	}

	var list []Summary
	if err := json.Unmarshal([]byte(`[{"id": 1, "goal": "a", "task_count": 3}, {"id": "b2", "goal": "b", "task_count": 0}]`), &list); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list[0].ID != "1" || list[0].TaskCount != 3 || list[1].ID != "b2" {
		t.Errorf("unexpected summaries: %+v", list)
	}
}
