// ABOUTME: Lenient timestamp type for backend datetimes
// ABOUTME: Accepts RFC3339 and naive ISO-8601 values (treated as UTC)
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp wraps time.Time so naive datetimes without a zone offset decode.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// NewTimestamp returns a pointer to a Timestamp holding tm.
func NewTimestamp(tm time.Time) *Timestamp {
	return &Timestamp{Time: tm}
}
