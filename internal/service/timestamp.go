package service

import (
	"bytes"
	"fmt"
	"time"
)

// WireLayout is the zoneless layout the backend uses for timestamps.
const WireLayout = "2006-01-02T15:04:05"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	WireLayout,
	"2006-01-02T15:04",
	"2006-01-02",
}

// Timestamp is a backend timestamp. Zoneless values are read in local time.
type Timestamp struct {
	time.Time
}

// NewTimestamp returns a pointer to a Timestamp holding t.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// ParseTimestamp parses s using the layouts the backend and the CLI accept.
func ParseTimestamp(s string) (Timestamp, error) {
	return ParseTimestampIn(s, time.Local)
}

// ParseTimestampIn is like ParseTimestamp but reads zoneless values in loc.
func ParseTimestampIn(s string, loc *time.Location) (Timestamp, error) {
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp: %s", s)
}

// MarshalJSON encodes the timestamp in the backend's local layout.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Local().Format(WireLayout) + `"`), nil
}

// UnmarshalJSON decodes any of the accepted layouts; null leaves t zero.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid timestamp: %s", data)
	}
	parsed, err := ParseTimestamp(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
