package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp is an optional point in time. The zero value means "not set".
//
// The listing service reports dates as epoch milliseconds, either as a JSON
// number or as a numeric string. RFC3339 strings are accepted as well so that
// hand-written listing files stay readable.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Valid reports whether the timestamp is set.
func (ts Timestamp) Valid() bool {
	return !ts.IsZero()
}

// UnmarshalJSON implements json.Unmarshaler. Values that are not a
// recognizable date decode to an unset timestamp so one bad record never
// fails a whole listing.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = Timestamp{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*ts = Timestamp{}
			return nil
		}
		*ts = parseString(s)
		return nil
	}

	ms, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		*ts = Timestamp{}
		return nil
	}
	*ts = fromMillis(ms)
	return nil
}

// MarshalJSON writes epoch milliseconds, or null when unset.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ts.UnixMilli(), 10)), nil
}

// parseString accepts epoch milliseconds or RFC3339; anything else is unset.
func parseString(s string) Timestamp {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromMillis(ms)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Timestamp{}
	}
	return Timestamp{Time: t}
}

func fromMillis(ms int64) Timestamp {
	if ms <= 0 {
		return Timestamp{}
	}
	return Timestamp{Time: time.UnixMilli(ms).UTC()}
}
