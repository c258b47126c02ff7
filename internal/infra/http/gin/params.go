package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// flexibleDate accepts "2006-01-02" or an RFC 3339 timestamp. A timestamp
// keeps its offset so the calendar day is the one the client saw.
type flexibleDate struct {
	time.Time
}

func (d *flexibleDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := parseFlexibleTime(raw)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseFlexibleTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}
