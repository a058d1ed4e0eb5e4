package order

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a scheduled wall-clock time stored as minutes since midnight.
// The zero value is an unset time, which sorts after every valid time.
type TimeOfDay struct {
	minutes int
	valid   bool
}

// NewTimeOfDay builds a valid TimeOfDay, returning the unset value when out of range
func NewTimeOfDay(hour, minute int) TimeOfDay {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}
	}
	return TimeOfDay{minutes: hour*60 + minute, valid: true}
}

// ParseTimeOfDay accepts "H:MM", "HH:MM", "HH:MM:SS" and "HHhMM".
// Anything else yields the unset value.
func ParseTimeOfDay(raw string) TimeOfDay {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return TimeOfDay{}
	}
	s = strings.Replace(s, "h", ":", 1)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}
	}
	minute := 0
	if parts[1] != "" {
		minute, err = strconv.Atoi(parts[1])
		if err != nil {
			return TimeOfDay{}
		}
	}
	return NewTimeOfDay(hour, minute)
}

// IsValid reports whether the time was set
func (t TimeOfDay) IsValid() bool {
	return t.valid
}

// Minutes returns minutes since midnight, or -1 when unset
func (t TimeOfDay) Minutes() int {
	if !t.valid {
		return -1
	}
	return t.minutes
}

// Before orders valid times chronologically and unset times last
func (t TimeOfDay) Before(other TimeOfDay) bool {
	switch {
	case !t.valid:
		return false
	case !other.valid:
		return true
	default:
		return t.minutes < other.minutes
	}
}

// String renders zero-padded "HH:MM", or "" when unset
func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.minutes/60, t.minutes%60)
}

// MarshalJSON implements json.Marshaler
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTimeOfDay(s)
	return nil
}
