// Package biztime holds the time conventions shared by storage and transport.
// All timestamps are UTC and persisted as unix milliseconds.
package biztime

import "time"

// NowUTC returns the current time in UTC truncated to millisecond precision,
// which is what survives a round trip through storage.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ToMillis converts t to unix milliseconds. The zero time maps to 0.
func ToMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts unix milliseconds to a UTC time. 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// ToMillisPtr converts an optional time to optional unix milliseconds.
func ToMillisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// FromMillisPtr converts optional unix milliseconds to an optional UTC time.
func FromMillisPtr(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
