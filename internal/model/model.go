package model

import (
	"strings"
	"time"
)

// Wall-clock layouts used for event start/end values. Values deliberately
// carry no zone offset: an event entered as "09:00" means 09:00 on the
// wall clock wherever the calendar is displayed, so all parsing happens
// against an explicit *time.Location and never against UTC.
const (
	LayoutDate     = "2006-01-02"
	LayoutDateTime = "2006-01-02T15:04"
)

// Event is a user-created calendar entry. Start and End hold wall-clock
// strings: LayoutDate for all-day events, LayoutDateTime otherwise.
// End may be empty.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	AllDay      bool   `json:"allDay"`
}

// Identity is the authenticated user persisted across restarts.
// Token is empty when the auth service issued none.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// Occurrence is a single concrete instance of a subscribed-feed event
// after recurrence expansion, normalized into the display timezone.
// Occurrences are display-only and never written back to storage.
type Occurrence struct {
	SourceID string
	UID      string

	// InstanceKey distinguishes instances of a recurring event; it is
	// derived from the local start time.
	InstanceKey string

	Title       string
	Description string
	Location    string

	AllDay bool

	Start time.Time
	End   time.Time
}

// SplitWallClock splits a wall-clock value into its date and time-of-day
// components. The clock part is empty for date-only values.
func SplitWallClock(value string) (date, clock string) {
	if i := strings.IndexByte(value, 'T'); i >= 0 {
		return value[:i], value[i+1:]
	}
	return value, ""
}

// JoinWallClock combines a date and an optional clock into a wall-clock
// value. An empty clock yields a date-only value.
func JoinWallClock(date, clock string) string {
	if clock == "" {
		return date
	}
	return date + "T" + clock
}

// ParseWallClock parses a wall-clock value in the given location. hasTime
// reports whether the value carried a time-of-day component. loc nil means
// time.Local.
func ParseWallClock(value string, loc *time.Location) (t time.Time, hasTime bool, err error) {
	if loc == nil {
		loc = time.Local
	}
	if strings.ContainsRune(value, 'T') {
		t, err = time.ParseInLocation(LayoutDateTime, value, loc)
		return t, true, err
	}
	t, err = time.ParseInLocation(LayoutDate, value, loc)
	return t, false, err
}

// FormatWallClock renders t as a wall-clock value using t's own calendar
// fields. Callers must convert t into the display location first; the
// conversion here is purely lexical.
func FormatWallClock(t time.Time, allDay bool) string {
	if allDay {
		return t.Format(LayoutDate)
	}
	return t.Format(LayoutDateTime)
}
