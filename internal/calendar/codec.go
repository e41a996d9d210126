package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Status, Visibility and EventType hold the lower-case name that is written
// to storage and to the wire. The zero value means "absent".
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type Visibility string

const (
	VisibilityPersonal Visibility = "personal"
	VisibilityShared   Visibility = "shared"
	VisibilityPrivate  Visibility = "private"
)

type EventType string

const (
	EventTypeHoliday     EventType = "holiday"
	EventTypeMeeting     EventType = "meeting"
	EventTypeAppointment EventType = "appointment"
	EventTypeReminder    EventType = "reminder"
	EventTypeOther       EventType = "other"
)

// ParseStatus never fails: unknown or empty input decodes to StatusUnknown.
func ParseStatus(s string) Status {
	if v, ok := LookupStatus(s); ok {
		return v
	}
	return StatusUnknown
}

// LookupStatus is the strict form used for request validation.
func LookupStatus(s string) (Status, bool) {
	switch v := Status(normalize(s)); v {
	case StatusUnknown, StatusActive, StatusInactive:
		return v, true
	}
	return "", false
}

// ParseVisibility never fails: unknown or empty input decodes to VisibilityPersonal.
func ParseVisibility(s string) Visibility {
	if v, ok := LookupVisibility(s); ok {
		return v
	}
	return VisibilityPersonal
}

func LookupVisibility(s string) (Visibility, bool) {
	switch v := Visibility(normalize(s)); v {
	case VisibilityPersonal, VisibilityShared, VisibilityPrivate:
		return v, true
	}
	return "", false
}

// ParseEventType never fails: unknown or empty input decodes to EventTypeOther.
func ParseEventType(s string) EventType {
	if v, ok := LookupEventType(s); ok {
		return v
	}
	return EventTypeOther
}

func LookupEventType(s string) (EventType, bool) {
	switch v := EventType(normalize(s)); v {
	case EventTypeHoliday, EventTypeMeeting, EventTypeAppointment, EventTypeReminder, EventTypeOther:
		return v, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// storage forms: absent and unrecognized values are written as the default.
func (s Status) storage() string     { return string(ParseStatus(string(s))) }
func (v Visibility) storage() string { return string(ParseVisibility(string(v))) }
func (t EventType) storage() string  { return string(ParseEventType(string(t))) }

func ptrOr[T any](p *T, d T) T {
	if p == nil {
		return d
	}
	return *p
}

// TimestampLayout is the wire layout for event times and audit stamps (MM/dd/yyyy HH:mm:ss).
const TimestampLayout = "01/02/2006 15:04:05"

// FormatTimestamp renders t in TimestampLayout; nil renders as "".
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout and RFC 3339. Empty input yields nil.
func ParseTimestamp(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{TimestampLayout, time.RFC3339Nano, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return WallClock(&t), nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q (want %s)", s, TimestampLayout)
}

// WallClock drops the zone and keeps the clock reading, returned in UTC.
// Event times are zone-less; this keeps them stable across drivers that
// attach different locations on read. A zero time decodes to nil.
func WallClock(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	w := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return &w
}
