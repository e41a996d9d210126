package metadata

import "strings"

// Metadata is a standalone descriptive document, unrelated to calendar
// metadata. It lives only in process memory.
type Metadata struct {
	ID          string
	Name        string
	Description string
	Info        *Info
	Entries     []Entry
}

// Info carries the creation stamps as wire strings: CreatedDate is
// MM/dd/yyyy, CreatedTime HH:mm:ss, CreatedDatetime MM/dd/yyyy HH:mm:ss.
type Info struct {
	State           State
	CreatedDate     string
	CreatedTime     string
	CreatedDatetime string
}

type Entry struct {
	Name  string
	Count *int
	Type  EntryType
}

const (
	DateLayout     = "01/02/2006"
	TimeLayout     = "15:04:05"
	DatetimeLayout = "01/02/2006 15:04:05"
)

type State string

const (
	StateUnknown  State = "unknown"
	StateActive   State = "active"
	StateInactive State = "inactive"
)

func LookupState(s string) (State, bool) {
	switch v := State(strings.ToLower(strings.TrimSpace(s))); v {
	case StateUnknown, StateActive, StateInactive:
		return v, true
	}
	return "", false
}

type EntryType string

const (
	EntryStandard EntryType = "standard"
	EntryPremium  EntryType = "premium"
	EntryBasic    EntryType = "basic"
)

func LookupEntryType(s string) (EntryType, bool) {
	switch v := EntryType(strings.ToLower(strings.TrimSpace(s))); v {
	case EntryStandard, EntryPremium, EntryBasic:
		return v, true
	}
	return "", false
}

// clone copies m so callers never share the repository's slices or Info.
func (m Metadata) clone() Metadata {
	if m.Info != nil {
		info := *m.Info
		m.Info = &info
	}
	if m.Entries != nil {
		entries := make([]Entry, len(m.Entries))
		for i, e := range m.Entries {
			if e.Count != nil {
				n := *e.Count
				e.Count = &n
			}
			entries[i] = e
		}
		m.Entries = entries
	}
	return m
}
