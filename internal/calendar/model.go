package calendar

import "time"

// Calendar is the root aggregate. Events are owned exclusively by it.
type Calendar struct {
	ID          string
	Name        string
	Description string
	Metadata    *Metadata
	Events      []Event
}

// Metadata is embedded in the calendar row; it has no identity of its own.
// Count is a denormalized hint and is never reconciled with len(Events).
type Metadata struct {
	Status     Status
	Visibility Visibility
	CreatedAt  string
	CreatedBy  string
	UpdatedAt  string
	UpdatedBy  string
	Count      int
}

type Event struct {
	ID            string
	Name          string
	Description   string
	Type          EventType
	Disabled      bool
	AllDay        bool
	StartDateTime *time.Time
	EndDateTime   *time.Time
	Location      string
	CreatedAt     string
	CreatedBy     string
	UpdatedAt     string
	UpdatedBy     string
}
