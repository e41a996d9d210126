package calendar

import "time"

// CalendarRow is one row of the calendars relation. Every optional column is a
// pointer so NULLs survive the scan.
type CalendarRow struct {
	ID          string  `gorm:"column:id;primaryKey;type:text"`
	Name        *string `gorm:"column:name;type:text"`
	Description *string `gorm:"column:description;type:text"`
	Status      *string `gorm:"column:status;type:text"`
	Visibility  *string `gorm:"column:visibility;type:text"`
	CreatedAt   *string `gorm:"column:created_at;type:text"`
	CreatedBy   *string `gorm:"column:created_by;type:text"`
	UpdatedAt   *string `gorm:"column:updated_at;type:text"`
	UpdatedBy   *string `gorm:"column:updated_by;type:text"`
	Count       *int    `gorm:"column:count;not null;default:0"`

	// Ordering key for listings; set on first insert, never updated.
	CreatedTimestamp time.Time `gorm:"column:created_timestamp;not null;autoCreateTime"`
}

func (CalendarRow) TableName() string { return "calendars" }

// EventRow is one row of the events relation. CalendarID is the owning
// foreign key; it is never copied into the Event value.
type EventRow struct {
	ID            string     `gorm:"column:id;primaryKey;type:text"`
	CalendarID    string     `gorm:"column:calendar_id;type:text;not null;index"`
	Name          *string    `gorm:"column:name;type:text"`
	Description   *string    `gorm:"column:description;type:text"`
	Type          *string    `gorm:"column:type;type:text"`
	Disabled      *bool      `gorm:"column:disabled;not null;default:false"`
	AllDay        *bool      `gorm:"column:all_day;not null;default:false"`
	StartDateTime *time.Time `gorm:"column:start_datetime;type:timestamp"`
	EndDateTime   *time.Time `gorm:"column:end_datetime;type:timestamp"`
	Location      *string    `gorm:"column:location;type:text"`
	CreatedAt     *string    `gorm:"column:created_at;type:text"`
	CreatedBy     *string    `gorm:"column:created_by;type:text"`
	UpdatedAt     *string    `gorm:"column:updated_at;type:text"`
	UpdatedBy     *string    `gorm:"column:updated_by;type:text"`
}

func (EventRow) TableName() string { return "events" }

// AssembleCalendar rebuilds a calendar (without events) from its row.
func AssembleCalendar(r CalendarRow) Calendar {
	return Calendar{
		ID:          r.ID,
		Name:        ptrOr(r.Name, ""),
		Description: ptrOr(r.Description, ""),
		Metadata: &Metadata{
			Status:     ParseStatus(ptrOr(r.Status, "")),
			Visibility: ParseVisibility(ptrOr(r.Visibility, "")),
			CreatedAt:  ptrOr(r.CreatedAt, ""),
			CreatedBy:  ptrOr(r.CreatedBy, ""),
			UpdatedAt:  ptrOr(r.UpdatedAt, ""),
			UpdatedBy:  ptrOr(r.UpdatedBy, ""),
			Count:      ptrOr(r.Count, 0),
		},
		Events: []Event{},
	}
}

// AssembleEvent rebuilds one event from its row.
func AssembleEvent(r EventRow) Event {
	return Event{
		ID:            r.ID,
		Name:          ptrOr(r.Name, ""),
		Description:   ptrOr(r.Description, ""),
		Type:          ParseEventType(ptrOr(r.Type, "")),
		Disabled:      ptrOr(r.Disabled, false),
		AllDay:        ptrOr(r.AllDay, false),
		StartDateTime: WallClock(r.StartDateTime),
		EndDateTime:   WallClock(r.EndDateTime),
		Location:      ptrOr(r.Location, ""),
		CreatedAt:     ptrOr(r.CreatedAt, ""),
		CreatedBy:     ptrOr(r.CreatedBy, ""),
		UpdatedAt:     ptrOr(r.UpdatedAt, ""),
		UpdatedBy:     ptrOr(r.UpdatedBy, ""),
	}
}

func calendarRowOf(c *Calendar) CalendarRow {
	md := c.Metadata
	if md == nil {
		md = &Metadata{}
	}
	count := md.Count
	return CalendarRow{
		ID:          c.ID,
		Name:        strPtr(c.Name),
		Description: strPtr(c.Description),
		Status:      strPtr(md.Status.storage()),
		Visibility:  strPtr(md.Visibility.storage()),
		CreatedAt:   strPtr(md.CreatedAt),
		CreatedBy:   strPtr(md.CreatedBy),
		UpdatedAt:   strPtr(md.UpdatedAt),
		UpdatedBy:   strPtr(md.UpdatedBy),
		Count:       &count,
	}
}

func eventRowOf(calendarID string, e *Event) EventRow {
	disabled, allDay := e.Disabled, e.AllDay
	return EventRow{
		ID:            e.ID,
		CalendarID:    calendarID,
		Name:          strPtr(e.Name),
		Description:   strPtr(e.Description),
		Type:          strPtr(e.Type.storage()),
		Disabled:      &disabled,
		AllDay:        &allDay,
		StartDateTime: WallClock(e.StartDateTime),
		EndDateTime:   WallClock(e.EndDateTime),
		Location:      strPtr(e.Location),
		CreatedAt:     strPtr(e.CreatedAt),
		CreatedBy:     strPtr(e.CreatedBy),
		UpdatedAt:     strPtr(e.UpdatedAt),
		UpdatedBy:     strPtr(e.UpdatedBy),
	}
}

// empty optional text is stored as NULL
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
