package handler

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"calendars/internal/calendar"

	"github.com/google/uuid"
)

// calendarReq is the create/replace document. XML uses the kebab-case element
// names with repeated <event> children; JSON uses camelCase and an events array.
type calendarReq struct {
	XMLName     xml.Name             `xml:"calendar" json:"-"`
	ID          string               `xml:"id,attr" json:"id"`
	Name        string               `xml:"name" json:"name"`
	Description string               `xml:"description" json:"description"`
	Metadata    *calendarMetadataReq `xml:"metadata" json:"metadata"`
	Events      []eventReq           `xml:"event" json:"events"`
}

type calendarMetadataReq struct {
	Status     string `xml:"status" json:"status"`
	Visibility string `xml:"visibility" json:"visibility"`
	CreatedAt  string `xml:"created-at" json:"createdAt"`
	CreatedBy  string `xml:"created-by" json:"createdBy"`
	UpdatedAt  string `xml:"updated-at" json:"updatedAt"`
	UpdatedBy  string `xml:"updated-by" json:"updatedBy"`
	Count      *int   `xml:"count" json:"count"`
}

type eventReq struct {
	ID            string `xml:"id,attr" json:"id"`
	Name          string `xml:"name" json:"name"`
	Description   string `xml:"description" json:"description"`
	Type          string `xml:"type" json:"type"`
	Disabled      *bool  `xml:"disabled" json:"disabled"`
	AllDay        *bool  `xml:"all-day" json:"allDay"`
	StartDateTime string `xml:"start-datetime" json:"startDateTime"`
	EndDateTime   string `xml:"end-datetime" json:"endDateTime"`
	Location      string `xml:"location" json:"location"`
	CreatedAt     string `xml:"created-at" json:"createdAt"`
	CreatedBy     string `xml:"created-by" json:"createdBy"`
	UpdatedAt     string `xml:"updated-at" json:"updatedAt"`
	UpdatedBy     string `xml:"updated-by" json:"updatedBy"`
}

// toCalendar validates the document and converts it. On failure the
// returned map holds every problem keyed by field path.
func (req *calendarReq) toCalendar() (*calendar.Calendar, fieldErrors) {
	fe := fieldErrors{}

	id := strings.TrimSpace(req.ID)
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			fe.add("id", "must be a UUID")
		}
	}
	if strings.TrimSpace(req.Name) == "" {
		fe.add("name", "Calendar name is required")
	}
	fe.maxLen("name", req.Name, 255)
	fe.maxLen("description", req.Description, 1000)

	cal := &calendar.Calendar{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Events:      make([]calendar.Event, 0, len(req.Events)),
	}

	if md := req.Metadata; md != nil {
		cal.Metadata = &calendar.Metadata{
			CreatedAt: md.CreatedAt,
			CreatedBy: md.CreatedBy,
			UpdatedAt: md.UpdatedAt,
			UpdatedBy: md.UpdatedBy,
		}
		if strings.TrimSpace(md.Status) != "" {
			if s, ok := calendar.LookupStatus(md.Status); ok {
				cal.Metadata.Status = s
			} else {
				fe.add("metadata.status", "must be one of unknown, active, inactive")
			}
		}
		if strings.TrimSpace(md.Visibility) != "" {
			if v, ok := calendar.LookupVisibility(md.Visibility); ok {
				cal.Metadata.Visibility = v
			} else {
				fe.add("metadata.visibility", "must be one of personal, shared, private")
			}
		}
		fe.maxLen("metadata.createdBy", md.CreatedBy, 255)
		fe.maxLen("metadata.updatedBy", md.UpdatedBy, 255)
		if md.Count != nil {
			if *md.Count < 0 {
				fe.add("metadata.count", "Event count must be non-negative")
			}
			cal.Metadata.Count = *md.Count
		}
	}

	for i := range req.Events {
		ev := req.Events[i].toEvent(fmt.Sprintf("events[%d].", i), fe)
		cal.Events = append(cal.Events, ev)
	}

	if len(fe) > 0 {
		return nil, fe
	}
	return cal, nil
}

func (req *eventReq) toEvent(prefix string, fe fieldErrors) calendar.Event {
	ev := calendar.Event{
		ID:          strings.TrimSpace(req.ID),
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		CreatedAt:   req.CreatedAt,
		CreatedBy:   req.CreatedBy,
		UpdatedAt:   req.UpdatedAt,
		UpdatedBy:   req.UpdatedBy,
	}
	if req.Disabled != nil {
		ev.Disabled = *req.Disabled
	}
	if req.AllDay != nil {
		ev.AllDay = *req.AllDay
	}

	if strings.TrimSpace(req.Name) == "" {
		fe.add(prefix+"name", "Event name is required")
	}
	fe.maxLen(prefix+"name", req.Name, 255)
	fe.maxLen(prefix+"description", req.Description, 2000)
	fe.maxLen(prefix+"location", req.Location, 255)
	fe.maxLen(prefix+"createdBy", req.CreatedBy, 255)
	fe.maxLen(prefix+"updatedBy", req.UpdatedBy, 255)

	switch t, ok := calendar.LookupEventType(req.Type); {
	case strings.TrimSpace(req.Type) == "":
		fe.add(prefix+"type", "Event type is required")
	case !ok:
		fe.add(prefix+"type", "must be one of holiday, meeting, appointment, reminder, other")
	default:
		ev.Type = t
	}

	ev.StartDateTime = requiredTimestamp(fe, prefix+"startDateTime", req.StartDateTime, "Event start date and time is required")
	ev.EndDateTime = requiredTimestamp(fe, prefix+"endDateTime", req.EndDateTime, "Event end date and time is required")
	return ev
}

func requiredTimestamp(fe fieldErrors, field, raw, missing string) *time.Time {
	t, err := calendar.ParseTimestamp(raw)
	switch {
	case err != nil:
		fe.add(field, "must use format MM/dd/yyyy HH:mm:ss")
	case t == nil:
		fe.add(field, missing)
	}
	return t
}

type calendarResp struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Metadata    calendarMetadataResp `json:"metadata"`
	Events      []eventResp          `json:"events"`
}

type calendarMetadataResp struct {
	Status     calendar.Status     `json:"status"`
	Visibility calendar.Visibility `json:"visibility"`
	CreatedAt  string              `json:"createdAt"`
	CreatedBy  string              `json:"createdBy"`
	UpdatedAt  string              `json:"updatedAt"`
	UpdatedBy  string              `json:"updatedBy"`
	Count      int                 `json:"count"`
}

type eventResp struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Type          calendar.EventType `json:"type"`
	Disabled      bool               `json:"disabled"`
	AllDay        bool               `json:"allDay"`
	StartDateTime *string            `json:"startDateTime"`
	EndDateTime   *string            `json:"endDateTime"`
	Location      string             `json:"location"`
	CreatedAt     string             `json:"createdAt"`
	CreatedBy     string             `json:"createdBy"`
	UpdatedAt     string             `json:"updatedAt"`
	UpdatedBy     string             `json:"updatedBy"`
}

func toCalendarResp(c calendar.Calendar) calendarResp {
	out := calendarResp{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Events:      make([]eventResp, 0, len(c.Events)),
	}
	// absent enums render as the value the store would write
	if md := c.Metadata; md != nil {
		out.Metadata = calendarMetadataResp{
			Status:     calendar.ParseStatus(string(md.Status)),
			Visibility: calendar.ParseVisibility(string(md.Visibility)),
			CreatedAt:  md.CreatedAt,
			CreatedBy:  md.CreatedBy,
			UpdatedAt:  md.UpdatedAt,
			UpdatedBy:  md.UpdatedBy,
			Count:      md.Count,
		}
	}
	for _, e := range c.Events {
		out.Events = append(out.Events, eventResp{
			ID:            e.ID,
			Name:          e.Name,
			Description:   e.Description,
			Type:          e.Type,
			Disabled:      e.Disabled,
			AllDay:        e.AllDay,
			StartDateTime: formatOptional(e.StartDateTime),
			EndDateTime:   formatOptional(e.EndDateTime),
			Location:      e.Location,
			CreatedAt:     e.CreatedAt,
			CreatedBy:     e.CreatedBy,
			UpdatedAt:     e.UpdatedAt,
			UpdatedBy:     e.UpdatedBy,
		})
	}
	return out
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := calendar.FormatTimestamp(t)
	return &s
}
