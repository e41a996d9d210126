package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"calendars/internal/calendar"
	"calendars/internal/logger"

	"gopkg.in/yaml.v3"
)

//go:embed sample.yaml
var sampleFS embed.FS

type yamlFixture struct {
	Calendars []yamlCalendar `yaml:"calendars"`
}

type yamlCalendar struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Metadata    *yamlMetadata `yaml:"metadata"`
	Events      []yamlEvent   `yaml:"events"`
}

type yamlMetadata struct {
	Status     string `yaml:"status"`
	Visibility string `yaml:"visibility"`
	CreatedAt  string `yaml:"created_at"`
	CreatedBy  string `yaml:"created_by"`
	UpdatedAt  string `yaml:"updated_at"`
	UpdatedBy  string `yaml:"updated_by"`
	Count      int    `yaml:"count"`
}

type yamlEvent struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	Disabled    bool   `yaml:"disabled"`
	AllDay      bool   `yaml:"all_day"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	Location    string `yaml:"location"`
	CreatedAt   string `yaml:"created_at"`
	CreatedBy   string `yaml:"created_by"`
	UpdatedAt   string `yaml:"updated_at"`
	UpdatedBy   string `yaml:"updated_by"`
}

// Sample returns the fixture bundled with the binary.
func Sample() ([]calendar.Calendar, error) {
	f, err := sampleFS.Open("sample.yaml")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func LoadFile(path string) ([]calendar.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a fixture document. Enum values are checked strictly; a typo
// in a fixture is an error rather than a silent default.
func Decode(r io.Reader) ([]calendar.Calendar, error) {
	var doc yamlFixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	out := make([]calendar.Calendar, 0, len(doc.Calendars))
	for i, yc := range doc.Calendars {
		cal, err := yc.toCalendar()
		if err != nil {
			return nil, fmt.Errorf("calendars[%d]: %w", i, err)
		}
		out = append(out, cal)
	}
	return out, nil
}

func (yc yamlCalendar) toCalendar() (calendar.Calendar, error) {
	if strings.TrimSpace(yc.Name) == "" {
		return calendar.Calendar{}, errors.New("name: required")
	}
	cal := calendar.Calendar{
		ID:          strings.TrimSpace(yc.ID),
		Name:        yc.Name,
		Description: yc.Description,
		Events:      make([]calendar.Event, 0, len(yc.Events)),
	}

	if md := yc.Metadata; md != nil {
		cal.Metadata = &calendar.Metadata{
			CreatedAt: md.CreatedAt,
			CreatedBy: md.CreatedBy,
			UpdatedAt: md.UpdatedAt,
			UpdatedBy: md.UpdatedBy,
			Count:     md.Count,
		}
		if md.Status != "" {
			s, ok := calendar.LookupStatus(md.Status)
			if !ok {
				return calendar.Calendar{}, fmt.Errorf("metadata.status: unknown value %q", md.Status)
			}
			cal.Metadata.Status = s
		}
		if md.Visibility != "" {
			v, ok := calendar.LookupVisibility(md.Visibility)
			if !ok {
				return calendar.Calendar{}, fmt.Errorf("metadata.visibility: unknown value %q", md.Visibility)
			}
			cal.Metadata.Visibility = v
		}
	}

	for j, ye := range yc.Events {
		ev, err := ye.toEvent()
		if err != nil {
			return calendar.Calendar{}, fmt.Errorf("events[%d].%w", j, err)
		}
		cal.Events = append(cal.Events, ev)
	}
	return cal, nil
}

func (ye yamlEvent) toEvent() (calendar.Event, error) {
	ev := calendar.Event{
		ID:          strings.TrimSpace(ye.ID),
		Name:        ye.Name,
		Description: ye.Description,
		Disabled:    ye.Disabled,
		AllDay:      ye.AllDay,
		Location:    ye.Location,
		CreatedAt:   ye.CreatedAt,
		CreatedBy:   ye.CreatedBy,
		UpdatedAt:   ye.UpdatedAt,
		UpdatedBy:   ye.UpdatedBy,
	}
	if ye.Type != "" {
		t, ok := calendar.LookupEventType(ye.Type)
		if !ok {
			return calendar.Event{}, fmt.Errorf("type: unknown value %q", ye.Type)
		}
		ev.Type = t
	}
	var err error
	if ev.StartDateTime, err = calendar.ParseTimestamp(ye.Start); err != nil {
		return calendar.Event{}, fmt.Errorf("start: %w", err)
	}
	if ev.EndDateTime, err = calendar.ParseTimestamp(ye.End); err != nil {
		return calendar.Event{}, fmt.Errorf("end: %w", err)
	}
	return ev, nil
}

// Creator is the part of calendar.Service the loader needs.
type Creator interface {
	Create(ctx context.Context, cal *calendar.Calendar) (*calendar.Calendar, error)
}

type Result struct {
	Created int
	Skipped int
}

// Apply creates each calendar in order. Calendars whose id is already taken
// are skipped with a warning; any other error stops the run.
func Apply(ctx context.Context, svc Creator, cals []calendar.Calendar, log *logger.Logger) (Result, error) {
	var res Result
	for i := range cals {
		cal := cals[i]
		out, err := svc.Create(ctx, &cal)
		switch {
		case errors.Is(err, calendar.ErrAlreadyExists), errors.Is(err, calendar.ErrConflict):
			log.Warn("Calendar already present, skipping", "calendar_id", cal.ID, "name", cal.Name)
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("seed calendar %q: %w", cal.Name, err)
		default:
			log.Info("Seeded calendar", "calendar_id", out.ID, "name", out.Name, "event_count", len(out.Events))
			res.Created++
		}
	}
	return res, nil
}
