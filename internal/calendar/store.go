package calendar

import (
	"context"
	"errors"
	"fmt"
	"math"

	"calendars/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const eventInsertBatch = 100

// Columns overwritten when an existing calendar row is saved again. The
// creation audit pair and created_timestamp keep their first-insert values.
var upsertColumns = []string{
	"name", "description", "status", "visibility",
	"updated_at", "updated_by", "count",
}

// Store persists calendar aggregates across the calendars and events
// relations. Writes that span both relations run in one transaction;
// reads do not, so a concurrent save can be observed half applied
// (metadata from one version, events from another).
type Store struct {
	db     *gorm.DB
	log    *logger.Logger
	tracer trace.Tracer
}

func NewStore(db *gorm.DB, baseLog *logger.Logger) *Store {
	return &Store{
		db:     db,
		log:    baseLog.With("repo", "CalendarStore"),
		tracer: otel.Tracer("calendars/internal/calendar"),
	}
}

// Save upserts the calendar row and replaces its whole event set with
// cal.Events. Last write wins; nothing is merged. cal is returned as given.
func (s *Store) Save(ctx context.Context, cal *Calendar) (*Calendar, error) {
	ctx, span := s.start(ctx, "calendar.store.save", attribute.String("calendar.id", cal.ID))
	defer span.End()

	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}
	if err := s.write(ctx, cal, upsert); err != nil {
		return nil, fail(span, err)
	}
	return cal, nil
}

// Create is Save with a plain insert of the calendar row: an id that is
// already present fails with ErrConflict instead of being overwritten.
func (s *Store) Create(ctx context.Context, cal *Calendar) (*Calendar, error) {
	ctx, span := s.start(ctx, "calendar.store.create", attribute.String("calendar.id", cal.ID))
	defer span.End()

	if err := s.write(ctx, cal, nil); err != nil {
		return nil, fail(span, err)
	}
	return cal, nil
}

func (s *Store) write(ctx context.Context, cal *Calendar, onConflict clause.Expression) error {
	log := s.log.With("calendar_id", cal.ID)
	log.Debug("Saving calendar", "name", cal.Name)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := calendarRowOf(cal)
		q := tx
		if onConflict != nil {
			q = tx.Clauses(onConflict)
		}
		res := q.Create(&row)
		if res.Error != nil {
			return res.Error
		}
		log.Debug("Calendar row written", "rows", res.RowsAffected)

		// children go first on delete, and only after the parent row exists on insert
		del := tx.Where("calendar_id = ?", cal.ID).Delete(&EventRow{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			log.Debug("Deleted existing events", "count", del.RowsAffected)
		}

		if len(cal.Events) == 0 {
			return nil
		}
		rows := make([]EventRow, 0, len(cal.Events))
		for i := range cal.Events {
			rows = append(rows, eventRowOf(cal.ID, &cal.Events[i]))
		}
		if err := tx.CreateInBatches(&rows, eventInsertBatch).Error; err != nil {
			return err
		}
		log.Debug("Inserted events", "count", len(rows))
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: calendar %s: %v", ErrConflict, cal.ID, err)
		}
		return fmt.Errorf("save calendar %s: %w", cal.ID, err)
	}

	log.Info("Calendar saved", "name", cal.Name, "event_count", len(cal.Events))
	return nil
}

// FindByID reports ok=false when no calendar has the id.
func (s *Store) FindByID(ctx context.Context, id string) (*Calendar, bool, error) {
	ctx, span := s.start(ctx, "calendar.store.find_by_id", attribute.String("calendar.id", id))
	defer span.End()

	var row CalendarRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("Calendar not found", "calendar_id", id)
			return nil, false, nil
		}
		return nil, false, fail(span, fmt.Errorf("find calendar %s: %w", id, err))
	}

	cal := AssembleCalendar(row)
	if err := s.attachEvents(ctx, &cal); err != nil {
		return nil, false, fail(span, err)
	}
	s.log.Debug("Calendar found", "calendar_id", id, "event_count", len(cal.Events))
	return &cal, true, nil
}

// FindAll returns every calendar, newest first, each with its events.
func (s *Store) FindAll(ctx context.Context) ([]Calendar, error) {
	ctx, span := s.start(ctx, "calendar.store.find_all")
	defer span.End()

	out, err := s.list(ctx, s.db.WithContext(ctx))
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

// FindPage returns the page-th window of size calendars in FindAll order.
// Pages partition the listing only while no writes land between requests.
func (s *Store) FindPage(ctx context.Context, page, size int) ([]Calendar, error) {
	ctx, span := s.start(ctx, "calendar.store.find_page",
		attribute.Int("page", page), attribute.Int("size", size))
	defer span.End()

	// page*size would overflow; no table is that long
	if size <= 0 || page > math.MaxInt/size {
		return []Calendar{}, nil
	}

	out, err := s.list(ctx, s.db.WithContext(ctx).Offset(page*size).Limit(size))
	if err != nil {
		return nil, fail(span, err)
	}
	return out, nil
}

func (s *Store) list(ctx context.Context, q *gorm.DB) ([]Calendar, error) {
	var rows []CalendarRow
	if err := q.Order("created_timestamp desc").Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list calendars: %w", err)
	}

	// one extra round trip per calendar
	out := make([]Calendar, 0, len(rows))
	for _, row := range rows {
		cal := AssembleCalendar(row)
		if err := s.attachEvents(ctx, &cal); err != nil {
			return nil, err
		}
		out = append(out, cal)
	}
	s.log.Debug("Loaded calendars with events", "count", len(out))
	return out, nil
}

func (s *Store) attachEvents(ctx context.Context, cal *Calendar) error {
	var rows []EventRow
	if err := s.db.WithContext(ctx).
		Where("calendar_id = ?", cal.ID).
		Order("start_datetime asc nulls last").
		Order("id asc").
		Find(&rows).Error; err != nil {
		return fmt.Errorf("load events for calendar %s: %w", cal.ID, err)
	}
	cal.Events = make([]Event, 0, len(rows))
	for _, r := range rows {
		cal.Events = append(cal.Events, AssembleEvent(r))
	}
	return nil
}

func (s *Store) ExistsByID(ctx context.Context, id string) (bool, error) {
	ctx, span := s.start(ctx, "calendar.store.exists_by_id", attribute.String("calendar.id", id))
	defer span.End()

	var n int64
	if err := s.db.WithContext(ctx).Model(&CalendarRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fail(span, fmt.Errorf("exists calendar %s: %w", id, err))
	}
	return n > 0, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx, span := s.start(ctx, "calendar.store.count")
	defer span.End()

	var n int64
	if err := s.db.WithContext(ctx).Model(&CalendarRow{}).Count(&n).Error; err != nil {
		return 0, fail(span, fmt.Errorf("count calendars: %w", err))
	}
	return n, nil
}

// DeleteByID removes the calendar and its events. An absent id is a no-op.
func (s *Store) DeleteByID(ctx context.Context, id string) error {
	ctx, span := s.start(ctx, "calendar.store.delete_by_id", attribute.String("calendar.id", id))
	defer span.End()

	var events, calendars int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("calendar_id = ?", id).Delete(&EventRow{})
		if res.Error != nil {
			return res.Error
		}
		events = res.RowsAffected

		res = tx.Where("id = ?", id).Delete(&CalendarRow{})
		if res.Error != nil {
			return res.Error
		}
		calendars = res.RowsAffected
		return nil
	})
	if err != nil {
		return fail(span, fmt.Errorf("delete calendar %s: %w", id, err))
	}

	if calendars > 0 {
		s.log.Info("Calendar deleted", "calendar_id", id, "event_count", events)
	} else {
		s.log.Warn("No calendar found to delete", "calendar_id", id)
	}
	return nil
}

// DeleteAll empties both relations.
func (s *Store) DeleteAll(ctx context.Context) error {
	ctx, span := s.start(ctx, "calendar.store.delete_all")
	defer span.End()

	var events, calendars int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		res := all.Delete(&EventRow{})
		if res.Error != nil {
			return res.Error
		}
		events = res.RowsAffected

		res = all.Delete(&CalendarRow{})
		if res.Error != nil {
			return res.Error
		}
		calendars = res.RowsAffected
		return nil
	})
	if err != nil {
		return fail(span, fmt.Errorf("delete all calendars: %w", err))
	}
	s.log.Info("All calendars deleted", "calendar_count", calendars, "event_count", events)
	return nil
}

func (s *Store) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
