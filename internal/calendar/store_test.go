package calendar_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"calendars/internal/calendar"
	"calendars/internal/db/dbtest"
	"calendars/internal/logger"
)

func newStore(t *testing.T) *calendar.Store {
	t.Helper()
	return calendar.NewStore(dbtest.Open(t), logger.NewNop())
}

func at(s string) *time.Time {
	t, err := time.Parse(calendar.TimestampLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fullCalendar(id string) *calendar.Calendar {
	return &calendar.Calendar{
		ID:          id,
		Name:        "Work",
		Description: "Team calendar",
		Metadata: &calendar.Metadata{
			Status:     calendar.StatusActive,
			Visibility: calendar.VisibilityShared,
			CreatedAt:  "11/13/2025 12:00:00",
			CreatedBy:  "John Doe",
			UpdatedAt:  "11/13/2025 12:30:00",
			UpdatedBy:  "Jane Roe",
			Count:      2,
		},
		Events: []calendar.Event{
			{
				ID:            id + "-e2",
				Name:          "Review",
				Description:   "Sprint review",
				Type:          calendar.EventTypeAppointment,
				StartDateTime: at("11/14/2025 10:00:00"),
				EndDateTime:   at("11/14/2025 11:00:00"),
				Location:      "Room 2",
				CreatedBy:     "John Doe",
			},
			{
				ID:            id + "-e1",
				Name:          "Standup",
				Type:          calendar.EventTypeMeeting,
				AllDay:        false,
				Disabled:      true,
				StartDateTime: at("11/14/2025 09:00:00"),
				EndDateTime:   at("11/14/2025 09:15:00"),
			},
		},
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func assertEvent(t *testing.T, got, want calendar.Event) {
	t.Helper()
	if got.ID != want.ID || got.Name != want.Name || got.Description != want.Description ||
		got.Type != want.Type || got.Disabled != want.Disabled || got.AllDay != want.AllDay ||
		got.Location != want.Location || got.CreatedAt != want.CreatedAt || got.CreatedBy != want.CreatedBy ||
		got.UpdatedAt != want.UpdatedAt || got.UpdatedBy != want.UpdatedBy {
		t.Fatalf("event mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !sameTime(got.StartDateTime, want.StartDateTime) || !sameTime(got.EndDateTime, want.EndDateTime) {
		t.Fatalf("event %s times: got %v..%v want %v..%v", want.ID,
			got.StartDateTime, got.EndDateTime, want.StartDateTime, want.EndDateTime)
	}
}

func TestStoreEventsComeBackInStartOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	cal := &calendar.Calendar{
		ID:   "A",
		Name: "Work",
		Events: []calendar.Event{
			{ID: "e2", Name: "Later", StartDateTime: at("11/14/2025 10:00:00")},
			{ID: "e1", Name: "Earlier", StartDateTime: at("11/14/2025 09:00:00")},
		},
	}
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.FindByID(ctx, "A")
	if err != nil || !ok {
		t.Fatalf("FindByID = %v, %v", ok, err)
	}
	if len(got.Events) != 2 || got.Events[0].ID != "e1" || got.Events[1].ID != "e2" {
		t.Fatalf("events out of order: %+v", got.Events)
	}
}

func TestStoreEventsWithoutStartSortLast(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	cal := &calendar.Calendar{
		ID:   "A",
		Name: "Work",
		Events: []calendar.Event{
			{ID: "e-none", Name: "Unscheduled"},
			{ID: "e2", Name: "Later", StartDateTime: at("11/14/2025 10:00:00")},
			{ID: "e1", Name: "Earlier", StartDateTime: at("11/14/2025 09:00:00")},
		},
	}
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.FindByID(ctx, "A")
	if err != nil || !ok {
		t.Fatalf("FindByID = %v, %v", ok, err)
	}
	if len(got.Events) != 3 {
		t.Fatalf("events = %+v", got.Events)
	}
	if got.Events[0].ID != "e1" || got.Events[1].ID != "e2" || got.Events[2].ID != "e-none" {
		t.Fatalf("order = %s, %s, %s", got.Events[0].ID, got.Events[1].ID, got.Events[2].ID)
	}
	if got.Events[2].StartDateTime != nil {
		t.Fatalf("start = %v, want nil", got.Events[2].StartDateTime)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	want := fullCalendar("c1")

	if _, err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.FindByID(ctx, "c1")
	if err != nil || !ok {
		t.Fatalf("FindByID = %v, %v", ok, err)
	}
	if got.Name != want.Name || got.Description != want.Description {
		t.Fatalf("calendar = %+v", got)
	}
	if *got.Metadata != *want.Metadata {
		t.Fatalf("metadata:\n got %+v\nwant %+v", *got.Metadata, *want.Metadata)
	}
	if len(got.Events) != 2 {
		t.Fatalf("events = %d", len(got.Events))
	}
	// stored order is by start time, so the 09:00 event comes first
	assertEvent(t, got.Events[0], want.Events[1])
	assertEvent(t, got.Events[1], want.Events[0])
}

func TestStoreFindMissing(t *testing.T) {
	s := newStore(t)
	got, ok, err := s.FindByID(context.Background(), "nope")
	if err != nil || ok || got != nil {
		t.Fatalf("FindByID = %v, %v, %v", got, ok, err)
	}
}

func TestStoreSaveReplacesEvents(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	cal := fullCalendar("c1")
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cal.Name = "Renamed"
	cal.Events = []calendar.Event{{ID: "only", Name: "Only", StartDateTime: at("12/01/2025 08:00:00")}}
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, _, err := s.FindByID(ctx, "c1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("Name = %q", got.Name)
	}
	if len(got.Events) != 1 || got.Events[0].ID != "only" {
		t.Fatalf("events = %+v", got.Events)
	}

	cal.Events = nil
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save empty: %v", err)
	}
	got, _, _ = s.FindByID(ctx, "c1")
	if got.Events == nil || len(got.Events) != 0 {
		t.Fatalf("events after clearing = %v", got.Events)
	}
}

func TestStoreSaveKeepsCreationAudit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	cal := fullCalendar("c1")
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cal.Metadata.CreatedAt = "01/01/2030 00:00:00"
	cal.Metadata.CreatedBy = "Someone Else"
	cal.Metadata.UpdatedBy = "Editor"
	cal.Metadata.Count = 7
	if _, err := s.Save(ctx, cal); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, _, _ := s.FindByID(ctx, "c1")
	md := got.Metadata
	if md.CreatedAt != "11/13/2025 12:00:00" || md.CreatedBy != "John Doe" {
		t.Fatalf("creation audit overwritten: %+v", *md)
	}
	if md.UpdatedBy != "Editor" || md.Count != 7 {
		t.Fatalf("update fields not applied: %+v", *md)
	}
}

func TestStoreCreateDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if _, err := s.Create(ctx, fullCalendar("c1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := &calendar.Calendar{ID: "c1", Name: "Other"}
	_, err := s.Create(ctx, dup)
	if !errors.Is(err, calendar.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	got, _, _ := s.FindByID(ctx, "c1")
	if got.Name != "Work" || len(got.Events) != 2 {
		t.Fatalf("first calendar changed: %+v", got)
	}
}

func TestStoreEventIDCollisionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	if _, err := s.Save(ctx, fullCalendar("c1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	other := &calendar.Calendar{
		ID:     "c2",
		Name:   "Other",
		Events: []calendar.Event{{ID: "c1-e1", Name: "Stolen"}},
	}
	_, err := s.Save(ctx, other)
	if !errors.Is(err, calendar.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}

	exists, err := s.ExistsByID(ctx, "c2")
	if err != nil {
		t.Fatalf("ExistsByID: %v", err)
	}
	if exists {
		t.Fatalf("failed save left calendar c2 behind")
	}
	got, _, _ := s.FindByID(ctx, "c1")
	if len(got.Events) != 2 {
		t.Fatalf("c1 events = %d", len(got.Events))
	}
}

func TestStoreDeleteCascadesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	s := calendar.NewStore(gdb, logger.NewNop())

	if _, err := s.Save(ctx, fullCalendar("c1")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.DeleteByID(ctx, "c1"); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if _, ok, _ := s.FindByID(ctx, "c1"); ok {
		t.Fatalf("calendar still present")
	}
	var orphans int64
	if err := gdb.Model(&calendar.EventRow{}).Where("calendar_id = ?", "c1").Count(&orphans).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("orphaned events = %d", orphans)
	}

	if err := s.DeleteByID(ctx, "c1"); err != nil {
		t.Fatalf("second DeleteByID: %v", err)
	}
	if err := s.DeleteByID(ctx, "never-existed"); err != nil {
		t.Fatalf("DeleteByID absent: %v", err)
	}
}

func TestStoreDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if _, err := s.Save(ctx, fullCalendar(id)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	n, err := s.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("Count = %d, %v", n, err)
	}
	all, err := s.FindAll(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("FindAll = %v, %v", all, err)
	}
	if err := s.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll on empty store: %v", err)
	}
}

func TestStorePaging(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for i := 0; i < 25; i++ {
		cal := &calendar.Calendar{ID: fmt.Sprintf("cal-%02d", i), Name: fmt.Sprintf("Calendar %d", i)}
		if _, err := s.Save(ctx, cal); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil || n != 25 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	seen := map[string]int{}
	sizes := []int{}
	for page := 0; page < 3; page++ {
		items, err := s.FindPage(ctx, page, 10)
		if err != nil {
			t.Fatalf("FindPage(%d): %v", page, err)
		}
		sizes = append(sizes, len(items))
		for _, c := range items {
			seen[c.ID]++
		}
	}
	if sizes[0] != 10 || sizes[1] != 10 || sizes[2] != 5 {
		t.Fatalf("page sizes = %v", sizes)
	}
	if len(seen) != 25 {
		t.Fatalf("pages covered %d distinct calendars, want 25", len(seen))
	}
	for id, c := range seen {
		if c != 1 {
			t.Fatalf("calendar %s appeared on %d pages", id, c)
		}
	}

	beyond, err := s.FindPage(ctx, 5, 10)
	if err != nil || len(beyond) != 0 {
		t.Fatalf("FindPage beyond end = %v, %v", beyond, err)
	}
}

func TestStorePageOffsetOverflow(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for i := 0; i < 3; i++ {
		cal := &calendar.Calendar{ID: fmt.Sprintf("cal-%d", i), Name: "C"}
		if _, err := s.Save(ctx, cal); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	for _, tc := range []struct{ page, size int }{
		{math.MaxInt/10 + 1, 10},
		{math.MaxInt, 1 << 20},
		{math.MaxInt, 2},
	} {
		items, err := s.FindPage(ctx, tc.page, tc.size)
		if err != nil {
			t.Fatalf("FindPage(%d, %d): %v", tc.page, tc.size, err)
		}
		if len(items) != 0 {
			t.Fatalf("FindPage(%d, %d) returned %d calendars, want 0", tc.page, tc.size, len(items))
		}
	}

	// the largest page whose offset still fits is a plain overshoot
	items, err := s.FindPage(ctx, math.MaxInt/10, 10)
	if err != nil || len(items) != 0 {
		t.Fatalf("FindPage at the bound = %d, %v", len(items), err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	s := calendar.NewStore(gdb, logger.NewNop())

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		name := id
		row := calendar.CalendarRow{ID: id, Name: &name, CreatedTimestamp: base.Add(time.Duration(i) * time.Hour)}
		if err := gdb.Create(&row).Error; err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 3 || all[0].ID != "new" || all[1].ID != "mid" || all[2].ID != "old" {
		t.Fatalf("order = %v", ids(all))
	}
}

func TestStoreDecodesLegacyValues(t *testing.T) {
	ctx := context.Background()
	gdb := dbtest.Open(t)
	s := calendar.NewStore(gdb, logger.NewNop())

	status, typ := "ARCHIVED", "legacy_unused"
	if err := gdb.Create(&calendar.CalendarRow{ID: "legacy", Status: &status}).Error; err != nil {
		t.Fatalf("insert calendar: %v", err)
	}
	no := false
	if err := gdb.Create(&calendar.EventRow{
		ID: "ev", CalendarID: "legacy", Type: &typ, Disabled: &no, AllDay: &no,
	}).Error; err != nil {
		t.Fatalf("insert event: %v", err)
	}

	got, ok, err := s.FindByID(ctx, "legacy")
	if err != nil || !ok {
		t.Fatalf("FindByID = %v, %v", ok, err)
	}
	if got.Metadata.Status != calendar.StatusUnknown || got.Metadata.Visibility != calendar.VisibilityPersonal {
		t.Fatalf("metadata = %+v", *got.Metadata)
	}
	if got.Name != "" || len(got.Events) != 1 {
		t.Fatalf("calendar = %+v", got)
	}
	e := got.Events[0]
	if e.Type != calendar.EventTypeOther || e.StartDateTime != nil || e.Name != "" {
		t.Fatalf("event = %+v", e)
	}
}

func ids(cals []calendar.Calendar) []string {
	out := make([]string, 0, len(cals))
	for _, c := range cals {
		out = append(out, c.ID)
	}
	return out
}
