package calendar_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"calendars/internal/calendar"
	"calendars/internal/logger"
)

func newService(t *testing.T) (*calendar.Service, *calendar.Store) {
	t.Helper()
	store := newStore(t)
	return calendar.NewService(store, logger.NewNop()), store
}

func TestServiceCreateRejectsExistingID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	first := fullCalendar("X")
	if _, err := svc.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := &calendar.Calendar{ID: "X", Name: "Intruder"}
	_, err := svc.Create(ctx, second)
	if !errors.Is(err, calendar.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}

	got, err := svc.Get(ctx, "X")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Work" || len(got.Events) != 2 {
		t.Fatalf("existing calendar was modified: %+v", got)
	}
}

func TestServiceCreateGeneratesIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	out, err := svc.Create(ctx, &calendar.Calendar{
		Name:   "Personal",
		Events: []calendar.Event{{Name: "Dentist", StartDateTime: at("11/20/2025 14:00:00")}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(out.ID) != 36 {
		t.Fatalf("generated id = %q", out.ID)
	}

	got, err := svc.Get(ctx, out.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Metadata.Status != calendar.StatusUnknown {
		t.Fatalf("status = %q", got.Metadata.Status)
	}
	if len(got.Events) != 1 || got.Events[0].ID == "" || got.Events[0].Type != calendar.EventTypeOther {
		t.Fatalf("events = %+v", got.Events)
	}
}

// racingRepo hides existing rows from the pre-check, as a concurrent
// creator would between the check and the insert.
type racingRepo struct {
	*calendar.Store
}

func (racingRepo) ExistsByID(context.Context, string) (bool, error) { return false, nil }

func TestServiceCreateLosingRaceConflicts(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	if _, err := store.Save(ctx, fullCalendar("X")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	svc := calendar.NewService(racingRepo{store}, logger.NewNop())
	_, err := svc.Create(ctx, &calendar.Calendar{ID: "X", Name: "Late"})
	if !errors.Is(err, calendar.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if errors.Is(err, calendar.ErrAlreadyExists) {
		t.Fatalf("a lost race must not look like a pre-check rejection")
	}
}

func TestServiceGetMissing(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, calendar.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.Update(ctx, "missing", &calendar.Calendar{Name: "x"})
	if !errors.Is(err, calendar.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, err := svc.Create(ctx, fullCalendar("c1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	repl := &calendar.Calendar{
		ID:     "ignored",
		Name:   "Replaced",
		Events: []calendar.Event{{Name: "New one"}},
	}
	out, err := svc.Update(ctx, "c1", repl)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.ID != "c1" {
		t.Fatalf("path id not applied: %q", out.ID)
	}

	got, _ := svc.Get(ctx, "c1")
	if got.Name != "Replaced" || len(got.Events) != 1 || got.Events[0].Name != "New one" {
		t.Fatalf("calendar = %+v", got)
	}
	if got.Metadata.CreatedBy != "John Doe" {
		t.Fatalf("creation audit lost on update: %+v", *got.Metadata)
	}
	if _, err := svc.Get(ctx, "ignored"); !errors.Is(err, calendar.ErrNotFound) {
		t.Fatalf("body id created a second calendar: %v", err)
	}
}

func TestServiceListPage(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(ctx, &calendar.Calendar{Name: fmt.Sprintf("C%d", i)}); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	p, err := svc.ListPage(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(p.Items) != 10 || p.TotalPages != 3 || p.TotalElements != 25 || !p.First || p.Last {
		t.Fatalf("page 0 = items:%d totalPages:%d total:%d first:%v last:%v",
			len(p.Items), p.TotalPages, p.TotalElements, p.First, p.Last)
	}

	p, err = svc.ListPage(ctx, 2, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if len(p.Items) != 5 || !p.Last || p.First {
		t.Fatalf("page 2 = items:%d first:%v last:%v", len(p.Items), p.First, p.Last)
	}

	all, err := svc.List(ctx)
	if err != nil || len(all) != 25 {
		t.Fatalf("List = %d, %v", len(all), err)
	}
}

func TestServiceListPageEmpty(t *testing.T) {
	svc, _ := newService(t)
	p, err := svc.ListPage(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if p.Items == nil || len(p.Items) != 0 || p.TotalPages != 0 || !p.First || !p.Last {
		t.Fatalf("empty page = %+v", p)
	}
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	if _, err := svc.Create(ctx, fullCalendar("c1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.Delete(ctx, "c1"); err != nil {
			t.Fatalf("Delete #%d: %v", i, err)
		}
	}
	if _, err := svc.Get(ctx, "c1"); !errors.Is(err, calendar.ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}

	if _, err := svc.Create(ctx, fullCalendar("c2")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll: %v", err)
	}
	all, _ := svc.List(ctx)
	if len(all) != 0 {
		t.Fatalf("List after DeleteAll = %d", len(all))
	}
}
