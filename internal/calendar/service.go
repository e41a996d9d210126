package calendar

import (
	"context"
	"fmt"

	"calendars/internal/logger"
	"calendars/internal/paging"
)

// Repository is the aggregate store contract the service depends on.
type Repository interface {
	Save(ctx context.Context, cal *Calendar) (*Calendar, error)
	Create(ctx context.Context, cal *Calendar) (*Calendar, error)
	FindByID(ctx context.Context, id string) (*Calendar, bool, error)
	FindAll(ctx context.Context) ([]Calendar, error)
	FindPage(ctx context.Context, page, size int) ([]Calendar, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type Service struct {
	Repo   Repository
	Policy Policy
	Log    *logger.Logger
}

func NewService(repo Repository, baseLog *logger.Logger) *Service {
	return &Service{
		Repo:   repo,
		Policy: NewPolicy(),
		Log:    baseLog.With("service", "CalendarService"),
	}
}

// Create moves a calendar from absent to present. It fails with
// ErrAlreadyExists when the id is taken, and with ErrConflict when a
// concurrent creation wins between the check and the write.
func (s *Service) Create(ctx context.Context, cal *Calendar) (*Calendar, error) {
	s.Log.Info("Creating calendar", "calendar_id", cal.ID, "name", cal.Name)

	if err := s.Policy.Prepare(ctx, cal, s.Repo.ExistsByID); err != nil {
		s.Log.Warn("Calendar not created", "calendar_id", cal.ID, "error", err)
		return nil, err
	}
	out, err := s.Repo.Create(ctx, cal)
	if err != nil {
		return nil, err
	}
	s.Log.Info("Calendar created", "calendar_id", out.ID, "event_count", len(out.Events))
	return out, nil
}

// Update fully replaces a present calendar, events included.
func (s *Service) Update(ctx context.Context, id string, cal *Calendar) (*Calendar, error) {
	found, err := s.Repo.ExistsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	cal.ID = id
	s.Policy.ApplyDefaults(cal)
	return s.Repo.Save(ctx, cal)
}

func (s *Service) Get(ctx context.Context, id string) (*Calendar, error) {
	cal, ok, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cal, nil
}

func (s *Service) List(ctx context.Context) ([]Calendar, error) {
	out, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.Log.Info("Found calendars", "count", len(out))
	return out, nil
}

// ListPage expects page >= 0 and size >= 1; callers clamp.
func (s *Service) ListPage(ctx context.Context, page, size int) (paging.Page[Calendar], error) {
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return paging.Page[Calendar]{}, err
	}
	items, err := s.Repo.FindPage(ctx, page, size)
	if err != nil {
		return paging.Page[Calendar]{}, err
	}
	p := paging.New(items, page, size, total)
	s.Log.Info("Found calendar page", "page", page, "size", size,
		"items", len(items), "total_pages", p.TotalPages, "total", total)
	return p, nil
}

// Delete is idempotent.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.DeleteByID(ctx, id)
}

func (s *Service) DeleteAll(ctx context.Context) error {
	s.Log.Info("Deleting all calendars")
	return s.Repo.DeleteAll(ctx)
}
