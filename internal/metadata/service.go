package metadata

import (
	"context"
	"errors"
	"fmt"

	"calendars/internal/logger"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("metadata not found")
	ErrAlreadyExists = errors.New("metadata already exists")
)

type Repository interface {
	Insert(ctx context.Context, m Metadata) (Metadata, error)
	FindByID(ctx context.Context, id string) (Metadata, bool, error)
	FindAll(ctx context.Context) ([]Metadata, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}

type Service struct {
	Repo  Repository
	NewID func() string
	Log   *logger.Logger
}

func NewService(repo Repository, baseLog *logger.Logger) *Service {
	return &Service{
		Repo:  repo,
		NewID: uuid.NewString,
		Log:   baseLog.With("service", "MetadataService"),
	}
}

// Create rejects a caller-supplied id that is already held, generates one
// when absent, and defaults Info.State to unknown.
func (s *Service) Create(ctx context.Context, m Metadata) (Metadata, error) {
	if m.ID != "" {
		_, found, err := s.Repo.FindByID(ctx, m.ID)
		if err != nil {
			return Metadata{}, err
		}
		if found {
			s.Log.Warn("Metadata already exists", "metadata_id", m.ID)
			return Metadata{}, fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
		}
	} else {
		m.ID = s.NewID()
	}

	if m.Info == nil {
		m.Info = &Info{State: StateUnknown}
	} else if m.Info.State == "" {
		info := *m.Info
		info.State = StateUnknown
		m.Info = &info
	}

	out, err := s.Repo.Insert(ctx, m)
	if err != nil {
		return Metadata{}, err
	}
	s.Log.Info("Metadata created", "metadata_id", out.ID, "entries", len(out.Entries))
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Metadata, error) {
	m, ok, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return Metadata{}, err
	}
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context) ([]Metadata, error) {
	return s.Repo.FindAll(ctx)
}

// Delete is idempotent.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		s.Log.Warn("No metadata found to delete", "metadata_id", id)
	}
	return nil
}
