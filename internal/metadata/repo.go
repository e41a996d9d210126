package metadata

import (
	"context"
	"fmt"
	"sync"

	"calendars/internal/logger"
)

// MemoryRepo keeps documents in insertion order. Lookups are linear scans.
type MemoryRepo struct {
	mu    sync.RWMutex
	items []Metadata
	log   *logger.Logger
}

func NewMemoryRepo(baseLog *logger.Logger) *MemoryRepo {
	return &MemoryRepo{log: baseLog.With("repo", "MetadataMemoryRepo")}
}

// Insert appends m unless its id is already held, checked under the same lock.
func (r *MemoryRepo) Insert(_ context.Context, m Metadata) (Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(m.ID) >= 0 {
		return Metadata{}, fmt.Errorf("%w: %s", ErrAlreadyExists, m.ID)
	}
	r.items = append(r.items, m.clone())
	r.log.Debug("Metadata stored", "metadata_id", m.ID, "total", len(r.items))
	return m.clone(), nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id string) (Metadata, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return Metadata{}, false, nil
	}
	return r.items[i].clone(), true, nil
}

func (r *MemoryRepo) FindAll(_ context.Context) ([]Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m.clone())
	}
	return out, nil
}

// DeleteByID reports whether anything was removed.
func (r *MemoryRepo) DeleteByID(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	removed := false
	for _, m := range r.items {
		if m.ID == id {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	// clear the tail so dropped documents can be collected
	for i := len(kept); i < len(r.items); i++ {
		r.items[i] = Metadata{}
	}
	r.items = kept
	return removed, nil
}

func (r *MemoryRepo) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}
