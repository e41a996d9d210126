package calendar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Policy assigns identities and fills defaults before a calendar reaches the
// store. The store itself applies no business defaults.
type Policy struct {
	NewID func() string
}

func NewPolicy() Policy {
	return Policy{NewID: func() string { return uuid.NewString() }}
}

// Prepare runs the creation steps in order: a caller-supplied id is checked
// for existence first (so it is never silently replaced), then a missing id
// is generated, then defaults are applied.
func (p Policy) Prepare(ctx context.Context, cal *Calendar, exists func(context.Context, string) (bool, error)) error {
	if cal.ID != "" {
		found, err := exists(ctx, cal.ID)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %s", ErrAlreadyExists, cal.ID)
		}
	} else {
		cal.ID = p.NewID()
	}
	p.ApplyDefaults(cal)
	return nil
}

// ApplyDefaults constructs absent metadata, defaults an absent status to
// unknown, and gives id-less events a fresh id.
func (p Policy) ApplyDefaults(cal *Calendar) {
	if cal.Metadata == nil {
		cal.Metadata = &Metadata{Status: StatusUnknown}
	} else if cal.Metadata.Status == "" {
		cal.Metadata.Status = StatusUnknown
	}
	for i := range cal.Events {
		if cal.Events[i].ID == "" {
			cal.Events[i].ID = p.NewID()
		}
	}
}
