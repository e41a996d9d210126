package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"calendars/internal/logger"
)

type Status string

const (
	StatusStarting Status = "STARTING"
	StatusUp       Status = "UP"
	StatusDown     Status = "DOWN"
)

// Check reports whether one dependency answers.
type Check func(ctx context.Context) error

// Report is the last observed state of every registered component.
type Report struct {
	Status     Status            `json:"status"`
	Components map[string]Status `json:"components"`
	Attempts   int               `json:"attempts"`
	CheckedAt  time.Time         `json:"checkedAt"`
}

// Probe waits for its components to come up after startup. It retries
// up to Retries times with Delay between attempts and then settles on
// whatever it last saw; it never fails the process.
type Probe struct {
	Retries int
	Delay   time.Duration
	Log     *logger.Logger

	checks map[string]Check

	mu   sync.RWMutex
	last Report
}

func NewProbe(retries int, delay time.Duration, baseLog *logger.Logger) *Probe {
	if retries < 1 {
		retries = 1
	}
	return &Probe{
		Retries: retries,
		Delay:   delay,
		Log:     baseLog.With("component", "HealthProbe"),
		checks:  map[string]Check{},
		last:    Report{Status: StatusStarting, Components: map[string]Status{}},
	}
}

// Register must be called before Run.
func (p *Probe) Register(name string, c Check) {
	p.checks[name] = c
	p.last.Components[name] = StatusStarting
}

// Run blocks until every component is up, retries are exhausted, or ctx ends.
// It returns the final report.
func (p *Probe) Run(ctx context.Context) Report {
	var rep Report
	for attempt := 1; attempt <= p.Retries; attempt++ {
		rep = p.checkOnce(ctx, attempt)
		p.store(rep)

		if rep.Status == StatusUp {
			if attempt > 1 {
				p.Log.Info("Health stabilized", "attempts", attempt)
			} else {
				p.Log.Info("Health check passed", "components", rep.Components)
			}
			return rep
		}
		if attempt == p.Retries {
			break
		}

		p.Log.Debug("Health not ready yet, retrying",
			"delay", p.Delay, "attempt", attempt, "retries", p.Retries)
		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.Log.Warn("Health probe cancelled", "attempt", attempt, "error", ctx.Err())
			return rep
		case <-timer.C:
		}
	}

	p.Log.Warn("Health not stable after retries; continuing",
		"status", rep.Status, "components", rep.Components, "attempts", rep.Attempts)
	return rep
}

// Last is safe to call while Run is in progress.
func (p *Probe) Last() Report {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := p.last
	out.Components = make(map[string]Status, len(p.last.Components))
	for k, v := range p.last.Components {
		out.Components[k] = v
	}
	return out
}

func (p *Probe) checkOnce(ctx context.Context, attempt int) Report {
	names := make([]string, 0, len(p.checks))
	for name := range p.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	rep := Report{
		Status:     StatusUp,
		Components: make(map[string]Status, len(names)),
		Attempts:   attempt,
		CheckedAt:  time.Now().UTC(),
	}
	for _, name := range names {
		if err := p.checks[name](ctx); err != nil {
			p.Log.Debug("Component down", "component", name, "attempt", attempt, "error", err)
			rep.Components[name] = StatusDown
			rep.Status = StatusDown
			continue
		}
		rep.Components[name] = StatusUp
	}
	return rep
}

func (p *Probe) store(rep Report) {
	p.mu.Lock()
	p.last = rep
	p.mu.Unlock()
}
