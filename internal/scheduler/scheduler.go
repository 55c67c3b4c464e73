// Package scheduler fires weekly effects at wall-clock instants.
//
// Each trigger is a five-field cron expression evaluated in the configured
// zone. The scheduler computes the next absolute fire time, waits for it on a
// timer and hands the effect to the event loop. A fire guard keyed by
// trigger and instant keeps an effect from running twice for one window, and
// windows that passed while the process was down or suspended are skipped.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron"

	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

const defaultTolerance = time.Minute

// Effect is the work a trigger performs; at is the scheduled instant.
type Effect func(ctx context.Context, at time.Time) error

// Runner accepts tasks for the event loop.
type Runner interface {
	Enqueue(ctx context.Context, t queue.Task) bool
}

type trigger struct {
	name     string
	spec     string
	schedule cron.Schedule
	effect   Effect

	mu   sync.Mutex
	next time.Time
}

func (t *trigger) setNext(at time.Time) {
	t.mu.Lock()
	t.next = at
	t.mu.Unlock()
}

// Scheduler owns the registered triggers.
type Scheduler struct {
	runner    Runner
	clock     clockwork.Clock
	loc       *time.Location
	guard     dedupe.Guard
	tolerance time.Duration
	logger    logger.Logger

	mu       sync.Mutex
	triggers []*trigger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a scheduler that hands due effects to runner.
func New(runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:    runner,
		clock:     clockwork.NewRealClock(),
		loc:       time.UTC,
		tolerance: defaultTolerance,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = dedupe.NewGuard()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}
	return s
}

// Register adds a trigger. spec is a standard cron expression such as
// "0 21 * * 3" (Wednesdays at 21:00).
func (s *Scheduler) Register(name, spec string, effect Effect) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %w", ErrInvalidSchedule, name, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrStarted
	}
	for _, t := range s.triggers {
		if t.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateTrigger, name)
		}
	}
	s.triggers = append(s.triggers, &trigger{name: name, spec: spec, schedule: schedule, effect: effect})
	return nil
}

// Start arms every trigger. It returns immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for _, t := range s.triggers {
		s.wg.Add(1)
		go s.run(ctx, t)
	}
	s.logger.Info(ctx, "scheduler started",
		logger.Int("triggers", len(s.triggers)),
		logger.String("zone", s.loc.String()),
	)
}

// Stop disarms all triggers and waits for their goroutines. Effects already
// handed to the event loop are not affected.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

// Upcoming describes when a trigger fires next.
type Upcoming struct {
	Name string
	Spec string
	At   time.Time
}

// Upcoming returns the next fire time of every trigger in registration order.
// Triggers that are not armed yet report the time computed from now.
func (s *Scheduler) Upcoming() []Upcoming {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now().In(s.loc)
	out := make([]Upcoming, 0, len(s.triggers))
	for _, t := range s.triggers {
		t.mu.Lock()
		at := t.next
		t.mu.Unlock()
		if at.IsZero() {
			at = t.schedule.Next(now)
		}
		out = append(out, Upcoming{Name: t.name, Spec: t.spec, At: at})
	}
	return out
}

func (s *Scheduler) run(ctx context.Context, t *trigger) {
	defer s.wg.Done()
	for {
		now := s.clock.Now().In(s.loc)
		next := t.schedule.Next(now)
		if next.IsZero() {
			s.logger.Warn(ctx, "trigger never fires", logger.String("trigger", t.name))
			return
		}
		t.setNext(next)

		timer := s.clock.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
		s.fire(ctx, t, next)
	}
}

func (s *Scheduler) fire(ctx context.Context, t *trigger, at time.Time) {
	log := s.logger.With(logger.String("trigger", t.name), logger.Time("at", at))

	if late := s.clock.Since(at); late > s.tolerance {
		log.Warn(ctx, "missed window skipped", logger.Duration("late", late))
		metrics.RecordTriggerFire(t.name, metrics.OutcomeSkip)
		return
	}

	key := dedupe.FireKey(t.name, at)
	if s.guard.SeenAndRecord(ctx, key) {
		log.Debug(ctx, "already fired for this window")
		metrics.RecordTriggerFire(t.name, metrics.OutcomeSkip)
		return
	}

	task := queue.NewTask("trigger:"+t.name, func(ctx context.Context) error {
		err := t.effect(ctx, at)
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.RecordTriggerFire(t.name, outcome)
		return err
	})
	if !s.runner.Enqueue(ctx, task) {
		s.guard.Unrecord(ctx, key)
		log.Error(ctx, "event loop refused trigger")
		metrics.RecordTriggerFire(t.name, metrics.OutcomeError)
		return
	}
	log.Info(ctx, "trigger fired")
}
