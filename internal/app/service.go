// Package service wires the pick registry, the event queue and the weekly
// triggers onto a single event loop.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/fairway/internal/adapters/chat"
	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/adapters/mq/worker"
	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/commands"
	"github.com/okian/fairway/internal/domain/calendar"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/picks"
	"github.com/okian/fairway/internal/domain/standings"
	"github.com/okian/fairway/internal/scheduler"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Trigger names.
const (
	TriggerReveal = "reveal"
	TriggerRotate = "rotate"
	TriggerRemind = "remind"
)

// Chat is the platform the bot talks through.
type Chat interface {
	chat.Sender
	chat.Directory
}

// Service owns the bot state. Every mutation runs as a task on the event
// loop; chat handlers and timers only enqueue.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	picks    *picks.Registry
	events   *calendar.Queue
	chat     Chat
	tasks    *queue.InMemoryQueue
	loop     *worker.Serial
	sched    *scheduler.Scheduler
	commands *commands.Registry
	guard    dedupe.Guard

	// Configuration
	clock           clockwork.Clock
	loc             *time.Location
	queueSize       int
	prefix          string
	ownerID         string
	revealChannelID string
	schedules       map[string]string
	ledger          standings.Reader
	participants    map[string]string
	sendTimeout     time.Duration
	ledgerTimeout   time.Duration

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New loads the stored picks and events and prepares the loop, the triggers
// and the command table. Nothing runs until Start.
func New(ctx context.Context, store repository.Store, c Chat, opts ...Option) (*Service, error) {
	s := &Service{
		store:     store,
		chat:      c,
		clock:     clockwork.NewRealClock(),
		loc:       time.UTC,
		queueSize: 1024,
		prefix:    "!",
		schedules: map[string]string{
			TriggerReveal: "0 21 * * 3",
			TriggerRotate: "0 9 * * 1",
			TriggerRemind: "0 12 * * 3",
		},
		sendTimeout:   10 * time.Second,
		ledgerTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.guard == nil {
		s.guard = dedupe.NewGuard()
	}

	var err error
	s.picks, err = picks.New(ctx, store, picks.WithLocation(s.loc))
	if err != nil {
		return nil, err
	}
	s.events, err = calendar.New(ctx, store)
	if err != nil {
		return nil, err
	}

	s.tasks = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.loop = worker.New(s.tasks)

	s.commands = commands.NewRegistry(s.prefix, s.ownerID, nil)
	if err := s.commands.Register(commands.Builtins(s.commands, commands.Deps{
		Picks:           s.picks,
		Events:          s.events,
		Ledger:          s.ledger,
		Participants:    s.participants,
		Sender:          s.chat,
		RevealChannelID: s.revealChannelID,
		Reveal:          s.Reveal,
		LedgerTimeout:   s.ledgerTimeout,
		SendTimeout:     s.sendTimeout,
	})...); err != nil {
		return nil, err
	}

	s.sched = scheduler.New(s,
		scheduler.WithClock(s.clock),
		scheduler.WithLocation(s.loc),
		scheduler.WithGuard(s.guard),
	)
	effects := []struct {
		name   string
		effect scheduler.Effect
	}{
		{TriggerReveal, func(ctx context.Context, _ time.Time) error {
			_, err := s.Reveal(ctx)
			return err
		}},
		{TriggerRotate, func(ctx context.Context, _ time.Time) error {
			_, _, err := s.Rotate(ctx)
			return err
		}},
		{TriggerRemind, func(ctx context.Context, _ time.Time) error {
			_, err := s.Remind(ctx)
			return err
		}},
	}
	for _, e := range effects {
		if err := s.sched.Register(e.name, s.schedules[e.name], e.effect); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start runs the event loop and arms the triggers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.tasks.IsClosed() {
		return ErrStopped
	}

	// The loop outlives ctx so Stop can drain queued tasks.
	go s.loop.Run(context.WithoutCancel(ctx))
	s.sched.Start(ctx)

	s.started = true
	s.startedAt = s.clock.Now()
	fields := []logger.Field{
		logger.Int("picks", s.picks.Count()),
		logger.Int("events", s.events.Len()),
		logger.Int("queueSize", s.queueSize),
	}
	for _, u := range s.sched.Upcoming() {
		fields = append(fields, logger.Time("next_"+u.Name, u.At))
	}
	s.logger.Info(ctx, "service started", fields...)
	return nil
}

// Stop disarms the triggers, lets queued tasks finish and closes the store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrNotStarted
	}
	s.logger.Info(ctx, "stopping service...")

	s.sched.Stop()
	err := s.loop.Shutdown(ctx)
	if cerr := s.store.Close(); cerr != nil && err == nil {
		err = cerr
	}

	s.started = false
	s.logger.Info(ctx, "service stopped")
	return err
}

// Enqueue hands a task to the event loop. It never blocks.
func (s *Service) Enqueue(ctx context.Context, t queue.Task) bool {
	ok := s.tasks.Enqueue(ctx, t)
	metrics.UpdateLoopQueueDepth(s.tasks.Len(ctx))
	if !ok {
		metrics.RecordLoopTask("rejected", -1)
		s.logger.Warn(ctx, "event loop refused task", logger.String("task", t.Name))
	}
	return ok
}

// HandleMessage queues a chat message for dispatch. Messages that are not
// commands are dropped here without touching the loop.
func (s *Service) HandleMessage(ctx context.Context, msg chat.Message) {
	name, _, ok := s.commands.Parse(msg.Content)
	if !ok {
		return
	}
	s.Enqueue(ctx, queue.NewTask("command:"+name, func(ctx context.Context) error {
		reply, handled := s.commands.Dispatch(ctx, msg)
		if !handled || reply == "" {
			return nil
		}
		return s.send(ctx, func(ctx context.Context) error {
			return s.chat.SendChannel(ctx, msg.ChannelID, reply)
		})
	}))
}

// GetStats returns service statistics for the health endpoint.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":          s.started,
		"picks":            s.picks.Count(),
		"events_remaining": s.events.Len(),
		"queue_length":     s.tasks.Len(ctx),
		"fire_guard":       s.guard.Size(),
	}
	if s.started {
		stats["uptime"] = s.clock.Since(s.startedAt).Round(time.Second).String()
	}

	loop := s.loop.Stats()
	stats["tasks_processed"] = loop.Processed
	stats["tasks_failed"] = loop.Failed
	if !loop.LastRun.IsZero() {
		stats["last_task"] = loop.LastRun.Format(time.RFC3339)
	}

	next := make(map[string]string)
	for _, u := range s.sched.Upcoming() {
		next[u.Name] = u.At.Format(time.RFC3339)
	}
	stats["next"] = next
	return stats
}

// Commands exposes the command table.
func (s *Service) Commands() *commands.Registry {
	return s.commands
}

func (s *Service) send(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	return nil
}
