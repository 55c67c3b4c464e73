package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/standings"
	"github.com/okian/fairway/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone triggers and timestamps use.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithGuard sets the fire guard shared by the triggers.
func WithGuard(g dedupe.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithQueueSize bounds the event loop queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCommandPrefix sets the token commands start with.
func WithCommandPrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithOwner sets the identity allowed to run owner commands.
func WithOwner(userID string) Option {
	return func(s *Service) {
		s.ownerID = userID
	}
}

// WithRevealChannel sets where the reveal is posted.
func WithRevealChannel(channelID string) Option {
	return func(s *Service) {
		s.revealChannelID = channelID
	}
}

// WithSchedules overrides the cron expressions of the weekly triggers. Empty
// values keep the defaults.
func WithSchedules(reveal, rotate, remind string) Option {
	return func(s *Service) {
		if reveal != "" {
			s.schedules[TriggerReveal] = reveal
		}
		if rotate != "" {
			s.schedules[TriggerRotate] = rotate
		}
		if remind != "" {
			s.schedules[TriggerRemind] = remind
		}
	}
}

// WithLedger enables the statistics commands. participants maps a name to
// its ledger cell.
func WithLedger(r standings.Reader, participants map[string]string) Option {
	return func(s *Service) {
		s.ledger = r
		s.participants = participants
	}
}

// WithTimeouts bounds outbound sends and ledger reads.
func WithTimeouts(send, ledger time.Duration) Option {
	return func(s *Service) {
		if send > 0 {
			s.sendTimeout = send
		}
		if ledger > 0 {
			s.ledgerTimeout = ledger
		}
	}
}
