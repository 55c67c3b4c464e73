package service

import (
	"context"
	"fmt"

	"github.com/okian/fairway/internal/adapters/chat"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/picks"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Reveal posts the current picks, or the no-picks notice, to the reveal
// channel and clears them. Picks are only cleared once the post went out.
// It returns the number of picks revealed.
func (s *Service) Reveal(ctx context.Context) (int, error) {
	subs := s.picks.All()
	text := picks.FormatReveal(subs, s.loc)
	err := s.send(ctx, func(ctx context.Context) error {
		return s.chat.SendChannel(ctx, s.revealChannelID, text)
	})
	if err != nil {
		s.logger.Error(ctx, "reveal not posted, picks kept", logger.Int("picks", len(subs)), logger.Error(err))
		return 0, err
	}
	cleared, err := s.picks.RevealAndClear(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear picks: %w", err)
	}
	s.logger.Info(ctx, "picks revealed", logger.Int("picks", len(cleared)))
	return len(cleared), nil
}

// Rotate drops the earliest event from the schedule.
func (s *Service) Rotate(ctx context.Context) (model.EventEntry, bool, error) {
	return s.events.PopEarliest(ctx)
}

// Delivery is the outcome of one reminder.
type Delivery struct {
	Member chat.Member
	Err    error
}

// DeliveryReport lists every reminder attempt.
type DeliveryReport struct {
	Deliveries []Delivery
}

// Delivered counts successful reminders.
func (r DeliveryReport) Delivered() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the attempts that did not go through.
func (r DeliveryReport) Failed() []Delivery {
	var out []Delivery
	for _, d := range r.Deliveries {
		if d.Err != nil {
			out = append(out, d)
		}
	}
	return out
}

// ReminderText is sent to every member before the reveal.
func ReminderText(next model.EventEntry, ok bool, prefix string) string {
	if !ok {
		return fmt.Sprintf("⏰ Reminder: picks are revealed tonight. DM me `%spick <golfer>` to get yours in!", prefix)
	}
	if next.IsDual() {
		return fmt.Sprintf("⏰ Reminder: **%s** is on this week. DM me `%spick <golfer> / <golfer>` with one golfer per event before tonight's reveal!", next.Name, prefix)
	}
	return fmt.Sprintf("⏰ Reminder: **%s** is on this week. DM me `%spick <golfer>` before tonight's reveal!", next.Name, prefix)
}

// Remind sends a direct reminder to every human member. A failed delivery is
// recorded in the report and never stops the others; only a failure to list
// members is returned as an error.
func (s *Service) Remind(ctx context.Context) (DeliveryReport, error) {
	var members []chat.Member
	err := s.send(ctx, func(ctx context.Context) error {
		var err error
		members, err = s.chat.Members(ctx)
		return err
	})
	if err != nil {
		return DeliveryReport{}, fmt.Errorf("%w: %w", ErrDirectory, err)
	}

	next, ok := s.events.Earliest()
	text := ReminderText(next, ok, s.prefix)

	var report DeliveryReport
	for _, m := range chat.Humans(members) {
		err := s.send(ctx, func(ctx context.Context) error {
			return s.chat.SendDirect(ctx, m.ID, text)
		})
		report.Deliveries = append(report.Deliveries, Delivery{Member: m, Err: err})
		if err != nil {
			metrics.RecordReminderDelivery(metrics.OutcomeError)
			s.logger.Warn(ctx, "reminder not delivered",
				logger.String("user_id", m.ID),
				logger.String("name", m.Name),
				logger.Error(err),
			)
			continue
		}
		metrics.RecordReminderDelivery(metrics.OutcomeOK)
	}
	s.logger.Info(ctx, "reminders sent",
		logger.Int("delivered", report.Delivered()),
		logger.Int("failed", len(report.Failed())),
	)
	return report, nil
}
