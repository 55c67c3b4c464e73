// Package calendar tracks the remaining events of the season in play order.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Queue is the ordered list of upcoming events. The earliest entry is the
// first one inserted; entries are only ever removed from the front.
type Queue struct {
	mu      sync.RWMutex
	store   repository.Store
	entries *orderedmap.OrderedMap[string, float64]
	logger  logger.Logger
}

// New loads the stored events.
func New(ctx context.Context, store repository.Store, opts ...Option) (*Queue, error) {
	q := &Queue{store: store}
	for _, opt := range opts {
		opt(q)
	}
	if q.logger == nil {
		q.logger = logger.Get().Named("calendar")
	}
	doc, err := store.Load(ctx, repository.CollectionEvents)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	entries := orderedmap.New[string, float64]()
	for pair := doc.Oldest(); pair != nil; pair = pair.Next() {
		var v float64
		if err := json.Unmarshal(pair.Value, &v); err != nil {
			return nil, fmt.Errorf("%w: events[%s]: %w", repository.ErrCorrupt, pair.Key, ErrInvalidValue)
		}
		entries.Set(pair.Key, v)
	}
	metrics.UpdateEventsRemaining(entries.Len())
	q.entries = entries
	q.logger.Info(ctx, "events loaded", logger.Int("remaining", entries.Len()))
	return q, nil
}

// List returns the remaining events, earliest first.
func (q *Queue) List() []model.EventEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]model.EventEntry, 0, q.entries.Len())
	for pair := q.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, model.EventEntry{Name: pair.Key, Value: pair.Value})
	}
	return out
}

// Earliest returns the current event.
func (q *Queue) Earliest() (model.EventEntry, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	pair := q.entries.Oldest()
	if pair == nil {
		return model.EventEntry{}, false
	}
	return model.EventEntry{Name: pair.Key, Value: pair.Value}, true
}

// Len returns the number of remaining events.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.entries.Len()
}

// PopEarliest removes and returns the earliest event. Popping an empty queue
// is a no-op that reports false. The queue only changes once the new state
// is stored.
func (q *Queue) PopEarliest(ctx context.Context) (model.EventEntry, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	head := q.entries.Oldest()
	if head == nil {
		return model.EventEntry{}, false, nil
	}
	popped := model.EventEntry{Name: head.Key, Value: head.Value}

	doc := repository.NewDocument()
	next := orderedmap.New[string, float64]()
	for pair := head.Next(); pair != nil; pair = pair.Next() {
		raw, err := repository.MarshalValue(pair.Value)
		if err != nil {
			return model.EventEntry{}, false, fmt.Errorf("encode event %s: %w", pair.Key, err)
		}
		doc.Set(pair.Key, raw)
		next.Set(pair.Key, pair.Value)
	}
	if err := q.store.Save(ctx, repository.CollectionEvents, doc); err != nil {
		q.logger.Error(ctx, "persist events failed", logger.Error(err))
		return model.EventEntry{}, false, err
	}
	q.entries = next
	metrics.UpdateEventsRemaining(next.Len())
	q.logger.Info(ctx, "event rotated",
		logger.String("event", popped.Name),
		logger.Int("remaining", next.Len()),
	)
	return popped, true, nil
}

// FormatSchedule renders the remaining events for chat.
func FormatSchedule(entries []model.EventEntry) string {
	if len(entries) == 0 {
		return "🏁 No events remain on the schedule."
	}
	var b strings.Builder
	word := "events"
	if len(entries) == 1 {
		word = "event"
	}
	fmt.Fprintf(&b, "📅 **%d %s left:**\n", len(entries), word)
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s: %s", i+1, e.Name, model.WholeMoney(e.Value))
		if e.IsDual() {
			b.WriteString(" *(two events)*")
		}
		b.WriteByte('\n')
	}
	return b.String()
}
