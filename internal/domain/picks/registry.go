// Package picks records one weekly pick per participant and renders the reveal.
package picks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/okian/fairway/internal/adapters/repository"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/logger"
	"github.com/okian/fairway/pkg/metrics"
)

// Request is an inbound pick.
type Request struct {
	UserID      string
	DisplayName string
	Text        string
	// Private is true when the pick arrived in a one-to-one channel.
	Private bool
	// DualEvent is true when the current week covers two events.
	DualEvent bool
	Now       time.Time
}

// Receipt confirms a recorded pick. Warning is advisory and never blocks the pick.
type Receipt struct {
	Submission model.Submission
	Warning    string
}

// SeparatorWarning is attached to a dual-event pick that names a single golfer.
const SeparatorWarning = "⚠️ Two events are on this week. Separate your picks, e.g. `!pick Scheffler / Fleetwood`."

// pickSeparators split a pick into one golfer per event.
var pickSeparators = []string{"/", ",", "&", "+", "|", " and "}

// Registry holds the current week's submissions in insertion order.
type Registry struct {
	mu     sync.RWMutex
	store  repository.Store
	subs   *submissions
	loc    *time.Location
	logger logger.Logger
}

// New loads the stored picks and returns a registry backed by store.
func New(ctx context.Context, store repository.Store, opts ...Option) (*Registry, error) {
	r := &Registry{
		store: store,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("picks")
	}

	doc, err := store.Load(ctx, repository.CollectionPicks)
	if err != nil {
		return nil, fmt.Errorf("load picks: %w", err)
	}
	subs, err := decodeDocument(doc, r.loc)
	if err != nil {
		return nil, err
	}
	r.subs = subs
	metrics.UpdatePicksCurrent(subs.Len())
	r.logger.Info(ctx, "picks loaded", logger.Int("count", subs.Len()))
	return r, nil
}

// Submit records or replaces the sender's pick.
func (r *Registry) Submit(ctx context.Context, req Request) (Receipt, error) {
	if !req.Private {
		return Receipt{}, ErrNotAllowedHere
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Receipt{}, ErrEmptyPick
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	sub := model.Submission{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Pick:        text,
		SubmittedAt: now.In(r.loc).Truncate(time.Second),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.copyLocked()
	next.Set(sub.UserID, sub)
	if err := r.commitLocked(ctx, next); err != nil {
		return Receipt{}, err
	}

	rc := Receipt{Submission: sub}
	if req.DualEvent && !HasSeparator(text) {
		rc.Warning = SeparatorWarning
	}
	r.logger.Info(ctx, "pick recorded",
		logger.String("user_id", sub.UserID),
		logger.String("name", sub.DisplayName),
		logger.Bool("warned", rc.Warning != ""),
	)
	return rc, nil
}

// Lookup returns the submission recorded for userID.
func (r *Registry) Lookup(userID string) (model.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs.Get(userID)
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return sub, nil
}

// All returns every submission in insertion order.
func (r *Registry) All() []model.Submission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Submission, 0, r.subs.Len())
	for pair := r.subs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Count returns the number of submissions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subs.Len()
}

// RevealAndClear returns the current submissions and empties the registry.
// An empty registry yields an empty slice and leaves storage untouched.
func (r *Registry) RevealAndClear(ctx context.Context) ([]model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Submission, 0, r.subs.Len())
	for pair := r.subs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	if len(out) == 0 {
		return out, nil
	}
	if err := r.commitLocked(ctx, orderedmap.New[string, model.Submission]()); err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "picks cleared", logger.Int("count", len(out)))
	return out, nil
}

// Location is the zone submissions are stamped in.
func (r *Registry) Location() *time.Location {
	return r.loc
}

func (r *Registry) copyLocked() *submissions {
	next := orderedmap.New[string, model.Submission]()
	for pair := r.subs.Oldest(); pair != nil; pair = pair.Next() {
		next.Set(pair.Key, pair.Value)
	}
	return next
}

// commitLocked persists next and only then swaps it in.
func (r *Registry) commitLocked(ctx context.Context, next *submissions) error {
	doc, err := encodeDocument(next)
	if err != nil {
		return err
	}
	if err := r.store.Save(ctx, repository.CollectionPicks, doc); err != nil {
		r.logger.Error(ctx, "persist picks failed", logger.Error(err))
		return err
	}
	r.subs = next
	metrics.UpdatePicksCurrent(next.Len())
	return nil
}

// HasSeparator reports whether text names more than one golfer.
func HasSeparator(text string) bool {
	lower := strings.ToLower(text)
	for _, sep := range pickSeparators {
		if strings.Contains(lower, sep) {
			return true
		}
	}
	return false
}
