// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Submission is one participant's pick for the current cycle.
// UserID is the chat platform's user identifier in its canonical decimal
// string form; it is also the key under which the submission is stored.
type Submission struct {
	UserID      string
	DisplayName string
	Pick        string
	SubmittedAt time.Time
}

// EventEntry is one upcoming event and its purse.
type EventEntry struct {
	Name  string
	Value float64
}

// DualEventSeparator marks a queue entry that covers two concurrent events,
// e.g. "Barracuda Championship / Scottish Open".
const DualEventSeparator = " / "

// IsDual reports whether the entry covers two concurrent events.
func (e EventEntry) IsDual() bool {
	return strings.Contains(e.Name, DualEventSeparator)
}

// Events splits a dual entry into its event names.
func (e EventEntry) Events() []string {
	parts := strings.Split(e.Name, DualEventSeparator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
