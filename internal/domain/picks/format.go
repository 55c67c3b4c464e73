package picks

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/fairway/internal/domain/model"
)

// Reveal texts.
const (
	RevealHeader = "**📣 This Week’s Picks:**"
	NoPicks      = "⚠️ No picks were submitted this week."
)

// DisplayTimestamp is the layout submissions are shown with.
const DisplayTimestamp = "2006-01-02 15:04:05 MST"

// FormatReveal renders the weekly reveal post.
func FormatReveal(subs []model.Submission, loc *time.Location) string {
	if len(subs) == 0 {
		return NoPicks
	}
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	b.WriteString(RevealHeader)
	b.WriteByte('\n')
	for _, s := range subs {
		fmt.Fprintf(&b, "- **%s**: %s *(submitted %s)*\n", s.DisplayName, s.Pick, s.SubmittedAt.In(loc).Format(DisplayTimestamp))
	}
	return b.String()
}

// FormatRoster lists who has submitted without revealing picks.
func FormatRoster(subs []model.Submission, loc *time.Location) string {
	if len(subs) == 0 {
		return "📭 Nobody has submitted a pick yet."
	}
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📝 **%d submitted:**\n", len(subs))
	for _, s := range subs {
		fmt.Fprintf(&b, "- %s *(%s)*\n", s.DisplayName, s.SubmittedAt.In(loc).Format(DisplayTimestamp))
	}
	return b.String()
}
