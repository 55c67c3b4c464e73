package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/fairway/internal/adapters/chat"
	"github.com/okian/fairway/internal/domain/allocation"
	"github.com/okian/fairway/internal/domain/calendar"
	"github.com/okian/fairway/internal/domain/picks"
	"github.com/okian/fairway/internal/domain/standings"
)

// Replies used by the built-in commands.
const (
	DMOnly         = "📬 Please DM me your pick!"
	PickUsage      = "❌ Usage: `%spick <golfer>`"
	PickLocked     = "✅ Got it! Your pick '%s' has been locked in."
	NoPickYet      = "🤷 You haven't submitted a pick this week."
	TestPost       = "📣 This is a test post to confirm the bot can send messages."
	TestPostSent   = "✅ Test post sent."
	TestPostFailed = "❌ Could not post to the reveal channel. Check FAIRWAY_REVEAL_CHANNEL_ID."
	LedgerOff      = "⚠️ The ledger isn't configured."
	LedgerDown     = "⚠️ Couldn't read the ledger right now. Try again later."
	LedgerBadCell  = "⚠️ A ledger cell doesn't hold an amount. Ask the owner to check the sheet."
)

// Deps are the collaborators of the built-in commands.
type Deps struct {
	Picks  *picks.Registry
	Events *calendar.Queue
	// Ledger may be nil when no ledger is configured.
	Ledger       standings.Reader
	Participants map[string]string
	Sender       chat.Sender
	// RevealChannelID is where testpost writes.
	RevealChannelID string
	// Reveal runs the weekly reveal and returns how many picks it posted.
	Reveal func(ctx context.Context) (int, error)

	LedgerTimeout time.Duration
	SendTimeout   time.Duration
}

// Builtins returns the command table. help needs the registry to list
// commands, so it is passed in.
func Builtins(r *Registry, d Deps) []Command {
	b := &builtins{reg: r, deps: d}
	return []Command{
		{Name: "pick", Usage: "<golfer>", Summary: "Submit your pick (DM only)", Handler: b.pick},
		{Name: "mypick", Summary: "Show the pick you submitted", Handler: b.myPick},
		{Name: "weeksleft", Summary: "List the events left on the schedule", Handler: b.weeksLeft},
		{Name: "totals", Summary: "Season totals from the ledger", Handler: b.standings(standings.FormatTotals)},
		{Name: "leader", Summary: "Who is leading the season", Handler: b.standings(standings.FormatLeader)},
		{Name: "loser", Summary: "Who is last", Handler: b.standings(standings.FormatLoser)},
		{Name: "delta", Summary: "Gap to the leader", Handler: b.standings(standings.FormatDelta)},
		{Name: "allocate", Usage: "<units>u <unit value> <name> <N>/1, ...", Summary: "Split a budget so every line pays the same", Handler: b.allocate},
		{Name: "pvi", Usage: "<odds> <purse> <earnings>", Summary: "Pick value index", Handler: b.pvi},
		{Name: "revealnow", Role: Owner, Summary: "Reveal and clear picks now", Handler: b.revealNow},
		{Name: "testpost", Role: Owner, Summary: "Post a test message to the reveal channel", Handler: b.testPost},
		{Name: "submits", Role: Owner, Summary: "Who has submitted this week", Handler: b.submits},
		{Name: "help", Aliases: []string{"commands"}, Summary: "This list", Handler: b.help},
	}
}

type builtins struct {
	reg  *Registry
	deps Deps
}

func (b *builtins) pick(ctx context.Context, req Request) (string, error) {
	dual := false
	if e, ok := b.deps.Events.Earliest(); ok {
		dual = e.IsDual()
	}
	rc, err := b.deps.Picks.Submit(ctx, picks.Request{
		UserID:      req.Message.AuthorID,
		DisplayName: req.Message.AuthorName,
		Text:        req.Args,
		Private:     req.Message.Private,
		DualEvent:   dual,
		Now:         req.Now,
	})
	switch {
	case errors.Is(err, picks.ErrNotAllowedHere):
		return "", Notice(ErrValidation, DMOnly, err)
	case errors.Is(err, picks.ErrEmptyPick):
		return "", Notice(ErrValidation, fmt.Sprintf(PickUsage, b.reg.Prefix()), err)
	case err != nil:
		return "", err
	}
	reply := fmt.Sprintf(PickLocked, rc.Submission.Pick)
	if rc.Warning != "" {
		reply += "\n" + rc.Warning
	}
	return reply, nil
}

func (b *builtins) myPick(_ context.Context, req Request) (string, error) {
	sub, err := b.deps.Picks.Lookup(req.Message.AuthorID)
	if errors.Is(err, picks.ErrNotFound) {
		return "", Notice(ErrNotFound, NoPickYet, err)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📝 Your pick: **%s** *(submitted %s)*",
		sub.Pick, sub.SubmittedAt.In(b.deps.Picks.Location()).Format(picks.DisplayTimestamp)), nil
}

func (b *builtins) weeksLeft(context.Context, Request) (string, error) {
	return calendar.FormatSchedule(b.deps.Events.List()), nil
}

func (b *builtins) standings(render func(standings.Board) string) Handler {
	return func(ctx context.Context, _ Request) (string, error) {
		if b.deps.Ledger == nil {
			return "", Notice(ErrCollaborator, LedgerOff, nil)
		}
		if b.deps.LedgerTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, b.deps.LedgerTimeout)
			defer cancel()
		}
		board, err := standings.Load(ctx, b.deps.Ledger, b.deps.Participants)
		switch {
		case errors.Is(err, standings.ErrNoParticipants):
			return "", Notice(ErrCollaborator, LedgerOff, err)
		case errors.Is(err, standings.ErrUnreadableCell):
			return "", Notice(ErrCollaborator, LedgerBadCell, err)
		case err != nil:
			return "", Notice(ErrCollaborator, LedgerDown, err)
		}
		return render(board), nil
	}
}

func (b *builtins) allocate(_ context.Context, req Request) (string, error) {
	in, err := allocation.ParseRequest(req.Args)
	if err != nil {
		return "", Notice(ErrValidation, "❌ "+allocation.Usage(b.reg.Prefix()), err)
	}
	plan, err := allocation.Allocate(in)
	if err != nil {
		return "", Notice(ErrValidation, "❌ "+allocation.Usage(b.reg.Prefix()), err)
	}
	return allocation.Format(plan), nil
}

func (b *builtins) pvi(_ context.Context, req Request) (string, error) {
	p, err := allocation.ParsePVI(req.Args)
	if err != nil {
		return "", Notice(ErrValidation, "❌ "+allocation.PVIUsage(b.reg.Prefix()), err)
	}
	return allocation.FormatPVI(p), nil
}

func (b *builtins) revealNow(ctx context.Context, _ Request) (string, error) {
	n, err := b.deps.Reveal(ctx)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "✅ Posted the no-picks notice.", nil
	}
	return fmt.Sprintf("✅ Revealed %d picks.", n), nil
}

func (b *builtins) testPost(ctx context.Context, _ Request) (string, error) {
	if b.deps.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.deps.SendTimeout)
		defer cancel()
	}
	if err := b.deps.Sender.SendChannel(ctx, b.deps.RevealChannelID, TestPost); err != nil {
		return "", Notice(ErrCollaborator, TestPostFailed, err)
	}
	return TestPostSent, nil
}

func (b *builtins) submits(context.Context, Request) (string, error) {
	return picks.FormatRoster(b.deps.Picks.All(), b.deps.Picks.Location()), nil
}

func (b *builtins) help(_ context.Context, req Request) (string, error) {
	owner := b.reg.IsOwner(req.Message.AuthorID)
	var sb strings.Builder
	sb.WriteString("🏌️ **Commands:**\n")
	for _, c := range b.reg.Commands() {
		if c.Role == Owner && !owner {
			continue
		}
		sb.WriteString("`")
		sb.WriteString(b.reg.Prefix())
		sb.WriteString(c.Name)
		if c.Usage != "" {
			sb.WriteString(" ")
			sb.WriteString(c.Usage)
		}
		sb.WriteString("` ")
		sb.WriteString(c.Summary)
		if c.Role == Owner {
			sb.WriteString(" *(owner)*")
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
