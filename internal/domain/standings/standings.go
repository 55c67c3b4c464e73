// Package standings turns ledger cells into season totals and rankings.
package standings

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/okian/fairway/internal/domain/model"
)

var (
	// ErrNoParticipants is returned when no ledger cells are configured.
	ErrNoParticipants = errors.New("no participants configured")
	// ErrUnreadableCell is returned when a cell does not hold an amount.
	ErrUnreadableCell = errors.New("ledger cell is not an amount")
)

// Reader reads one formatted cell, e.g. "B7", from the ledger.
type Reader interface {
	ReadCell(ctx context.Context, ref string) (string, error)
}

// Standing is one participant's season total.
type Standing struct {
	Name   string
	Cell   string
	Amount float64
}

// Board is every participant ordered from highest to lowest total.
type Board []Standing

// Load reads every participant's cell. participants maps name to cell.
func Load(ctx context.Context, r Reader, participants map[string]string) (Board, error) {
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	board := make(Board, 0, len(participants))
	for name, cell := range participants {
		raw, err := r.ReadCell(ctx, cell)
		if err != nil {
			return nil, fmt.Errorf("read %s (%s): %w", name, cell, err)
		}
		amount, err := model.ParseMoney(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s (%s) = %q", ErrUnreadableCell, name, cell, raw)
		}
		board = append(board, Standing{Name: name, Cell: cell, Amount: amount})
	}
	slices.SortFunc(board, func(a, b Standing) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return board, nil
}

// Leader is the highest total.
func (b Board) Leader() Standing { return b[0] }

// Loser is the lowest total.
func (b Board) Loser() Standing { return b[len(b)-1] }

// Gap is how far the leader is ahead of second place. Zero with one participant.
func (b Board) Gap() float64 {
	if len(b) < 2 {
		return 0
	}
	return b[0].Amount - b[1].Amount
}

// Spread is the distance between the leader and the loser.
func (b Board) Spread() float64 {
	return b.Leader().Amount - b.Loser().Amount
}

// FormatTotals renders the full table.
func FormatTotals(b Board) string {
	var sb strings.Builder
	sb.WriteString("💰 **Season Totals:**\n")
	for i, s := range b {
		fmt.Fprintf(&sb, "%d. **%s**: %s\n", i+1, s.Name, model.Money(s.Amount))
	}
	return sb.String()
}

// FormatLeader renders the leader line.
func FormatLeader(b Board) string {
	l := b.Leader()
	return fmt.Sprintf("🏆 **%s** leads with %s.", l.Name, model.Money(l.Amount))
}

// FormatLoser renders the last-place line.
func FormatLoser(b Board) string {
	l := b.Loser()
	return fmt.Sprintf("🐢 **%s** is last with %s.", l.Name, model.Money(l.Amount))
}

// FormatDelta renders the gaps at the top and across the table.
func FormatDelta(b Board) string {
	if len(b) < 2 {
		return fmt.Sprintf("📏 **%s** is the only participant.", b.Leader().Name)
	}
	return fmt.Sprintf("📏 **%s** leads **%s** by %s. First to last: %s.",
		b[0].Name, b[1].Name, model.Money(b.Gap()), model.Money(b.Spread()))
}
