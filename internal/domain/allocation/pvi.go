package allocation

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/fairway/internal/domain/model"
)

// WinnerShare is the fraction of the purse paid to the winner.
const WinnerShare = 0.18

// PVIUsage is shown when a pvi request cannot be parsed.
func PVIUsage(prefix string) string {
	return fmt.Sprintf("Usage: `%[1]spvi <odds> <purse> <earnings>` e.g. `%[1]spvi 80/1 20000000 150000`", prefix)
}

// PVI is the pick value index: the winner's share of the purse discounted by
// the win probability implied by odds, as a percentage of earnings.
type PVI struct {
	Odds        float64
	Purse       float64
	Earnings    float64
	WinnerPrize float64
	Expected    float64
	Index       float64
}

// ComputePVI returns the index for odds N/1, a purse and season earnings.
func ComputePVI(odds, purse, earnings float64) (PVI, error) {
	if !(odds > 0) || math.IsInf(odds, 0) || !(purse > 0) || !(earnings > 0) {
		return PVI{}, fmt.Errorf("%w: odds, purse and earnings must be positive", ErrMalformed)
	}
	if !inRange(purse) || !inRange(earnings) {
		return PVI{}, fmt.Errorf("%w: purse and earnings must be between %s and %s", ErrMalformed, model.Money(MinAmount), model.Money(MaxAmount))
	}
	prize := purse * WinnerShare
	expected := prize / (odds + 1)
	return PVI{
		Odds:        odds,
		Purse:       purse,
		Earnings:    earnings,
		WinnerPrize: prize,
		Expected:    expected,
		Index:       expected / earnings * 100,
	}, nil
}

// ParsePVI reads "<odds> <purse> <earnings>".
func ParsePVI(args string) (PVI, error) {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return PVI{}, fmt.Errorf("%w: expected odds, purse and earnings", ErrMalformed)
	}
	odds, err := ParseOdds(fields[0])
	if err != nil {
		return PVI{}, err
	}
	purse, err := model.ParseMoney(fields[1])
	if err != nil {
		return PVI{}, fmt.Errorf("%w: purse %q", ErrMalformed, fields[1])
	}
	earnings, err := model.ParseMoney(fields[2])
	if err != nil {
		return PVI{}, fmt.Errorf("%w: earnings %q", ErrMalformed, fields[2])
	}
	return ComputePVI(odds, purse, earnings)
}

// FormatPVI renders the index for chat.
func FormatPVI(p PVI) string {
	return fmt.Sprintf("📈 **PVI: %.2f**\nWinner's share %s at %g/1 is worth %s per start against %s earned.",
		p.Index, model.Money(p.WinnerPrize), p.Odds, model.Money(p.Expected), model.Money(p.Earnings))
}
