// Package allocation sizes stakes across several betting lines so each line
// pays the same amount, and computes the pick value index.
package allocation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/fairway/internal/domain/model"
)

// Usage is shown when an allocate request cannot be parsed. prefix is what
// precedes the command name, such as "!" in chat.
func Usage(prefix string) string {
	return fmt.Sprintf("Usage: `%[1]sallocate <units>u <unit value> <name> <N>/1, <name> <N>/1, ...` e.g. `%[1]sallocate 1u 100 Scheffler 80/1, McIlroy 50/1`", prefix)
}

// Amount limits. Budgets, purses and payouts outside them cannot be shown to
// the cent.
const (
	MinAmount = 0.01
	MaxAmount = 1e15
)

func inRange(v float64) bool {
	return v >= MinAmount && v <= MaxAmount
}

// Line is one named entry with its odds.
type Line struct {
	Name string
	Odds float64
}

// Request is a parsed allocate command.
type Request struct {
	Units     float64
	UnitValue float64
	Lines     []Line
}

// Budget is the total amount to spread across the lines.
func (r Request) Budget() float64 {
	return r.Units * r.UnitValue
}

// Stake is the computed share for one line.
type Stake struct {
	Line
	Units  float64
	Amount float64
	Payout float64
}

// Plan is the result of Allocate.
type Plan struct {
	Budget    float64
	UnitValue float64
	// Target is the payout every line returns if it wins.
	Target float64
	Stakes []Stake
}

// Allocate splits the budget so every line pays the same target:
// target = budget / Σ(1/odds), stake = target / odds.
func Allocate(req Request) (Plan, error) {
	budget := req.Budget()
	if !inRange(budget) || !inRange(req.UnitValue) {
		return Plan{}, fmt.Errorf("%w: budget must be between %s and %s", ErrMalformed, model.Money(MinAmount), model.Money(MaxAmount))
	}
	if len(req.Lines) == 0 {
		return Plan{}, fmt.Errorf("%w: no lines", ErrMalformed)
	}
	var inverse float64
	for _, l := range req.Lines {
		if !(l.Odds > 0) || math.IsInf(l.Odds, 0) {
			return Plan{}, fmt.Errorf("%w: odds for %s must be positive", ErrMalformed, l.Name)
		}
		inverse += 1 / l.Odds
	}
	if !(inverse > 0) || math.IsInf(inverse, 0) {
		return Plan{}, fmt.Errorf("%w: odds are out of range", ErrMalformed)
	}
	target := budget / inverse
	if !inRange(target) {
		return Plan{}, fmt.Errorf("%w: payout must be between %s and %s", ErrMalformed, model.Money(MinAmount), model.Money(MaxAmount))
	}

	plan := Plan{Budget: budget, UnitValue: req.UnitValue, Target: target}
	for _, l := range req.Lines {
		amount := target / l.Odds
		plan.Stakes = append(plan.Stakes, Stake{
			Line:   l,
			Units:  amount / req.UnitValue,
			Amount: amount,
			Payout: amount * l.Odds,
		})
	}
	return plan, nil
}

// ParseOdds reads fractional odds such as "80/1" or "9/2". A bare number is
// taken as N/1.
func ParseOdds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, found := strings.Cut(s, "/")
	if !found {
		den = "1"
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: odds %q", ErrMalformed, s)
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("%w: odds %q", ErrMalformed, s)
	}
	odds := n / d
	if !(odds > 0) || math.IsInf(odds, 0) || math.IsInf(1/odds, 0) {
		return 0, fmt.Errorf("%w: odds %q must be positive", ErrMalformed, s)
	}
	return odds, nil
}

// ParseRequest reads "<units>[u] <unit value> <name> <N>/1, <name> <N>/1, ...".
func ParseRequest(args string) (Request, error) {
	fields := strings.Fields(args)
	if len(fields) < 4 {
		return Request{}, fmt.Errorf("%w: expected units, unit value and at least one line", ErrMalformed)
	}
	units, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(fields[0]), "u"), 64)
	if err != nil || !(units > 0) || math.IsInf(units, 0) {
		return Request{}, fmt.Errorf("%w: units %q", ErrMalformed, fields[0])
	}
	unitValue, err := model.ParseMoney(fields[1])
	if err != nil || !inRange(unitValue) {
		return Request{}, fmt.Errorf("%w: unit value %q", ErrMalformed, fields[1])
	}

	req := Request{Units: units, UnitValue: unitValue}
	for _, part := range strings.Split(strings.Join(fields[2:], " "), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		cut := strings.LastIndexByte(part, ' ')
		if cut <= 0 {
			return Request{}, fmt.Errorf("%w: line %q needs a name and odds", ErrMalformed, part)
		}
		odds, err := ParseOdds(part[cut+1:])
		if err != nil {
			return Request{}, err
		}
		req.Lines = append(req.Lines, Line{Name: strings.TrimSpace(part[:cut]), Odds: odds})
	}
	if len(req.Lines) == 0 {
		return Request{}, fmt.Errorf("%w: no lines", ErrMalformed)
	}
	return req, nil
}

// Format renders a plan for chat.
func Format(p Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 **Allocation** (%s budget, 1u = %s)\n", model.Money(p.Budget), model.Money(p.UnitValue))
	for _, s := range p.Stakes {
		fmt.Fprintf(&b, "- **%s** (%s/1): %.2fu, %s, pays %s\n",
			s.Name, strconv.FormatFloat(s.Odds, 'f', -1, 64), s.Units, model.Money(s.Amount), model.Money(s.Payout))
	}
	fmt.Fprintf(&b, "Every line returns %s if it wins.", model.Money(p.Target))
	return b.String()
}
