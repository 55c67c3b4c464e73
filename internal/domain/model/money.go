package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Money renders v as dollars with cents, e.g. "$1,234.50" or "-$20.00".
func Money(v float64) string {
	return signed(v, "#,###.##")
}

// WholeMoney renders v as whole dollars, e.g. "$20,000,000".
func WholeMoney(v float64) string {
	return signed(v, "#,###.")
}

func signed(v float64, pattern string) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat(pattern, math.Abs(v))
	}
	return "$" + humanize.FormatFloat(pattern, v)
}

// ParseMoney reads a currency or plain number such as "$1,234.50", "1 234",
// "-$20" or the accounting form "(1,234)", which is negative.
func ParseMoney(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		negative = true
		clean = clean[1 : len(clean)-1]
	}
	clean = moneyNoise.Replace(clean)
	if clean == "" {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	if negative {
		v = -math.Abs(v)
	}
	return v, nil
}

var moneyNoise = strings.NewReplacer("$", "", ",", "", " ", "", "\u00a0", "")

// ErrNotANumber is returned by ParseMoney.
var ErrNotANumber = errors.New("not a number")
