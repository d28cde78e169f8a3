// Package estimator implements the SEAI EV grant estimate: a tiered price
// lookup plus the input state that drives the interactive calculator.
package estimator

import (
	"fmt"
	"math"
	"strconv"
)

// Tier is one row of the grant ladder: a vehicle priced at or above MinPrice
// attracts Grant euro.
type Tier struct {
	MinPrice int `json:"min_price"`
	Grant    int `json:"grant"`
}

// tiers is ordered from the highest threshold down. The first match wins.
var tiers = []Tier{
	{MinPrice: 50000, Grant: 5000},
	{MinPrice: 40000, Grant: 4000},
	{MinPrice: 30000, Grant: 3500},
	{MinPrice: 25000, Grant: 3000},
	{MinPrice: 20000, Grant: 2500},
	{MinPrice: 15000, Grant: 2000},
	{MinPrice: 10000, Grant: 1500},
}

// Tiers returns a copy of the grant ladder, highest threshold first.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor returns the tier applied to price. ok is false below the lowest threshold.
func TierFor(price float64) (Tier, bool) {
	for _, t := range tiers {
		if price >= float64(t.MinPrice) {
			return t, true
		}
	}
	return Tier{}, false
}

// EstimateGrant returns the grant in whole euro for a vehicle price.
// It is total: prices below the lowest threshold, negative prices and NaN all yield 0.
func EstimateGrant(price float64) int {
	t, ok := TierFor(price)
	if !ok {
		return 0
	}
	return t.Grant
}

// FinalPrice is the price after the grant, floored at zero.
func FinalPrice(price float64) float64 {
	final := price - float64(EstimateGrant(price))
	if final < 0 {
		return 0
	}
	return final
}

// MaxGrant is the largest amount any tier pays.
func MaxGrant() int {
	max := 0
	for _, t := range tiers {
		if t.Grant > max {
			max = t.Grant
		}
	}
	return max
}

// FormatEuro renders an amount as "€35,000" (or "€35,000.50" when there are cents).
func FormatEuro(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	frac := cents % 100

	s := groupThousands(strconv.FormatInt(whole, 10))
	if frac > 0 {
		s += fmt.Sprintf(".%02d", frac)
	}
	if neg {
		return "-€" + s
	}
	return "€" + s
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	return groupThousands(s[:n-3]) + "," + s[n-3:]
}
