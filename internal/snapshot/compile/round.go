package compile

import (
	"math"
	"sort"
)

// Rounding happens only at the output boundary; intermediate accumulation
// stays unrounded so dependent metrics do not compound rounding error.

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundPct(numerator, denominator float64) int {
	if denominator <= 0 {
		return 0
	}
	return int(math.Round(numerator / denominator * 100))
}

// allocatePercentages converts shares of total into integer percentages
// whose sum never exceeds 100. Rounding each share independently can push
// the sum above 100 on half-way fractions, so each share is floored and
// the leftover points go to the largest fractional parts.
func allocatePercentages(shares []float64, total float64) []int {
	pcts := make([]int, len(shares))
	if total <= 0 {
		return pcts
	}

	type remainder struct {
		idx  int
		frac float64
	}
	remainders := make([]remainder, 0, len(shares))
	allocated := 0
	var exactSum float64
	for i, share := range shares {
		exact := share / total * 100
		if exact < 0 {
			exact = 0
		}
		floor := int(exact)
		pcts[i] = floor
		allocated += floor
		exactSum += exact
		remainders = append(remainders, remainder{idx: i, frac: exact - float64(floor)})
	}

	budget := int(math.Round(exactSum))
	if budget > 100 {
		budget = 100
	}
	sort.SliceStable(remainders, func(a, b int) bool { return remainders[a].frac > remainders[b].frac })
	for _, r := range remainders {
		if allocated >= budget {
			break
		}
		pcts[r.idx]++
		allocated++
	}
	return pcts
}

// ratioPct returns numerator/denominator as a percentage rounded to one
// decimal, or 0 when the denominator is zero. Guards against NaN/Inf.
func ratioPct(numerator, denominator float64) float64 {
	if denominator <= 0 {
		return 0
	}
	return round1(numerator / denominator * 100)
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
