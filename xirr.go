package finance

import (
	"math"

	"github.com/etnz/finance/date"
)

// CashFlow is a dated amount in an investment's cash flow series.
//
// Money put into the investment (buys) is positive, money taken out (sells,
// and the final market value) is negative.
type CashFlow struct {
	Date   date.Date
	Amount Money
}

const (
	xirrSeed          = 0.1
	xirrMaxIterations = 100
	xirrTolerance     = 1e-7
	xirrFlatSlope     = 1e-10
	xirrMinRate       = -0.99
	xirrMaxRate       = 10.0
	daysPerYear       = 365.25
)

// XIRR returns the annualized money-weighted return of flows, as a percentage
// rounded to two decimals.
//
// It solves Σ amount / (1+r)^(days/365.25) = 0 with Newton-Raphson seeded at
// 10%, days being counted from the earliest flow. ok is false when there is no
// result: fewer than two flows, flows all of the same sign, a flat derivative,
// no convergence within 100 iterations, or a non finite rate. Those series
// have no reliable root and no fallback is attempted.
func XIRR(flows []CashFlow) (p Percent, ok bool) {
	if len(flows) < 2 {
		return 0, false
	}
	var pos, neg bool
	origin := flows[0].Date
	for _, f := range flows {
		pos = pos || f.Amount.IsPositive()
		neg = neg || f.Amount.IsNegative()
		if f.Date.Before(origin) {
			origin = f.Date
		}
	}
	if !pos || !neg {
		return 0, false
	}

	amounts := make([]float64, len(flows))
	years := make([]float64, len(flows))
	for i, f := range flows {
		amounts[i] = f.Amount.Float64()
		years[i] = float64(f.Date.Sub(origin)) / daysPerYear
	}

	rate := xirrSeed
	for range xirrMaxIterations {
		var npv, slope float64
		for i, a := range amounts {
			t := years[i]
			npv += a / math.Pow(1+rate, t)
			slope -= t * a / math.Pow(1+rate, t+1)
		}
		// a derivative below xirrFlatSlope stops the search with no result, even
		// when the current rate is close to a root.
		if math.Abs(slope) < xirrFlatSlope {
			return 0, false
		}
		next := rate - npv/slope
		converged := math.Abs(next-rate) < xirrTolerance
		rate = min(max(next, xirrMinRate), xirrMaxRate)
		if converged {
			if math.IsNaN(rate) || math.IsInf(rate, 0) {
				return 0, false
			}
			return Percent(rate * 100).Round(), true
		}
	}
	return 0, false
}
