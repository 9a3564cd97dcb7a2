package loan

import "math"

// periodsPerYear maps each compounding period to its annual frequency.
var periodsPerYear = map[CompoundingPeriod]float64{
	CompoundDaily:        365,
	CompoundFortnightly:  26,
	CompoundMonthly:      12,
	CompoundQuarterly:    4,
	CompoundSemiAnnually: 2,
	CompoundAnnually:     1,
}

// Valid reports whether c is a supported compounding period.
func (c CompoundingPeriod) Valid() bool {
	_, ok := periodsPerYear[c]
	return ok
}

// PeriodsPerYear returns the compounding frequency; unknown periods fall back
// to monthly.
func (c CompoundingPeriod) PeriodsPerYear() float64 {
	if n, ok := periodsPerYear[c]; ok {
		return n
	}
	return 12
}

// EffectiveMonthlyRate converts a nominal annual rate (percent) compounded at
// the given frequency into the equivalent monthly decimal rate.
//
//	(1 + (annual/100)/n)^(n/12) - 1
func EffectiveMonthlyRate(annualRatePercent float64, c CompoundingPeriod) float64 {
	if annualRatePercent == 0 {
		return 0
	}
	n := c.PeriodsPerYear()
	if n == 12 {
		return annualRatePercent / 100 / 12
	}
	return math.Pow(1+(annualRatePercent/100)/n, n/12) - 1
}

// NominalAnnualRate is the inverse of EffectiveMonthlyRate: the nominal annual
// rate (percent) that, compounded at c, yields the given monthly rate.
func NominalAnnualRate(monthlyRate float64, c CompoundingPeriod) float64 {
	if monthlyRate == 0 {
		return 0
	}
	n := c.PeriodsPerYear()
	if n == 12 {
		return monthlyRate * 12 * 100
	}
	return n * (math.Pow(1+monthlyRate, 12/n) - 1) * 100
}
