package domain

import "time"

// FreeCancellationDays is how many whole days before the rental start a
// contract must be for cancellation to carry no fee.
const FreeCancellationDays = 5

// CalculateTotalCost prices a rental as dailyRate multiplied by the truncated
// whole-day duration. Duration policy is truncation, not rounding: a period of
// 13 days and 20 hours is billed as 13 days.
func CalculateTotalCost(dailyRate Money, days int64) Money {
	return dailyRate.MulDays(days)
}

// CanCancelWithoutFee reports whether cancelling the contract now avoids the
// cancellation fee. The start must be strictly more than FreeCancellationDays
// truncated whole days away; exactly five days out does not qualify.
func CanCancelWithoutFee(c *Contract, now time.Time) bool {
	daysUntilStart := int64(c.Period().Start().Sub(now) / (24 * time.Hour))
	return daysUntilStart > FreeCancellationDays
}
