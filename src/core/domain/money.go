package domain

import "github.com/shopspring/decimal"

// Money is a non-negative monetary amount. The currency is implicit; all
// amounts in the system share the same unit. Arithmetic goes through
// decimal.Decimal so multi-day cost calculations never drift the way
// float math would.
type Money struct {
	amount decimal.Decimal
}

// NewMoney constructs a Money value, rejecting negative amounts.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, NewValidationError("amount", "must not be negative")
	}
	return Money{amount: amount}, nil
}

// NewMoneyFromString parses a decimal string such as "49.90".
func NewMoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, NewValidationError("amount", "is not a valid decimal")
	}
	return NewMoney(d)
}

// RestoreMoney rebuilds a Money value from storage without re-validation.
func RestoreMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

func (m Money) Amount() decimal.Decimal { return m.amount }

// MulDays multiplies the amount by a whole number of days.
func (m Money) MulDays(days int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(days))}
}

func (m Money) Equal(other Money) bool { return m.amount.Equal(other.amount) }

func (m Money) String() string { return m.amount.String() }
