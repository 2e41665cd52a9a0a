package domain

import "time"

// RentalPeriod is the immutable time window of a rental. Overlap checks use
// half-open semantics: the start instant is included, the end instant is not,
// so two periods that merely touch do not overlap.
type RentalPeriod struct {
	start time.Time
	end   time.Time
}

// NewRentalPeriod validates and constructs a rental period.
func NewRentalPeriod(start, end time.Time) (RentalPeriod, error) {
	if start.IsZero() {
		return RentalPeriod{}, NewValidationError("start_date", "is required")
	}
	if end.IsZero() {
		return RentalPeriod{}, NewValidationError("end_date", "is required")
	}
	if !end.After(start) {
		return RentalPeriod{}, NewValidationError("end_date", "must be after start date")
	}
	return RentalPeriod{start: start, end: end}, nil
}

// RestorePeriod rebuilds a period from storage without re-validation.
func RestorePeriod(start, end time.Time) RentalPeriod {
	return RentalPeriod{start: start, end: end}
}

func (p RentalPeriod) Start() time.Time { return p.start }
func (p RentalPeriod) End() time.Time   { return p.end }

// Overlaps reports whether the two half-open periods intersect.
// Touching boundaries (p.end == other.start) do not count as overlap.
func (p RentalPeriod) Overlaps(other RentalPeriod) bool {
	return p.start.Before(other.end) && other.start.Before(p.end)
}

// Days returns the length of the period in truncated whole days.
// A period of 13 days and 20 hours counts as 13 days.
func (p RentalPeriod) Days() int64 {
	return int64(p.end.Sub(p.start) / (24 * time.Hour))
}
