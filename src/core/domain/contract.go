package domain

import "time"

// ContractID identifies a persisted contract. Zero means the contract has not
// been saved yet; storage assigns the id on first insert.
type ContractID int64

// ClientID references a client in the identity context.
type ClientID int64

// CarID references a vehicle in the fleet context.
type CarID int64

// ContractStatus represents the lifecycle state of a rental contract.
type ContractStatus string

const (
	ContractPending   ContractStatus = "PENDING"
	ContractConfirmed ContractStatus = "CONFIRMED"
	ContractActive    ContractStatus = "ACTIVE"
	ContractCompleted ContractStatus = "COMPLETED"
	ContractCancelled ContractStatus = "CANCELLED"
)

// Blocks reports whether a contract in this status denies the car to other
// overlapping rentals. PENDING contracts never block: an unconfirmed request
// must not hold the car.
func (s ContractStatus) Blocks() bool {
	return s == ContractConfirmed || s == ContractActive
}

// Contract is the aggregate root for one rental. It references client and car
// by id only, and all state changes go through the transition methods so the
// lifecycle invariant cannot be bypassed from outside the aggregate.
type Contract struct {
	id        ContractID
	clientID  ClientID
	carID     CarID
	period    RentalPeriod
	totalCost Money
	status    ContractStatus
	comment   string
}

// NewContract creates a PENDING contract for the given period. The total cost
// is fixed at creation from the car's daily rate and never recomputed.
// Periods starting in the past are rejected.
func NewContract(clientID ClientID, carID CarID, period RentalPeriod, dailyRate Money, now time.Time) (*Contract, error) {
	if clientID <= 0 {
		return nil, NewValidationError("client_id", "is required")
	}
	if carID <= 0 {
		return nil, NewValidationError("car_id", "is required")
	}
	if period.Start().Before(now) {
		return nil, NewValidationError("start_date", "must not be in the past")
	}
	return &Contract{
		clientID:  clientID,
		carID:     carID,
		period:    period,
		totalCost: CalculateTotalCost(dailyRate, period.Days()),
		status:    ContractPending,
	}, nil
}

// Restore rebuilds a contract from a trusted source (storage) without
// re-running business validation.
func Restore(id ContractID, clientID ClientID, carID CarID, start, end time.Time, totalCost Money, status ContractStatus, comment string) *Contract {
	return &Contract{
		id:        id,
		clientID:  clientID,
		carID:     carID,
		period:    RestorePeriod(start, end),
		totalCost: totalCost,
		status:    status,
		comment:   comment,
	}
}

func (c *Contract) ID() ContractID         { return c.id }
func (c *Contract) ClientID() ClientID     { return c.clientID }
func (c *Contract) CarID() CarID           { return c.carID }
func (c *Contract) Period() RentalPeriod   { return c.period }
func (c *Contract) TotalCost() Money       { return c.totalCost }
func (c *Contract) Status() ContractStatus { return c.status }
func (c *Contract) Comment() string        { return c.comment }

// Persisted reports whether storage has assigned an id yet.
func (c *Contract) Persisted() bool { return c.id != 0 }

// IsFor reports whether the contract references the given client and car.
func (c *Contract) IsFor(clientID ClientID, carID CarID) bool {
	return c.clientID == clientID && c.carID == carID
}

// Confirm moves a PENDING contract to CONFIRMED.
func (c *Contract) Confirm() error {
	if c.status != ContractPending {
		return NewTransitionError(c.status, ContractConfirmed)
	}
	c.status = ContractConfirmed
	return nil
}

// Activate moves a CONFIRMED contract to ACTIVE. Activating an already ACTIVE
// contract is a no-op so scheduler re-runs stay safe.
func (c *Contract) Activate() error {
	if c.status == ContractActive {
		return nil
	}
	if c.status != ContractConfirmed {
		return NewTransitionError(c.status, ContractActive)
	}
	c.status = ContractActive
	return nil
}

// Complete moves an ACTIVE contract to COMPLETED, idempotently.
func (c *Contract) Complete() error {
	if c.status == ContractCompleted {
		return nil
	}
	if c.status != ContractActive {
		return NewTransitionError(c.status, ContractCompleted)
	}
	c.status = ContractCompleted
	return nil
}

// Cancel moves a PENDING or CONFIRMED contract to CANCELLED, recording the
// reason. Contracts that already started (or ended) cannot be cancelled.
func (c *Contract) Cancel(reason string) error {
	if c.status != ContractPending && c.status != ContractConfirmed {
		return NewTransitionError(c.status, ContractCancelled)
	}
	c.status = ContractCancelled
	c.comment = reason
	return nil
}
