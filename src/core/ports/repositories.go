// Package ports defines interfaces (ports) that connect the core domain to
// infrastructure, following the ports and adapters (hexagonal) pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra. This keeps the rental core free of any dependency on
// storage or the identity/fleet contexts it collaborates with.
package ports

import (
	"context"
	"time"

	"carrental/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// ContractPage is one page of a client's contract history.
type ContractPage struct {
	Contracts []domain.Contract
	Total     int64
}

// ContractRepository is the persistence port for rental contracts.
type ContractRepository interface {
	Repository

	// Create persists a new contract and returns it with the id storage
	// assigned. The overlap check against blocking contracts for the same car
	// and the insert must run as one atomic unit; a conflicting contract
	// yields a conflict error and nothing is written.
	Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error)

	// Update writes the contract's status and comment, guarded by the status
	// the caller loaded it with. Returns false (and no error) when another
	// writer transitioned the contract first.
	Update(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error)

	GetByID(ctx context.Context, id domain.ContractID) (*domain.Contract, error)

	// GetByIDForClient is the ownership-scoped lookup: it only returns the
	// contract if it belongs to the given client.
	GetByIDForClient(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error)

	ListByClient(ctx context.Context, clientID domain.ClientID, limit, offset int) (*ContractPage, error)

	// FindOverlapping returns contracts for carID whose period overlaps the
	// given one and whose status blocks the car (CONFIRMED or ACTIVE),
	// excluding excludeID. Pass zero to check a brand-new contract.
	FindOverlapping(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error)

	// ListActiveForCarInPeriod serves fleet availability checks.
	ListActiveForCarInPeriod(ctx context.Context, carID domain.CarID, period domain.RentalPeriod) ([]domain.Contract, error)

	// ListDueForActivation returns CONFIRMED contracts whose start has arrived.
	ListDueForActivation(ctx context.Context, now time.Time) ([]domain.Contract, error)

	// ListDueForCompletion returns ACTIVE contracts whose end has passed.
	ListDueForCompletion(ctx context.Context, now time.Time) ([]domain.Contract, error)
}
