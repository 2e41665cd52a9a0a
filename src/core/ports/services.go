package ports

import (
	"context"

	"carrental/src/core/domain"
)

// IdentityService is the consumed port onto the client-identity context. The
// rental core only needs eligibility checks and a contact address; everything
// else about clients stays behind this boundary.
type IdentityService interface {
	IsClientVerified(ctx context.Context, id domain.ClientID) (bool, error)
	IsClientActive(ctx context.Context, id domain.ClientID) (bool, error)
	GetClientEmail(ctx context.Context, id domain.ClientID) (string, error)
}

// Car is the slice of fleet data the rental core needs.
type Car struct {
	ID        domain.CarID
	DailyRate domain.Money
}

// FleetService is the consumed port onto the vehicle fleet context.
type FleetService interface {
	// GetCar returns the car's rental data, or a not-found error if the car
	// does not exist.
	GetCar(ctx context.Context, id domain.CarID) (*Car, error)
}
