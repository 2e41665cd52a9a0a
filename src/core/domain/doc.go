// Package domain contains the core rental domain model.
//
// This package defines:
//   - Contract: the aggregate root for one rental, owning its lifecycle
//   - RentalPeriod, Money: immutable value objects
//   - Pure rental computations (cost, cancellation-fee eligibility)
//   - Domain errors for business rule violations
//
// Rules for this package:
//   - No infrastructure concerns (database, HTTP, scheduling)
//   - State changes go through the aggregate's transition methods only
//   - Value objects are immutable once constructed
package domain
