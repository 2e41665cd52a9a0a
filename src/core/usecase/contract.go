package usecase

import (
	"context"
	"log/slog"
	"time"

	"carrental/src/core/domain"
	"carrental/src/core/ports"
)

// ContractService orchestrates rental contract creation and lifecycle. It
// validates clients and cars through the identity and fleet ports, delegates
// business rules to the aggregate, and persists through the repository.
type ContractService struct {
	repo     ports.ContractRepository
	identity ports.IdentityService
	fleet    ports.FleetService
	log      *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

func NewContractService(repo ports.ContractRepository, identity ports.IdentityService, fleet ports.FleetService, log *slog.Logger) *ContractService {
	return &ContractService{
		repo:     repo,
		identity: identity,
		fleet:    fleet,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create books a car for a client over the given period. The client must be
// active and verified, the car must exist, and no CONFIRMED or ACTIVE contract
// for the same car may overlap the period. The repository runs the final
// overlap check and the insert atomically, so two concurrent requests for
// overlapping periods cannot both succeed.
func (s *ContractService) Create(ctx context.Context, clientID domain.ClientID, carID domain.CarID, start, end time.Time) (*domain.Contract, error) {
	period, err := domain.NewRentalPeriod(start, end)
	if err != nil {
		return nil, err
	}

	active, err := s.identity.IsClientActive(ctx, clientID)
	if err != nil {
		return nil, err
	}
	verified, err := s.identity.IsClientVerified(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !active || !verified {
		return nil, domain.NewForbiddenError("client is not eligible to rent")
	}

	car, err := s.fleet.GetCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	// Fast pre-check; the repository re-checks inside the insert transaction.
	overlapping, err := s.repo.FindOverlapping(ctx, carID, period, 0)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return nil, domain.NewConflictError("car is already booked for an overlapping period")
	}

	contract, err := domain.NewContract(clientID, carID, period, car.DailyRate, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, contract)
	if err != nil {
		return nil, err
	}

	s.log.Info("contract created",
		"contract_id", created.ID(),
		"client_id", clientID,
		"car_id", carID,
		"total_cost", created.TotalCost().String(),
	)
	return created, nil
}

// Get returns a contract owned by the given client.
func (s *ContractService) Get(ctx context.Context, clientID domain.ClientID, id domain.ContractID) (*domain.Contract, error) {
	return s.repo.GetByIDForClient(ctx, id, clientID)
}

// ListByClient returns a page of the client's contracts.
func (s *ContractService) ListByClient(ctx context.Context, clientID domain.ClientID, limit, offset int) (*ports.ContractPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}

// Confirm moves the client's PENDING contract to CONFIRMED.
func (s *ContractService) Confirm(ctx context.Context, clientID domain.ClientID, id domain.ContractID) (*domain.Contract, error) {
	contract, err := s.repo.GetByIDForClient(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	from := contract.Status()
	if err := contract.Confirm(); err != nil {
		return nil, err
	}
	ok, err := s.repo.Update(ctx, contract, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewConflictError("contract was modified concurrently")
	}
	return contract, nil
}

// CancelResult reports a cancellation and whether it fell inside the free
// cancellation window.
type CancelResult struct {
	Contract *domain.Contract
	FeeFree  bool
}

// Cancel moves the client's PENDING or CONFIRMED contract to CANCELLED,
// recording the reason.
func (s *ContractService) Cancel(ctx context.Context, clientID domain.ClientID, id domain.ContractID, reason string) (*CancelResult, error) {
	contract, err := s.repo.GetByIDForClient(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	feeFree := domain.CanCancelWithoutFee(contract, s.now())
	from := contract.Status()
	if err := contract.Cancel(reason); err != nil {
		return nil, err
	}
	ok, err := s.repo.Update(ctx, contract, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewConflictError("contract was modified concurrently")
	}
	s.log.Info("contract cancelled",
		"contract_id", id,
		"client_id", clientID,
		"fee_free", feeFree,
	)
	return &CancelResult{Contract: contract, FeeFree: feeFree}, nil
}

// CarAvailable reports whether the car has no ACTIVE contract overlapping the
// period. Consumed by the fleet context for availability checks.
func (s *ContractService) CarAvailable(ctx context.Context, carID domain.CarID, start, end time.Time) (bool, error) {
	period, err := domain.NewRentalPeriod(start, end)
	if err != nil {
		return false, err
	}
	contracts, err := s.repo.ListActiveForCarInPeriod(ctx, carID, period)
	if err != nil {
		return false, err
	}
	return len(contracts) == 0, nil
}

// BulkResult summarizes one scheduled transition sweep. Skipped counts
// contracts another writer transitioned between the query and the update.
type BulkResult struct {
	Processed int
	Skipped   int
	Failed    int
}

// ActivateDueContracts activates every CONFIRMED contract whose start date has
// arrived. A failure on one contract is recorded and does not abort the rest,
// and re-running finds nothing left to do for already-activated contracts.
func (s *ContractService) ActivateDueContracts(ctx context.Context) (BulkResult, error) {
	due, err := s.repo.ListDueForActivation(ctx, s.now())
	if err != nil {
		return BulkResult{}, err
	}
	return s.transitionAll(ctx, due, domain.ContractConfirmed, (*domain.Contract).Activate, "activate"), nil
}

// CompleteDueContracts completes every ACTIVE contract whose end date has
// passed, with the same partial-failure semantics as activation.
func (s *ContractService) CompleteDueContracts(ctx context.Context) (BulkResult, error) {
	due, err := s.repo.ListDueForCompletion(ctx, s.now())
	if err != nil {
		return BulkResult{}, err
	}
	return s.transitionAll(ctx, due, domain.ContractActive, (*domain.Contract).Complete, "complete"), nil
}

func (s *ContractService) transitionAll(ctx context.Context, contracts []domain.Contract, from domain.ContractStatus, transition func(*domain.Contract) error, op string) BulkResult {
	var res BulkResult
	for i := range contracts {
		c := &contracts[i]
		if err := transition(c); err != nil {
			// Another path moved the contract to a state the query no longer
			// matches; nothing to do for it.
			res.Skipped++
			continue
		}
		ok, err := s.repo.Update(ctx, c, from)
		switch {
		case err != nil:
			res.Failed++
			s.log.Error("scheduled transition failed",
				"op", op,
				"contract_id", c.ID(),
				"error", err,
			)
		case !ok:
			res.Skipped++
		default:
			res.Processed++
		}
	}
	return res
}
