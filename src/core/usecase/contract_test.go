package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/src/core/domain"
	"carrental/src/core/ports"
)

type repoMock struct {
	createFn          func(ctx context.Context, c *domain.Contract) (*domain.Contract, error)
	updateFn          func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error)
	getByIDFn         func(ctx context.Context, id domain.ContractID) (*domain.Contract, error)
	getForClientFn    func(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error)
	listByClientFn    func(ctx context.Context, clientID domain.ClientID, limit, offset int) (*ports.ContractPage, error)
	findOverlappingFn func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error)
	listActiveFn      func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod) ([]domain.Contract, error)
	dueActivationFn   func(ctx context.Context, now time.Time) ([]domain.Contract, error)
	dueCompletionFn   func(ctx context.Context, now time.Time) ([]domain.Contract, error)
}

func (m *repoMock) Health(ctx context.Context) error { return nil }
func (m *repoMock) Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
	return m.createFn(ctx, c)
}
func (m *repoMock) Update(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
	return m.updateFn(ctx, c, from)
}
func (m *repoMock) GetByID(ctx context.Context, id domain.ContractID) (*domain.Contract, error) {
	return m.getByIDFn(ctx, id)
}
func (m *repoMock) GetByIDForClient(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
	return m.getForClientFn(ctx, id, clientID)
}
func (m *repoMock) ListByClient(ctx context.Context, clientID domain.ClientID, limit, offset int) (*ports.ContractPage, error) {
	return m.listByClientFn(ctx, clientID, limit, offset)
}
func (m *repoMock) FindOverlapping(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error) {
	return m.findOverlappingFn(ctx, carID, period, excludeID)
}
func (m *repoMock) ListActiveForCarInPeriod(ctx context.Context, carID domain.CarID, period domain.RentalPeriod) ([]domain.Contract, error) {
	return m.listActiveFn(ctx, carID, period)
}
func (m *repoMock) ListDueForActivation(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	return m.dueActivationFn(ctx, now)
}
func (m *repoMock) ListDueForCompletion(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	return m.dueCompletionFn(ctx, now)
}

type identityMock struct {
	active   bool
	verified bool
	err      error
}

func (m *identityMock) IsClientActive(ctx context.Context, id domain.ClientID) (bool, error) {
	return m.active, m.err
}
func (m *identityMock) IsClientVerified(ctx context.Context, id domain.ClientID) (bool, error) {
	return m.verified, m.err
}
func (m *identityMock) GetClientEmail(ctx context.Context, id domain.ClientID) (string, error) {
	return "client@example.com", m.err
}

type fleetMock struct {
	getCarFn func(ctx context.Context, id domain.CarID) (*ports.Car, error)
}

func (m *fleetMock) GetCar(ctx context.Context, id domain.CarID) (*ports.Car, error) {
	return m.getCarFn(ctx, id)
}

var testNow = time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *repoMock, identity *identityMock, fleet *fleetMock) *ContractService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := NewContractService(repo, identity, fleet, log)
	s.now = func() time.Time { return testNow }
	return s
}

func eligibleIdentity() *identityMock { return &identityMock{active: true, verified: true} }

func carAt(t *testing.T, dailyRate string) *fleetMock {
	t.Helper()
	rate, err := domain.NewMoneyFromString(dailyRate)
	require.NoError(t, err)
	return &fleetMock{
		getCarFn: func(ctx context.Context, id domain.CarID) (*ports.Car, error) {
			return &ports.Car{ID: id, DailyRate: rate}, nil
		},
	}
}

func money(t *testing.T, s string) domain.Money {
	t.Helper()
	m, err := domain.NewMoneyFromString(s)
	require.NoError(t, err)
	return m
}

func restored(id domain.ContractID, status domain.ContractStatus, start, end time.Time) domain.Contract {
	return *domain.Restore(id, 1, 2, start, end, domain.Money{}, status, "")
}

func TestCreate_Success(t *testing.T) {
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)

	repo := &repoMock{
		findOverlappingFn: func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error) {
			assert.Equal(t, domain.ContractID(0), excludeID)
			return nil, nil
		},
		createFn: func(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
			assert.Equal(t, domain.ContractPending, c.Status())
			assert.False(t, c.Persisted())
			assert.Equal(t, "700", c.TotalCost().String())
			return domain.Restore(42, c.ClientID(), c.CarID(), start, end, c.TotalCost(), c.Status(), ""), nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	contract, err := s.Create(context.Background(), 1, 2, start, end)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractID(42), contract.ID())
	assert.True(t, contract.Persisted())
}

func TestCreate_InvalidPeriod(t *testing.T) {
	s := newTestService(&repoMock{}, eligibleIdentity(), carAt(t, "50"))

	start := time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC)
	_, err := s.Create(context.Background(), 1, 2, start, start)
	assert.True(t, domain.IsValidationError(err))
}

func TestCreate_PastPeriod(t *testing.T) {
	repo := &repoMock{
		findOverlappingFn: func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error) {
			return nil, nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	start := testNow.Add(-48 * time.Hour)
	_, err := s.Create(context.Background(), 1, 2, start, start.Add(96*time.Hour))
	assert.True(t, domain.IsValidationError(err))
}

func TestCreate_ClientNotEligible(t *testing.T) {
	cases := map[string]*identityMock{
		"inactive":   {active: false, verified: true},
		"unverified": {active: true, verified: false},
	}
	for name, identity := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestService(&repoMock{}, identity, carAt(t, "50"))

			start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
			_, err := s.Create(context.Background(), 1, 2, start, start.Add(24*time.Hour))
			assert.True(t, domain.IsForbidden(err))
		})
	}
}

func TestCreate_CarNotFound(t *testing.T) {
	fleet := &fleetMock{
		getCarFn: func(ctx context.Context, id domain.CarID) (*ports.Car, error) {
			return nil, domain.NewNotFoundError("car")
		},
	}
	s := newTestService(&repoMock{}, eligibleIdentity(), fleet)

	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.Create(context.Background(), 1, 2, start, start.Add(24*time.Hour))
	assert.True(t, domain.IsNotFound(err))
}

func TestCreate_BookingConflict(t *testing.T) {
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)

	repo := &repoMock{
		findOverlappingFn: func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error) {
			existing := restored(7, domain.ContractConfirmed, start, end)
			return []domain.Contract{existing}, nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	_, err := s.Create(context.Background(), 1, 2, start.Add(96*time.Hour), end.Add(120*time.Hour))
	assert.True(t, domain.IsConflict(err))
}

func TestConfirm(t *testing.T) {
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(14 * 24 * time.Hour)

	t.Run("success", func(t *testing.T) {
		pending := restored(9, domain.ContractPending, start, end)
		repo := &repoMock{
			getForClientFn: func(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
				return &pending, nil
			},
			updateFn: func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
				assert.Equal(t, domain.ContractPending, from)
				assert.Equal(t, domain.ContractConfirmed, c.Status())
				return true, nil
			},
		}
		s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

		contract, err := s.Confirm(context.Background(), 1, 9)
		require.NoError(t, err)
		assert.Equal(t, domain.ContractConfirmed, contract.Status())
	})

	t.Run("already confirmed", func(t *testing.T) {
		confirmed := restored(9, domain.ContractConfirmed, start, end)
		repo := &repoMock{
			getForClientFn: func(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
				return &confirmed, nil
			},
		}
		s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

		_, err := s.Confirm(context.Background(), 1, 9)
		assert.True(t, domain.IsInvalidTransition(err))
	})

	t.Run("lost concurrent update", func(t *testing.T) {
		pending := restored(9, domain.ContractPending, start, end)
		repo := &repoMock{
			getForClientFn: func(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
				return &pending, nil
			},
			updateFn: func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
				return false, nil
			},
		}
		s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

		_, err := s.Confirm(context.Background(), 1, 9)
		assert.True(t, domain.IsConflict(err))
	})
}

func TestCancel_FeeWindow(t *testing.T) {
	cancelAt := func(t *testing.T, startsIn time.Duration) *CancelResult {
		t.Helper()
		start := testNow.Add(startsIn)
		confirmed := restored(9, domain.ContractConfirmed, start, start.Add(48*time.Hour))
		repo := &repoMock{
			getForClientFn: func(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
				return &confirmed, nil
			},
			updateFn: func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
				assert.Equal(t, domain.ContractCancelled, c.Status())
				assert.Equal(t, "no longer needed", c.Comment())
				return true, nil
			},
		}
		s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

		result, err := s.Cancel(context.Background(), 1, 9, "no longer needed")
		require.NoError(t, err)
		return result
	}

	assert.False(t, cancelAt(t, 5*24*time.Hour).FeeFree, "exactly five days out pays the fee")
	assert.True(t, cancelAt(t, 6*24*time.Hour).FeeFree)
}

func TestCancel_ActiveContract(t *testing.T) {
	start := testNow.Add(-24 * time.Hour)
	active := restored(9, domain.ContractActive, start, start.Add(96*time.Hour))
	repo := &repoMock{
		getForClientFn: func(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
			return &active, nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	_, err := s.Cancel(context.Background(), 1, 9, "too late")
	assert.True(t, domain.IsInvalidTransition(err))
}

func TestActivateDueContracts_PartialFailure(t *testing.T) {
	start := testNow.Add(-time.Minute)
	end := start.Add(14 * 24 * time.Hour)

	due := []domain.Contract{
		restored(1, domain.ContractConfirmed, start, end),
		restored(2, domain.ContractConfirmed, start, end),
		restored(3, domain.ContractConfirmed, start, end),
	}
	repo := &repoMock{
		dueActivationFn: func(ctx context.Context, now time.Time) ([]domain.Contract, error) {
			return due, nil
		},
		updateFn: func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
			assert.Equal(t, domain.ContractConfirmed, from)
			assert.Equal(t, domain.ContractActive, c.Status())
			if c.ID() == 2 {
				return false, errors.New("connection reset")
			}
			return true, nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	res, err := s.ActivateDueContracts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed, "failure on one contract must not abort the rest")
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 0, res.Skipped)
}

func TestActivateDueContracts_SkipsConcurrentlyTransitioned(t *testing.T) {
	start := testNow.Add(-time.Minute)
	end := start.Add(14 * 24 * time.Hour)

	due := []domain.Contract{
		// Already activated by another run between the query and this sweep.
		restored(1, domain.ContractActive, start, end),
		// Cancelled in the meantime; activation does not apply.
		restored(2, domain.ContractCancelled, start, end),
	}
	updates := 0
	repo := &repoMock{
		dueActivationFn: func(ctx context.Context, now time.Time) ([]domain.Contract, error) {
			return due, nil
		},
		updateFn: func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
			updates++
			return false, nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	res, err := s.ActivateDueContracts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 1, updates, "a contract in a non-activatable state must not be written at all")
}

func TestCompleteDueContracts(t *testing.T) {
	start := testNow.Add(-14 * 24 * time.Hour)
	end := testNow.Add(-time.Hour)

	due := []domain.Contract{restored(5, domain.ContractActive, start, end)}
	repo := &repoMock{
		dueCompletionFn: func(ctx context.Context, now time.Time) ([]domain.Contract, error) {
			return due, nil
		},
		updateFn: func(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
			assert.Equal(t, domain.ContractActive, from)
			assert.Equal(t, domain.ContractCompleted, c.Status())
			return true, nil
		},
	}
	s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

	res, err := s.CompleteDueContracts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
}

func TestCarAvailable(t *testing.T) {
	start := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(5 * 24 * time.Hour)

	t.Run("free", func(t *testing.T) {
		repo := &repoMock{
			listActiveFn: func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod) ([]domain.Contract, error) {
				return nil, nil
			},
		}
		s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

		available, err := s.CarAvailable(context.Background(), 2, start, end)
		require.NoError(t, err)
		assert.True(t, available)
	})

	t.Run("taken", func(t *testing.T) {
		repo := &repoMock{
			listActiveFn: func(ctx context.Context, carID domain.CarID, period domain.RentalPeriod) ([]domain.Contract, error) {
				taken := restored(3, domain.ContractActive, start, end)
				return []domain.Contract{taken}, nil
			},
		}
		s := newTestService(repo, eligibleIdentity(), carAt(t, "50"))

		available, err := s.CarAvailable(context.Background(), 2, start, end)
		require.NoError(t, err)
		assert.False(t, available)
	})
}
