package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"carrental/src/core/domain"
	"carrental/src/core/ports"
	"carrental/src/infra/db"
)

// PostgresRepository implements ports.ContractRepository using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgresRepository constructs a repository backed by Postgres.
func NewPostgresRepository(pg *db.Postgres, log *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		pool: pg.Pool,
		log:  log,
	}
}

var _ ports.ContractRepository = (*PostgresRepository)(nil)

func (r *PostgresRepository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// isExclusionViolation matches the btree_gist constraint that rejects
// overlapping blocking contracts for the same car.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01"
	}
	return false
}

const contractColumns = `contract_id, client_id, car_id, start_date, end_date, total_cost::text, status, comment`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContract(row rowScanner) (*domain.Contract, error) {
	var (
		id       int64
		clientID int64
		carID    int64
		start    time.Time
		end      time.Time
		cost     string
		status   string
		comment  *string
	)
	if err := row.Scan(&id, &clientID, &carID, &start, &end, &cost, &status, &comment); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored total_cost %q: %w", cost, err)
	}
	var c string
	if comment != nil {
		c = *comment
	}
	return domain.Restore(
		domain.ContractID(id),
		domain.ClientID(clientID),
		domain.CarID(carID),
		start, end,
		domain.RestoreMoney(amount),
		domain.ContractStatus(status),
		c,
	), nil
}

func (r *PostgresRepository) queryContracts(ctx context.Context, q string, args ...any) ([]domain.Contract, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Create inserts a new contract after re-checking for overlapping blocking
// contracts inside one transaction. A per-car advisory lock serializes
// concurrent creations for the same car, and the table's exclusion constraint
// backstops the check at the storage level.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Contract) (*domain.Contract, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, domain.NewUnavailableError(err.Error())
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(c.CarID())); err != nil {
		return nil, err
	}

	const overlapQ = `
		SELECT count(*)
		FROM contracts
		WHERE car_id = $1
		  AND status IN ('CONFIRMED', 'ACTIVE')
		  AND start_date < $3
		  AND end_date > $2
	`
	var n int
	if err := tx.QueryRow(ctx, overlapQ, c.CarID(), c.Period().Start(), c.Period().End()).Scan(&n); err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.NewConflictError("car is already booked for an overlapping period")
	}

	const insertQ = `
		INSERT INTO contracts (client_id, car_id, start_date, end_date, total_cost, status, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING contract_id
	`
	var id int64
	err = tx.QueryRow(ctx, insertQ,
		c.ClientID(),
		c.CarID(),
		c.Period().Start(),
		c.Period().End(),
		c.TotalCost().String(),
		c.Status(),
		nullable(c.Comment()),
	).Scan(&id)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, domain.NewConflictError("car is already booked for an overlapping period")
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.NewUnavailableError(err.Error())
	}

	return domain.Restore(
		domain.ContractID(id),
		c.ClientID(),
		c.CarID(),
		c.Period().Start(),
		c.Period().End(),
		c.TotalCost(),
		c.Status(),
		c.Comment(),
	), nil
}

// Update writes status and comment guarded by the status the contract was
// loaded with. RowsAffected == 0 means another writer got there first.
func (r *PostgresRepository) Update(ctx context.Context, c *domain.Contract, from domain.ContractStatus) (bool, error) {
	const q = `
		UPDATE contracts
		SET status = $2, comment = $3, updated_at = now()
		WHERE contract_id = $1 AND status = $4
	`
	res, err := r.pool.Exec(ctx, q, c.ID(), c.Status(), nullable(c.Comment()), from)
	if err != nil {
		if isExclusionViolation(err) {
			return false, domain.NewConflictError("car is already booked for an overlapping period")
		}
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id domain.ContractID) (*domain.Contract, error) {
	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE contract_id = $1
	`
	c, err := scanContract(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("contract")
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) GetByIDForClient(ctx context.Context, id domain.ContractID, clientID domain.ClientID) (*domain.Contract, error) {
	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE contract_id = $1 AND client_id = $2
	`
	c, err := scanContract(r.pool.QueryRow(ctx, q, id, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("contract")
		}
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) ListByClient(ctx context.Context, clientID domain.ClientID, limit, offset int) (*ports.ContractPage, error) {
	const countQ = `SELECT count(*) FROM contracts WHERE client_id = $1`
	var total int64
	if err := r.pool.QueryRow(ctx, countQ, clientID).Scan(&total); err != nil {
		return nil, err
	}

	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE client_id = $1
		ORDER BY start_date DESC, contract_id DESC
		LIMIT $2 OFFSET $3
	`
	contracts, err := r.queryContracts(ctx, q, clientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &ports.ContractPage{Contracts: contracts, Total: total}, nil
}

func (r *PostgresRepository) FindOverlapping(ctx context.Context, carID domain.CarID, period domain.RentalPeriod, excludeID domain.ContractID) ([]domain.Contract, error) {
	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE car_id = $1
		  AND contract_id <> $2
		  AND status IN ('CONFIRMED', 'ACTIVE')
		  AND start_date < $4
		  AND end_date > $3
		ORDER BY start_date
	`
	return r.queryContracts(ctx, q, carID, excludeID, period.Start(), period.End())
}

func (r *PostgresRepository) ListActiveForCarInPeriod(ctx context.Context, carID domain.CarID, period domain.RentalPeriod) ([]domain.Contract, error) {
	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE car_id = $1
		  AND status = 'ACTIVE'
		  AND start_date < $3
		  AND end_date > $2
		ORDER BY start_date
	`
	return r.queryContracts(ctx, q, carID, period.Start(), period.End())
}

func (r *PostgresRepository) ListDueForActivation(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE status = 'CONFIRMED' AND start_date <= $1
		ORDER BY start_date
	`
	return r.queryContracts(ctx, q, now)
}

func (r *PostgresRepository) ListDueForCompletion(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	q := `
		SELECT ` + contractColumns + `
		FROM contracts
		WHERE status = 'ACTIVE' AND end_date <= $1
		ORDER BY end_date
	`
	return r.queryContracts(ctx, q, now)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
