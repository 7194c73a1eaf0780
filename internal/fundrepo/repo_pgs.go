// Package fundrepo manages repository layer of incoming funds.
package fundrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/balance"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates incoming fund repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns fund RepoPGS bound to an already open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns fund RepoPGS with a connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    incoming_funds (account_id, amount, settlement_date)
VALUES
    ($1, $2, $3)
RETURNING id, account_id, amount, settlement_date, created_at
`

// Create creates the incoming fund and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateFundParams) (domain.IncomingFund, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.AccountID, arg.Amount, arg.SettlementDate)

	var f domain.IncomingFund

	err := row.Scan(
		&f.ID,
		&f.AccountID,
		&f.Amount,
		&f.SettlementDate,
		&f.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "incoming_funds_account_id_fkey" {
			return f, domain.ErrAccountNotFound
		}

		return f, errorspkg.ErrInternal
	}

	return f, nil
}

const getQuery = `
SELECT
	id, account_id, amount, settlement_date, created_at
FROM incoming_funds
WHERE id = $1
`

// Get returns the incoming fund with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.IncomingFund, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var f domain.IncomingFund

	err := row.Scan(
		&f.ID,
		&f.AccountID,
		&f.Amount,
		&f.SettlementDate,
		&f.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return f, domain.ErrFundNotFound
		}

		return f, errorspkg.ErrInternal
	}

	return f, nil
}

const listByAccountQuery = `
SELECT
	id, account_id, amount, settlement_date, created_at
FROM incoming_funds
WHERE account_id = $1
ORDER BY id
`

// ListByAccount returns all pending funds of the given account.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int64) ([]domain.IncomingFund, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.IncomingFund{}

	for rows.Next() {
		var f domain.IncomingFund
		if err := rows.Scan(&f.ID, &f.AccountID, &f.Amount, &f.SettlementDate, &f.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, f)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const deleteQuery = `
DELETE FROM incoming_funds
WHERE id = $1
RETURNING id, account_id, amount, settlement_date, created_at
`

// Delete removes the fund with the given id and returns the removed row.
// When the row no longer exists it returns ErrFundNotFound, which makes
// a settlement retry fail cleanly instead of crediting twice.
func (r *RepoPGS) Delete(ctx context.Context, id int64) (domain.IncomingFund, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, deleteQuery, id)

	var f domain.IncomingFund

	err := row.Scan(
		&f.ID,
		&f.AccountID,
		&f.Amount,
		&f.SettlementDate,
		&f.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return f, domain.ErrFundNotFound
		}

		return f, errorspkg.ErrInternal
	}

	return f, nil
}

// SettleTx moves one pending fund into the realized balance.
//
// It deletes the fund row and increments the owning account's balance
// within a single database transaction. Either both mutations commit or
// neither takes effect. Two concurrent settlements of the same fund
// result in exactly one success and one ErrFundNotFound: the losing
// transaction blocks on the row lock, then re-evaluates its DELETE
// against zero rows.
func (r *RepoPGS) SettleTx(ctx context.Context, fundID int64) (domain.SettlementTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.SettlementTxResult

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	fundRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)

	result.Fund, err = fundRepo.Delete(ctx, fundID)
	if err != nil {
		return result, err
	}

	result.Account, err = accountRepo.AddBalance(ctx, result.Fund.Amount, result.Fund.AccountID)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "serialization_failure" {
			return result, errorspkg.ErrConflict
		}

		return result, errorspkg.ErrInternal
	}

	return result, nil
}

// CreateTx records a new incoming fund and refreshes the account's
// projected balance within a single database transaction.
//
// The account row is locked for the duration of the transaction so the
// projection is recomputed against a stable set of pending funds even
// under concurrent inserts.
func (r *RepoPGS) CreateTx(ctx context.Context, arg domain.CreateFundParams) (domain.FundTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.FundTxResult

	incoming, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		l.Info().Err(err).Send()
		return result, domain.ErrInvalidAmount
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	fundRepo := NewTxRepoPGS(tx)
	accountRepo := accountrepo.NewRepoPGS(tx)

	if _, err = accountRepo.GetForUpdate(ctx, arg.AccountID); err != nil {
		return result, err
	}

	funds, err := fundRepo.ListByAccount(ctx, arg.AccountID)
	if err != nil {
		return result, err
	}

	projected, err := balance.RecomputeOnInsert(incoming, funds)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	result.Account, err = accountRepo.SetProjectedBalance(ctx, projected.StringFixed(balance.Scale), arg.AccountID)
	if err != nil {
		return result, err
	}

	result.Fund, err = fundRepo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "serialization_failure" {
			return result, errorspkg.ErrConflict
		}

		return result, errorspkg.ErrInternal
	}

	return result, nil
}
