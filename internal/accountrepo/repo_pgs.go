// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    accounts (owner, balance, projected_balance)
VALUES
    ($1, 0, 0)
RETURNING id, owner, balance, projected_balance, created_at
`

// Create creates the account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, ownerID int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, ownerID)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Balance,
		&a.ProjectedBalance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_owner_fkey" {
				return a, domain.ErrOwnerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getQuery = `
SELECT
	id, owner, balance, projected_balance, created_at
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	return r.scanAccount(ctx, r.db.QueryRowContext(ctx, getQuery, id))
}

const getForUpdateQuery = `
SELECT
	id, owner, balance, projected_balance, created_at
FROM accounts
WHERE id = $1
FOR UPDATE
`

// GetForUpdate returns the account with the given id locking its row
// until the surrounding transaction finishes.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return r.scanAccount(ctx, r.db.QueryRowContext(ctx, getForUpdateQuery, id))
}

func (r *RepoPGS) scanAccount(ctx context.Context, row *sql.Row) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Balance,
		&a.ProjectedBalance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING id, owner, balance, projected_balance, created_at
`

// AddBalance atomically increments the account's realized balance and
// returns the changed account. The statement serializes concurrent
// increments on the same row, so no update is lost.
func (r *RepoPGS) AddBalance(ctx context.Context, amount string, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addBalanceQuery, amount, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Balance,
		&a.ProjectedBalance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const setProjectedBalanceQuery = `
UPDATE accounts
SET projected_balance = $1
WHERE id = $2
RETURNING id, owner, balance, projected_balance, created_at
`

// SetProjectedBalance overwrites the account's projection cache and
// returns the changed account. The realized balance is never touched here.
func (r *RepoPGS) SetProjectedBalance(ctx context.Context, projected string, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, setProjectedBalanceQuery, projected, id)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.OwnerID,
		&a.Balance,
		&a.ProjectedBalance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listAccounts = `
SELECT
	id, owner, balance, projected_balance, created_at
FROM accounts
WHERE owner = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the specified number of accounts for the given user.
func (r *RepoPGS) List(ctx context.Context, ownerID int64, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listAccounts, ownerID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Balance, &a.ProjectedBalance, &a.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
