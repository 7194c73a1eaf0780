// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// CreateQuery inserts into users table.
const CreateQuery = `
INSERT INTO users (
    name,
    email,
    hashed_password,
    role_id
) VALUES (
    $1, $2, $3, $4
) RETURNING id, name, email, hashed_password, role_id, created_at
`

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, CreateQuery,
		arg.Name,
		arg.Email,
		arg.HashedPassword,
		arg.RoleID,
	)

	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.RoleID,
		&u.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "users_email_key" {
				return u, domain.ErrEmailAlreadyExists
			}
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}

const getByEmailQuery = `
SELECT
	id, name, email, hashed_password, role_id, created_at
FROM users
WHERE email = $1
`

// GetByEmail returns the user with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.scanUser(ctx, r.db.QueryRowContext(ctx, getByEmailQuery, email))
}

const getByIDQuery = `
SELECT
	id, name, email, hashed_password, role_id, created_at
FROM users
WHERE id = $1
`

// GetByID returns the user with the given id.
func (r *RepoPGS) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return r.scanUser(ctx, r.db.QueryRowContext(ctx, getByIDQuery, id))
}

func (r *RepoPGS) scanUser(ctx context.Context, row *sql.Row) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.HashedPassword,
		&u.RoleID,
		&u.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return u, domain.ErrUserNotFound
		}

		return u, errorspkg.ErrInternal
	}

	return u, nil
}
