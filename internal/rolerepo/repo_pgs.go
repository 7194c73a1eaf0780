// Package rolerepo manages repository layer of roles and permissions.
package rolerepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates role repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns role RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const getBySlugQuery = `
SELECT
	id, name, slug
FROM roles
WHERE slug = $1
`

// GetBySlug returns the role with the given slug.
func (r *RepoPGS) GetBySlug(ctx context.Context, slug string) (domain.Role, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getBySlugQuery, slug)

	var role domain.Role

	err := row.Scan(
		&role.ID,
		&role.Name,
		&role.Slug,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return role, domain.ErrRoleNotFound
		}

		return role, errorspkg.ErrInternal
	}

	return role, nil
}

const listUserPermissionsQuery = `
SELECT
	p.slug
FROM users u
JOIN roles r ON r.id = u.role_id
JOIN role_permissions rp ON rp.role_id = r.id
JOIN permissions p ON p.id = rp.permission_id
WHERE u.id = $1
`

// ListUserPermissionSlugs returns the permission slugs granted to the
// user through its role.
func (r *RepoPGS) ListUserPermissionSlugs(ctx context.Context, userID int64) ([]string, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listUserPermissionsQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	slugs := []string{}

	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		slugs = append(slugs, slug)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return slugs, nil
}
