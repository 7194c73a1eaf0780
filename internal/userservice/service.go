// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"strings"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/rs/zerolog"
)

// DefaultRoleSlug is the role assigned to self-registered users.
const DefaultRoleSlug = "user_role"

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
}

// RoleRepo provides role lookups needed to assign the default role.
type RoleRepo interface {
	GetBySlug(ctx context.Context, slug string) (domain.Role, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo  Repo
	roles RoleRepo
}

// New returns user service struct to manage user business logic.
func New(ur Repo, rr RoleRepo) *Service {
	return &Service{
		repo:  ur,
		roles: rr,
	}
}

// NewUserWithoutPassword returns user with removed sensitive data.
func NewUserWithoutPassword(u domain.User) domain.UserWithoutPassword {
	return domain.UserWithoutPassword{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Create registers a user with the default role and returns it.
// Emails are stored lowercased.
func (s *Service) Create(ctx context.Context, name, email, password string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var result domain.UserWithoutPassword

	role, err := s.roles.GetBySlug(ctx, DefaultRoleSlug)
	if err != nil {
		return result, err
	}

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return result, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		Name:           name,
		Email:          strings.ToLower(email),
		HashedPassword: hashedPassword,
		RoleID:         role.ID,
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return result, err
	}

	result = NewUserWithoutPassword(gotUser)

	return result, nil
}

// CheckPassword checks if the password is valid for the given email.
func (s *Service) CheckPassword(ctx context.Context, email, pass string) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	var response domain.UserWithoutPassword

	gotUser, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return response, err
	}

	err = passpkg.Check(pass, gotUser.HashedPassword)
	if err != nil {
		l.Warn().Err(err).Send()
		return response, domain.ErrWrongPassword
	}

	response = NewUserWithoutPassword(gotUser)

	return response, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.UserWithoutPassword, error) {
	gotUser, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return NewUserWithoutPassword(gotUser), nil
}
