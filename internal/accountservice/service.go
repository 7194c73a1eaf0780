// Package accountservice manages business logic layer of accounts,
// incoming funds and settlements.
package accountservice

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/balance"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AccountRepo provides account data access interface needed by the service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type AccountRepo interface {
	Create(ctx context.Context, ownerID int64) (domain.Account, error)
	Get(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context, ownerID int64, limit, offset int32) ([]domain.Account, error)
}

// FundRepo provides incoming fund data access interface needed by the service layer.
type FundRepo interface {
	Get(ctx context.Context, id int64) (domain.IncomingFund, error)
	ListByAccount(ctx context.Context, accountID int64) ([]domain.IncomingFund, error)
	CreateTx(ctx context.Context, arg domain.CreateFundParams) (domain.FundTxResult, error)
	SettleTx(ctx context.Context, fundID int64) (domain.SettlementTxResult, error)
}

// UserGetter resolves user ids supplied by the identity layer.
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
}

// Service facilitates account service layer logic.
type Service struct {
	accountRepo AccountRepo
	fundRepo    FundRepo
	users       UserGetter
}

// New returns account service struct to manage account business logic.
func New(ar AccountRepo, fr FundRepo, ug UserGetter) *Service {
	return &Service{
		accountRepo: ar,
		fundRepo:    fr,
		users:       ug,
	}
}

// Create creates and returns a zero balance account for the given owner.
// The owner id is trusted as given but must resolve to an existing user.
func (s *Service) Create(ctx context.Context, ownerID int64) (domain.Account, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return domain.Account{}, err
	}

	account, err := s.accountRepo.Create(ctx, ownerID)
	if err != nil {
		return account, err
	}

	return account, nil
}

// Get returns the account for the given account ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.Account, error) {
	account, err := s.accountRepo.Get(ctx, id)
	if err != nil {
		return account, err
	}

	return account, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, ownerID int64, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	accounts, err := s.accountRepo.List(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// Balance returns the account balance a caller should see.
//
// With a nil asOf it is the stored realized balance verbatim. With a
// cutoff it is the stored balance plus every pending fund settling at or
// before that instant, the cutoff being normalized to the same
// timezone-naive form the settlement dates are stored in.
func (s *Service) Balance(ctx context.Context, accountID int64, asOf *time.Time) (string, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.accountRepo.Get(ctx, accountID)
	if err != nil {
		return "", err
	}

	if asOf == nil {
		return account.Balance, nil
	}

	stored, err := decimal.NewFromString(account.Balance)
	if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	funds, err := s.fundRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return "", err
	}

	projected, err := balance.Projected(stored, funds, balance.StripZone(*asOf))
	if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return projected.StringFixed(balance.Scale), nil
}

// AddFund validates and records a new incoming fund for the account and
// refreshes the account's projected balance in the same transaction.
func (s *Service) AddFund(ctx context.Context, accountID int64, amount string, settlementDate time.Time) (domain.FundTxResult, error) {
	l := zerolog.Ctx(ctx)

	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.FundTxResult{}, domain.ErrInvalidAmount
	}

	if amountDecimal.IsZero() {
		l.Info().Msg("zero fund amount rejected")
		return domain.FundTxResult{}, domain.ErrInvalidAmount
	}

	arg := domain.CreateFundParams{
		AccountID:      accountID,
		Amount:         amountDecimal.StringFixed(balance.Scale),
		SettlementDate: balance.StripZone(settlementDate),
	}

	result, err := s.fundRepo.CreateTx(ctx, arg)
	if err != nil {
		return result, err
	}

	return result, nil
}

// GetFund returns the pending fund with the given id.
func (s *Service) GetFund(ctx context.Context, id int64) (domain.IncomingFund, error) {
	fund, err := s.fundRepo.Get(ctx, id)
	if err != nil {
		return fund, err
	}

	return fund, nil
}

// Settle moves the pending fund with the given id into the realized
// balance. The transition is one way; a settled fund can only be
// corrected by adding a compensating negative fund.
func (s *Service) Settle(ctx context.Context, fundID int64) (domain.SettlementTxResult, error) {
	result, err := s.fundRepo.SettleTx(ctx, fundID)
	if err != nil {
		return result, err
	}

	return result, nil
}
