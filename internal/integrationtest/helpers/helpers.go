// Package helpers provides db seeding helpers used in integration tests.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/fundrepo"
	"github.com/go-petr/pet-ledger/internal/rolerepo"
	"github.com/go-petr/pet-ledger/internal/sessionrepo"
	"github.com/go-petr/pet-ledger/internal/userrepo"
	"github.com/go-petr/pet-ledger/internal/userservice"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// SeedUser creates a random user with the default role inside a test transaction.
func SeedUser(t *testing.T, tx dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(32))
	if err != nil {
		t.Fatalf("passpkg.Hash(randompkg.String(32)) returned error: %v", err)
	}

	roleRepo := rolerepo.NewRepoPGS(tx)

	role, err := roleRepo.GetBySlug(context.Background(), userservice.DefaultRoleSlug)
	if err != nil {
		t.Fatalf("roleRepo.GetBySlug(context.Background(), %v) returned error: %v",
			userservice.DefaultRoleSlug, err)
	}

	arg := domain.CreateUserParams{
		Name:           randompkg.Name(),
		Email:          randompkg.Email(),
		HashedPassword: hashedPassword,
		RoleID:         role.ID,
	}

	userRepo := userrepo.NewRepoPGS(tx)

	user, err := userRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("userRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return user
}

// SeedSession creates a session with the given params inside a test transaction.
func SeedSession(t *testing.T, tx dbpkg.SQLInterface, arg domain.CreateSessionParams) domain.Session {
	t.Helper()

	sessionRepo := sessionrepo.NewRepoPGS(tx)

	session, err := sessionRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("sessionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return session
}

// SeedAccount creates a zero balance account for the user inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, ownerID int64) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %v) returned error: %v", ownerID, err)
	}

	return account
}

// SeedFund creates an incoming fund inside a test transaction.
func SeedFund(t *testing.T, tx dbpkg.SQLInterface, accountID int64, amount string, settlementDate time.Time) domain.IncomingFund {
	t.Helper()

	fundRepo := fundrepo.NewTxRepoPGS(tx)

	arg := domain.CreateFundParams{
		AccountID:      accountID,
		Amount:         amount,
		SettlementDate: settlementDate,
	}

	fund, err := fundRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("fundRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return fund
}

// SeedFunds creates funds with random amounts sharing one settlement date.
func SeedFunds(t *testing.T, tx dbpkg.SQLInterface, count int, accountID int64, settlementDate time.Time) []domain.IncomingFund {
	t.Helper()

	funds := make([]domain.IncomingFund, count)

	for i := range funds {
		funds[i] = SeedFund(t, tx, accountID, randompkg.MoneyAmountBetween(-1_000, 1_000), settlementDate)
	}

	return funds
}
