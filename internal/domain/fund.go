package domain

import (
	"errors"
	"time"
)

var (
	// ErrFundNotFound indicates that the incoming fund is not found.
	// A settlement retry racing a prior successful settlement sees this
	// error instead of crediting the account twice.
	ErrFundNotFound = errors.New("incoming fund not found")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
)

// IncomingFund holds a credit or debit awaiting settlement.
// The row exists between creation and settlement; settlement deletes it.
type IncomingFund struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Amount    string `json:"amount"` // can be negative or positive
	// SettlementDate is stored timezone-naive. All comparisons assume a
	// single implicit timezone; callers must not mix zones.
	SettlementDate time.Time `json:"settlement_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateFundParams is the input data to record an incoming fund.
type CreateFundParams struct {
	AccountID      int64     `json:"account_id"`
	Amount         string    `json:"amount"`
	SettlementDate time.Time `json:"settlement_date"`
}

// FundTxResult is the result of the add-incoming-fund transaction.
type FundTxResult struct {
	Fund    IncomingFund `json:"fund"`
	Account Account      `json:"account"`
}

// SettlementTxResult is the result of the settlement transaction.
type SettlementTxResult struct {
	Fund    IncomingFund `json:"fund"`
	Account Account      `json:"account"`
}
