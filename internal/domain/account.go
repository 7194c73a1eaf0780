package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrAccountOwnerMismatch indicates that the account belongs to another user.
	ErrAccountOwnerMismatch = errors.New("account does not belong to the authenticated user")
)

// Account holds the realized balance for a user.
//
// Balance is mutated only by settlement. ProjectedBalance is a cache
// recomputed whenever an incoming fund is added; it never feeds back
// into Balance.
type Account struct {
	ID               int64     `json:"id"`
	OwnerID          int64     `json:"owner_id"`
	Balance          string    `json:"balance"`
	ProjectedBalance string    `json:"projected_balance"`
	CreatedAt        time.Time `json:"created_at"`
}
