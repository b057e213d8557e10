package control

import (
	"context"
	"errors"
)

// ErrInsufficientCredits is returned before any slot is taken or attempt
// made when the user cannot pay for the fetch.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Ledger is the credits bookkeeping collaborator. The engine only checks,
// debits and refunds; balances and pricing live elsewhere.
type Ledger interface {
	// Check reports whether the user can afford one fetch.
	Check(ctx context.Context, userID string) (bool, error)

	// Debit charges one fetch. Called after a cache miss, before attempts run.
	Debit(ctx context.Context, userID string) error

	// Refund returns the charge after a classified failure.
	Refund(ctx context.Context, userID string) error
}

// NopLedger allows everything and records nothing. Used when no credit
// system is wired in.
type NopLedger struct{}

func (NopLedger) Check(ctx context.Context, userID string) (bool, error) { return true, nil }
func (NopLedger) Debit(ctx context.Context, userID string) error         { return nil }
func (NopLedger) Refund(ctx context.Context, userID string) error        { return nil }
