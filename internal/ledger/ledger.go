package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrWalletNotFound occurs when no wallet matches the requested owner,
	// account number or id.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInvalidAmount indicates a non-positive amount reached the ledger.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when the source wallet lacks available
	// balance to cover a requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateReference indicates the provided reference already exists
	// and therefore the funding operation should be treated as idempotent.
	ErrDuplicateReference = errors.New("transaction with this reference already exists")

	// ErrSelfTransfer indicates sender and recipient resolve to the same wallet.
	ErrSelfTransfer = errors.New("self transfer not allowed")

	// ErrGenerationExhausted indicates account number allocation ran out of retries.
	ErrGenerationExhausted = errors.New("account number generation exhausted")

	// ErrWalletExists indicates the owner already has a wallet.
	ErrWalletExists = errors.New("wallet already exists for owner")

	// ErrAccountNumberTaken signals a generated account or savings id collided
	// with an existing wallet; creation should regenerate and retry.
	ErrAccountNumberTaken = errors.New("account number already taken")
)

const (
	// TypeCredit marks a balance increase.
	TypeCredit = "credit"
	// TypeDebit marks a balance decrease.
	TypeDebit = "debit"
	// TypeTransfer marks the sender side of a wallet-to-wallet movement.
	TypeTransfer = "transfer"

	// StatusPending marks a transaction awaiting settlement.
	StatusPending = "pending"
	// StatusCompleted marks a settled transaction.
	StatusCompleted = "completed"
	// StatusFailed marks a transaction that did not settle.
	StatusFailed = "failed"
)

// Wallet is a single owner's monetary balance record.
type Wallet struct {
	ID            int64
	OwnerID       int64
	AccountName   string
	AccountNumber string
	SavingsID     string
	Provider      string
	Balance       decimal.Decimal
	Currency      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Transaction is an immutable record of a balance-affecting event.
// Rows are append-only: created once, never updated, never deleted.
type Transaction struct {
	ID                int64
	WalletID          int64
	Type              string
	Amount            decimal.Decimal
	Reference         string
	Description       string
	RecipientWalletID int64
	Status            string
	Metadata          map[string]string
	CreatedAt         time.Time
}

// BankAccount identifies the payout destination recorded on withdrawals.
type BankAccount struct {
	Number string
	Code   string
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
// Every mutating operation runs as a single atomic unit: either the balance
// change and its transaction rows all commit, or none do.
type Ledger interface {
	Fund(ctx context.Context, ownerID int64, amount decimal.Decimal, reference string) (Transaction, error)
	Transfer(ctx context.Context, senderOwnerID int64, recipientAccountNo string, amount decimal.Decimal, description string) (Transaction, error)
	Withdraw(ctx context.Context, ownerID int64, amount decimal.Decimal, destination BankAccount) (Transaction, error)
	Balance(ctx context.Context, ownerID int64) (Wallet, error)
	ListTransactions(ctx context.Context, ownerID int64, page, pageSize int) ([]Transaction, int64, error)
}
