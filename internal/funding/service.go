package funding

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/demo-credit/wallet-service/internal/ledger"
	"github.com/demo-credit/wallet-service/internal/notification"
)

var (
	// ErrInvalidReference indicates the funding reference is missing or
	// outside the 5..100 character bounds.
	ErrInvalidReference = errors.New("reference must be between 5 and 100 characters")

	// ErrInvalidBankAccount indicates the payout account is not 10 digits.
	ErrInvalidBankAccount = errors.New("bank account must be 10 digits")

	// ErrInvalidBankCode indicates the payout bank code is not 3 digits.
	ErrInvalidBankCode = errors.New("bank code must be 3 digits")
)

// Service coordinates wallet funding and withdrawals through the ledger.
// The ledger re-checks amount positivity and reference uniqueness; the
// service guards the request shape before any store work happens.
type Service struct {
	ledger   ledger.Ledger
	notifier notification.Notifier
}

// NewService constructs a funding service.
func NewService(ledgerBackend ledger.Ledger, notifier notification.Notifier) *Service {
	return &Service{ledger: ledgerBackend, notifier: notifier}
}

// FundInput captures the data required to fund a wallet.
type FundInput struct {
	OwnerID   int64
	Amount    decimal.Decimal
	Reference string
}

// WithdrawInput captures the data required to withdraw to a bank account.
type WithdrawInput struct {
	OwnerID     int64
	Amount      decimal.Decimal
	BankAccount string
	BankCode    string
}

// Fund credits the owner's wallet. The reference is the caller-supplied
// idempotency key: repeating it yields ledger.ErrDuplicateReference.
func (s *Service) Fund(ctx context.Context, input FundInput) (ledger.Transaction, error) {
	if l := len(input.Reference); l < 5 || l > 100 {
		return ledger.Transaction{}, ErrInvalidReference
	}
	if !input.Amount.IsPositive() {
		return ledger.Transaction{}, ledger.ErrInvalidAmount
	}
	return s.ledger.Fund(ctx, input.OwnerID, input.Amount, input.Reference)
}

// Withdraw debits the owner's wallet and records the payout destination.
func (s *Service) Withdraw(ctx context.Context, input WithdrawInput) (ledger.Transaction, error) {
	if !isDigits(input.BankAccount) || len(input.BankAccount) != 10 {
		return ledger.Transaction{}, ErrInvalidBankAccount
	}
	if !isDigits(input.BankCode) || len(input.BankCode) != 3 {
		return ledger.Transaction{}, ErrInvalidBankCode
	}
	if !input.Amount.IsPositive() {
		return ledger.Transaction{}, ledger.ErrInvalidAmount
	}

	txn, err := s.ledger.Withdraw(ctx, input.OwnerID, input.Amount, ledger.BankAccount{
		Number: input.BankAccount,
		Code:   input.BankCode,
	})
	if err != nil {
		return ledger.Transaction{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWithdrawal,
			Destination: strconv.FormatInt(input.OwnerID, 10),
			Body:        fmt.Sprintf("Withdrawal of %s to account %s recorded", input.Amount.StringFixed(2), input.BankAccount),
		})
	}

	return txn, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
