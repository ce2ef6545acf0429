package funding

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/demo-credit/wallet-service/internal/ledger"
	"github.com/demo-credit/wallet-service/internal/notification"
	"github.com/demo-credit/wallet-service/internal/wallet"
)

type recordingNotifier struct {
	last notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.last = msg
	return nil
}

func setup(t *testing.T) (*ledger.InMemory, *Service, *recordingNotifier) {
	t.Helper()
	store := ledger.NewInMemory()
	repo := wallet.NewMemoryRepository(store, wallet.NewGenerator())
	if _, err := repo.Create(context.Background(), 1, "Ada Obi"); err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	notifier := &recordingNotifier{}
	return store, NewService(store, notifier), notifier
}

func TestFundCreditsWallet(t *testing.T) {
	store, svc, _ := setup(t)
	ctx := context.Background()

	txn, err := svc.Fund(ctx, FundInput{OwnerID: 1, Amount: decimal.NewFromInt(5000), Reference: "REF123456789"})
	if err != nil {
		t.Fatalf("fund: %v", err)
	}
	if txn.Type != ledger.TypeCredit || !txn.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("unexpected transaction %+v", txn)
	}

	w, err := store.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("expected balance 5000, got %s", w.Balance)
	}
}

func TestFundDuplicateReference(t *testing.T) {
	_, svc, _ := setup(t)
	ctx := context.Background()

	input := FundInput{OwnerID: 1, Amount: decimal.NewFromInt(100), Reference: "REF123456789"}
	if _, err := svc.Fund(ctx, input); err != nil {
		t.Fatalf("first fund: %v", err)
	}
	if _, err := svc.Fund(ctx, input); !errors.Is(err, ledger.ErrDuplicateReference) {
		t.Fatalf("expected duplicate reference, got %v", err)
	}
}

func TestFundRejectsShortReference(t *testing.T) {
	_, svc, _ := setup(t)

	if _, err := svc.Fund(context.Background(), FundInput{OwnerID: 1, Amount: decimal.NewFromInt(100), Reference: "ab"}); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestWithdrawValidatesDestination(t *testing.T) {
	store, svc, _ := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(1000))

	cases := []struct {
		name    string
		input   WithdrawInput
		wantErr error
	}{
		{"short account", WithdrawInput{OwnerID: 1, Amount: decimal.NewFromInt(100), BankAccount: "12345", BankCode: "058"}, ErrInvalidBankAccount},
		{"non numeric account", WithdrawInput{OwnerID: 1, Amount: decimal.NewFromInt(100), BankAccount: "12345abcde", BankCode: "058"}, ErrInvalidBankAccount},
		{"bad code", WithdrawInput{OwnerID: 1, Amount: decimal.NewFromInt(100), BankAccount: "0123456789", BankCode: "05"}, ErrInvalidBankCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Withdraw(context.Background(), tc.input); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	// Validation failures never touch the balance.
	w, _ := store.Balance(context.Background(), 1)
	if !w.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance changed after rejected withdrawals: %s", w.Balance)
	}
}

func TestWithdrawDebitsAndNotifies(t *testing.T) {
	store, svc, notifier := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(5000))

	txn, err := svc.Withdraw(context.Background(), WithdrawInput{
		OwnerID:     1,
		Amount:      decimal.NewFromInt(2000),
		BankAccount: "0123456789",
		BankCode:    "058",
	})
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if txn.Metadata["bank_code"] != "058" {
		t.Fatalf("bank code not recorded: %v", txn.Metadata)
	}
	if notifier.last.Kind != notification.KindWithdrawal {
		t.Fatalf("expected withdrawal notification, got %q", notifier.last.Kind)
	}

	w, _ := store.Balance(context.Background(), 1)
	if !w.Balance.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("expected balance 3000, got %s", w.Balance)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	store, svc, _ := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(100))

	_, err := svc.Withdraw(context.Background(), WithdrawInput{
		OwnerID:     1,
		Amount:      decimal.NewFromInt(1000),
		BankAccount: "0123456789",
		BankCode:    "058",
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
}
