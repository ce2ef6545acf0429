package payments

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
	messages []notification.Message
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func setup(t *testing.T) (*ledger.InMemory, *Service, *recordingNotifier, ledger.Wallet, ledger.Wallet) {
	t.Helper()
	store := ledger.NewInMemory()
	repo := wallet.NewMemoryRepository(store, wallet.NewGenerator())

	sender, err := repo.Create(context.Background(), 1, "Ada Obi")
	if err != nil {
		t.Fatalf("create sender wallet: %v", err)
	}
	recipient, err := repo.Create(context.Background(), 2, "Chidi Eze")
	if err != nil {
		t.Fatalf("create recipient wallet: %v", err)
	}

	notifier := &recordingNotifier{}
	return store, NewService(store, repo, notifier), notifier, sender, recipient
}

func TestTransferMovesFundsAndNotifies(t *testing.T) {
	store, svc, notifier, _, recipient := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(5000))
	ctx := context.Background()

	txn, err := svc.Transfer(ctx, TransferInput{
		SenderOwnerID:      1,
		RecipientAccountNo: recipient.AccountNumber,
		Amount:             decimal.NewFromInt(2000),
		Description:        "rent split",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if txn.Type != ledger.TypeTransfer {
		t.Fatalf("expected transfer transaction, got %q", txn.Type)
	}

	senderWallet, _ := store.Balance(ctx, 1)
	recipientWallet, _ := store.Balance(ctx, 2)
	if !senderWallet.Balance.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("sender balance: got %s, want 3000", senderWallet.Balance)
	}
	if !recipientWallet.Balance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("recipient balance: got %s, want 2000", recipientWallet.Balance)
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.messages))
	}
	msg := notifier.messages[0]
	if msg.Kind != notification.KindTransferCredit || msg.Destination != recipient.AccountNumber {
		t.Fatalf("unexpected notification %+v", msg)
	}
}

func TestTransferUnknownRecipient(t *testing.T) {
	store, svc, notifier, _, _ := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(5000))

	_, err := svc.Transfer(context.Background(), TransferInput{
		SenderOwnerID:      1,
		RecipientAccountNo: "0000000000",
		Amount:             decimal.NewFromInt(100),
	})
	if !errors.Is(err, ledger.ErrWalletNotFound) {
		t.Fatalf("expected wallet not found, got %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("failed transfer must not notify, got %d messages", len(notifier.messages))
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	store, svc, notifier, _, recipient := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(50))
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferInput{
		SenderOwnerID:      1,
		RecipientAccountNo: recipient.AccountNumber,
		Amount:             decimal.NewFromInt(500),
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("failed transfer must not notify")
	}

	senderWallet, _ := store.Balance(ctx, 1)
	if !senderWallet.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("sender balance changed on failed transfer: %s", senderWallet.Balance)
	}
}

func TestTransferToSelf(t *testing.T) {
	store, svc, _, sender, _ := setup(t)
	ledger.SeedBalance(store, 1, decimal.NewFromInt(500))

	_, err := svc.Transfer(context.Background(), TransferInput{
		SenderOwnerID:      1,
		RecipientAccountNo: sender.AccountNumber,
		Amount:             decimal.NewFromInt(100),
	})
	if !errors.Is(err, ledger.ErrSelfTransfer) {
		t.Fatalf("expected self transfer error, got %v", err)
	}
}
