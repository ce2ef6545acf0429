package payments

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/demo-credit/wallet-service/internal/ledger"
	"github.com/demo-credit/wallet-service/internal/notification"
	"github.com/demo-credit/wallet-service/internal/wallet"
)

// Service moves money between wallets and notifies recipients.
type Service struct {
	ledger   ledger.Ledger
	wallets  wallet.Repository
	notifier notification.Notifier
}

// NewService wires a transfer service over the ledger backend.
func NewService(ledgerBackend ledger.Ledger, wallets wallet.Repository, notifier notification.Notifier) *Service {
	return &Service{ledger: ledgerBackend, wallets: wallets, notifier: notifier}
}

// TransferInput carries a wallet-to-wallet transfer request.
type TransferInput struct {
	SenderOwnerID      int64
	RecipientAccountNo string
	Amount             decimal.Decimal
	Description        string
}

// Transfer debits the sender and credits the recipient atomically, then
// notifies the recipient. Notification failures never fail the transfer.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (ledger.Transaction, error) {
	txn, err := s.ledger.Transfer(ctx, input.SenderOwnerID, input.RecipientAccountNo, input.Amount, input.Description)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if s.notifier != nil {
		recipient, lookupErr := s.wallets.GetByAccountNumber(ctx, input.RecipientAccountNo)
		if lookupErr == nil {
			_ = s.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindTransferCredit,
				Destination: recipient.AccountNumber,
				Body:        fmt.Sprintf("You received %s from %s", input.Amount.StringFixed(2), txn.Reference),
			})
		}
	}

	return txn, nil
}
