package funding

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/demo-credit/wallet-service/internal/ledger"
)

// FundRequest captures user-provided data to fund a wallet.
type FundRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
}

// WithdrawRequest captures withdrawal details for a bank payout.
type WithdrawRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	BankAccount string          `json:"bank_account"`
	BankCode    string          `json:"bank_code"`
}

// TransactionResponse represents the API shape of a ledger transaction.
type TransactionResponse struct {
	ID          int64             `json:"id"`
	Type        string            `json:"type"`
	Amount      string            `json:"amount"`
	Reference   string            `json:"reference"`
	Description string            `json:"description,omitempty"`
	Status      string            `json:"status"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToTransactionResponse maps a ledger transaction to its API shape.
func ToTransactionResponse(txn ledger.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          txn.ID,
		Type:        txn.Type,
		Amount:      txn.Amount.StringFixed(2),
		Reference:   txn.Reference,
		Description: txn.Description,
		Status:      txn.Status,
		Metadata:    txn.Metadata,
		CreatedAt:   txn.CreatedAt,
	}
}
