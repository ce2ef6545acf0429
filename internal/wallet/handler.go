package wallet

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/demo-credit/wallet-service/internal/ledger"
)

const (
	defaultHistoryPageSize = 20
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
	ledger  ledger.Ledger
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service, ledger ledger.Ledger) *Handler {
	return &Handler{service: service, ledger: ledger}
}

type walletResponse struct {
	ID            int64     `json:"id"`
	AccountName   string    `json:"account_name"`
	AccountNumber string    `json:"account_number"`
	SavingsID     string    `json:"savings_id"`
	Provider      string    `json:"provider"`
	Balance       string    `json:"balance"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

type transactionResponse struct {
	ID                int64             `json:"id"`
	Type              string            `json:"type"`
	Amount            string            `json:"amount"`
	Reference         string            `json:"reference"`
	Description       string            `json:"description,omitempty"`
	RecipientWalletID int64             `json:"recipient_wallet_id,omitempty"`
	Status            string            `json:"status"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Get returns the authenticated owner's wallet with its current balance.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(int64)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	w, err := h.service.Balance(c.UserContext(), ownerID)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to load wallet")
	}

	return c.Status(http.StatusOK).JSON(toWalletResponse(w))
}

// Transactions returns a page of the owner's transaction history.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(int64)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", defaultHistoryPageSize)
	if page < 1 || pageSize < 1 {
		return fiber.NewError(http.StatusBadRequest, "page and page_size must be positive")
	}

	txns, total, err := h.ledger.ListTransactions(c.UserContext(), ownerID, page, pageSize)
	if err != nil {
		if errors.Is(err, ledger.ErrWalletNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to load transactions")
	}

	items := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		items = append(items, toTransactionResponse(txn))
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"transactions": items,
		"pagination": fiber.Map{
			"page":      page,
			"page_size": pageSize,
			"total":     total,
		},
	})
}

func toWalletResponse(w ledger.Wallet) walletResponse {
	return walletResponse{
		ID:            w.ID,
		AccountName:   w.AccountName,
		AccountNumber: w.AccountNumber,
		SavingsID:     w.SavingsID,
		Provider:      w.Provider,
		Balance:       w.Balance.StringFixed(2),
		Currency:      w.Currency,
		CreatedAt:     w.CreatedAt,
	}
}

func toTransactionResponse(txn ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:                txn.ID,
		Type:              txn.Type,
		Amount:            txn.Amount.StringFixed(2),
		Reference:         txn.Reference,
		Description:       txn.Description,
		RecipientWalletID: txn.RecipientWalletID,
		Status:            txn.Status,
		Metadata:          txn.Metadata,
		CreatedAt:         txn.CreatedAt,
	}
}
