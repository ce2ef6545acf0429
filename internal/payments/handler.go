package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/demo-credit/wallet-service/internal/funding"
	"github.com/demo-credit/wallet-service/internal/ledger"
)

// TransferRequest captures a wallet-to-wallet transfer from the API.
type TransferRequest struct {
	RecipientAccountNo string          `json:"recipient_account_no"`
	Amount             decimal.Decimal `json:"amount"`
	Description        string          `json:"description"`
}

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a payments handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Transfer moves funds from the authenticated user's wallet to another wallet.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(int64)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	txn, err := h.service.Transfer(c.UserContext(), TransferInput{
		SenderOwnerID:      ownerID,
		RecipientAccountNo: req.RecipientAccountNo,
		Amount:             req.Amount,
		Description:        req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrWalletNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ledger.ErrSelfTransfer),
			errors.Is(err, ledger.ErrInsufficientFunds),
			errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to transfer funds")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"transaction": funding.ToTransactionResponse(txn)})
}
