package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/demo-credit/wallet-service/internal/ledger"
)

// Handler exposes HTTP endpoints for funding and withdrawal flows.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Fund processes wallet top-ups from an external source.
func (h *Handler) Fund(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(int64)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req FundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	txn, err := h.service.Fund(c.UserContext(), FundInput{
		OwnerID:   ownerID,
		Amount:    req.Amount,
		Reference: req.Reference,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrDuplicateReference):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ledger.ErrWalletNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ErrInvalidReference):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to fund wallet")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"transaction": ToTransactionResponse(txn)})
}

// Withdraw processes wallet withdrawals to a bank account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(int64)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req WithdrawRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	txn, err := h.service.Withdraw(c.UserContext(), WithdrawInput{
		OwnerID:     ownerID,
		Amount:      req.Amount,
		BankAccount: req.BankAccount,
		BankCode:    req.BankCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrWalletNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ledger.ErrInsufficientFunds),
			errors.Is(err, ledger.ErrInvalidAmount),
			errors.Is(err, ErrInvalidBankAccount),
			errors.Is(err, ErrInvalidBankCode):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to withdraw funds")
		}
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"transaction": ToTransactionResponse(txn)})
}
