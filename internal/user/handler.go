package user

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/demo-credit/wallet-service/internal/auth"
	"github.com/demo-credit/wallet-service/internal/ledger"
	"github.com/demo-credit/wallet-service/internal/wallet"
)

// Handler exposes onboarding and login endpoints.
type Handler struct {
	users   *Service
	wallets *wallet.Service
	tokens  *auth.Service
}

// NewHandler constructs a user HTTP handler.
func NewHandler(users *Service, wallets *wallet.Service, tokens *auth.Service) *Handler {
	return &Handler{users: users, wallets: wallets, tokens: tokens}
}

type registerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type loginRequest struct {
	Email string `json:"email"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

type walletResponse struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Balance       string `json:"balance"`
	Currency      string `json:"currency"`
}

type authResponse struct {
	User   userResponse   `json:"user"`
	Wallet walletResponse `json:"wallet"`
	Token  string         `json:"token"`
}

func toUserResponse(u User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
}

func toWalletResponse(w ledger.Wallet) walletResponse {
	return walletResponse{
		AccountNumber: w.AccountNumber,
		AccountName:   w.AccountName,
		Balance:       w.Balance.StringFixed(2),
		Currency:      w.Currency,
	}
}

func (r registerRequest) validate() error {
	if !strings.Contains(r.Email, "@") {
		return errors.New("a valid email is required")
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return errors.New("first and last name are required")
	}
	return nil
}

// Register onboards a user and provisions their wallet in one step.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := req.validate(); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.users.Register(c.UserContext(), RegisterInput{
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrBlacklisted):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrEmailTaken):
			return fiber.NewError(http.StatusConflict, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to register user")
		}
	}

	w, err := h.wallets.Create(c.UserContext(), u.ID, u.FullName())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to provision wallet")
	}

	token, err := h.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to issue token")
	}

	return c.Status(http.StatusCreated).JSON(authResponse{
		User:   toUserResponse(u),
		Wallet: toWalletResponse(w),
		Token:  token,
	})
}

// Login signs in an existing user by email.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	u, err := h.users.Login(c.UserContext(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		switch {
		case errors.Is(err, ErrBlacklisted):
			return fiber.NewError(http.StatusForbidden, err.Error())
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "user not found")
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to sign in")
		}
	}

	w, err := h.wallets.GetByOwner(c.UserContext(), u.ID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to load wallet")
	}

	token, err := h.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to issue token")
	}

	return c.Status(http.StatusOK).JSON(authResponse{
		User:   toUserResponse(u),
		Wallet: toWalletResponse(w),
		Token:  token,
	})
}
