package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/demo-credit/wallet-service/internal/funding"
	"github.com/demo-credit/wallet-service/internal/payments"
	"github.com/demo-credit/wallet-service/internal/wallet"
)

// RegisterWalletRoutes wires the authenticated wallet endpoints.
func RegisterWalletRoutes(r fiber.Router, w *wallet.Handler, f *funding.Handler, p *payments.Handler) {
	group := r.Group("/wallet")
	group.Get("", w.Get)
	group.Get("/transactions", w.Transactions)
	group.Post("/fund", f.Fund)
	group.Post("/withdraw", f.Withdraw)
	group.Post("/transfer", p.Transfer)
}
