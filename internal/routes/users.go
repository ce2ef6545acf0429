package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/demo-credit/wallet-service/internal/user"
)

// RegisterUserRoutes wires onboarding and login endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler, loginLimiter fiber.Handler) {
	r.Post("/users", h.Register)

	authGroup := r.Group("/auth")
	if loginLimiter != nil {
		authGroup.Post("/login", loginLimiter, h.Login)
	} else {
		authGroup.Post("/login", h.Login)
	}
}
