package handlers

import (
	"github.com/gofiber/fiber/v2"

	"webshop/internal/domain"
	applog "webshop/internal/log"
	"webshop/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "auth.register", domain.ErrValidation)
	}
	u, err := h.Auth.Register(in)
	if err != nil {
		applog.Security(c, "auth.register.fail", map[string]any{"email": in.Email, "error": err.Error()})
		return respondErr(c, "auth.register", err)
	}
	applog.Audit(c, "auth.register", map[string]any{"user_id": u.ID, "email": u.Email, "role": string(u.Role)})
	return c.JSON(u.Out())
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "auth.login", domain.ErrValidation)
	}
	token, u, err := h.Auth.Login(in.Email, in.Password)
	if err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"email": in.Email})
		return respondErr(c, "auth.login", err)
	}
	applog.Audit(c, "auth.login", map[string]any{"user_id": u.ID, "email": u.Email})
	return c.JSON(fiber.Map{"access_token": token, "token_type": "bearer"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c).Out())
}
