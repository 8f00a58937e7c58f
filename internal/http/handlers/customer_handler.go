package handlers

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"webshop/internal/domain"
	"webshop/internal/repos"
	"webshop/internal/services"
)

// CustomerHandler serves the admin customer-management surface.
type CustomerHandler struct {
	Users  *repos.UserRepo
	Orders *services.OrderService
}

func (h *CustomerHandler) List(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	customers, err := h.Users.ListCustomers(skip, limit)
	if err != nil {
		return respondErr(c, "customers.list", err)
	}
	return c.JSON(customers)
}

func (h *CustomerHandler) Get(c *fiber.Ctx) error {
	uid, err := c.ParamsInt("user_id")
	if err != nil {
		return respondErr(c, "customers.get", domain.ErrNotFound)
	}
	u, err := h.Users.CustomerByID(int64(uid))
	if errors.Is(err, sql.ErrNoRows) {
		return respondErr(c, "customers.get", fmt.Errorf("customer %d: %w", uid, domain.ErrNotFound))
	}
	if err != nil {
		return respondErr(c, "customers.get", err)
	}
	return c.JSON(u.Out())
}

// Summary returns a customer's order statistics; customer must exist.
func (h *CustomerHandler) Summary(c *fiber.Ctx) error {
	uid, err := c.ParamsInt("user_id")
	if err != nil {
		return respondErr(c, "customers.summary", domain.ErrNotFound)
	}
	if _, err := h.Users.CustomerByID(int64(uid)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return respondErr(c, "customers.summary", fmt.Errorf("customer %d: %w", uid, domain.ErrNotFound))
		}
		return respondErr(c, "customers.summary", err)
	}
	sum, err := h.Orders.Summary(int64(uid))
	if err != nil {
		return respondErr(c, "customers.summary", err)
	}
	return c.JSON(sum)
}
