package handlers

import (
	"github.com/gofiber/fiber/v2"

	"webshop/internal/domain"
	applog "webshop/internal/log"
	"webshop/internal/repos"
	"webshop/internal/services"
)

type OrderHandler struct {
	Orders *services.OrderService
}

type placeOrderRequest struct {
	Items []repos.OrderLine `json:"items"`
}

func (h *OrderHandler) Place(c *fiber.Ctx) error {
	var in placeOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "orders.place", domain.ErrValidation)
	}
	buyer := currentUser(c)
	order, err := h.Orders.Place(buyer, in.Items)
	if err != nil {
		applog.Security(c, "orders.place.fail", map[string]any{"error": err.Error()})
		return respondErr(c, "orders.place", err)
	}
	applog.Audit(c, "orders.place", map[string]any{
		"order_id": order.OrderCode,
		"total":    order.TotalAmount,
		"items":    len(order.Items),
	})
	return c.JSON(order)
}

func (h *OrderHandler) List(c *fiber.Ctx) error {
	orders, err := h.Orders.ListMine(currentUser(c).ID)
	if err != nil {
		return respondErr(c, "orders.list", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) ListDetailed(c *fiber.Ctx) error {
	orders, err := h.Orders.ListMineDetailed(currentUser(c).ID)
	if err != nil {
		return respondErr(c, "orders.detailed", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) Summary(c *fiber.Ctx) error {
	sum, err := h.Orders.Summary(currentUser(c).ID)
	if err != nil {
		return respondErr(c, "orders.summary", err)
	}
	return c.JSON(sum)
}

func (h *OrderHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, "orders.get", domain.ErrNotFound)
	}
	order, err := h.Orders.Get(int64(id), currentUser(c))
	if err != nil {
		return respondErr(c, "orders.get", err)
	}
	return c.JSON(order)
}

// AdminList supports skip/limit pagination and order-code search.
func (h *OrderHandler) AdminList(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 100)
	search := c.Query("search")
	orders, err := h.Orders.ListAll(skip, limit, search)
	if err != nil {
		return respondErr(c, "orders.admin.list", err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) AdminSearch(c *fiber.Ctx) error {
	order, err := h.Orders.ByCode(c.Params("code"))
	if err != nil {
		return respondErr(c, "orders.admin.search", err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) AdminCustomerOrders(c *fiber.Ctx) error {
	uid, err := c.ParamsInt("user_id")
	if err != nil {
		return respondErr(c, "orders.admin.customer", domain.ErrNotFound)
	}
	orders, err := h.Orders.ForCustomer(int64(uid))
	if err != nil {
		return respondErr(c, "orders.admin.customer", err)
	}
	return c.JSON(orders)
}
