package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"webshop/internal/events"
	"webshop/internal/services"
)

// AnalyticsHandler exposes the admin dashboards. Every endpoint is
// read-only and degrades to zero-valued output instead of failing
// (see AnalyticsService).
type AnalyticsHandler struct {
	Analytics *services.AnalyticsService
	Events    events.Publisher
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	u := currentUser(c)
	h.Events.Emit(context.Background(), events.Event{
		EventType: "admin_dashboard_access",
		UserID:    u.ID,
		Data:      map[string]any{"role": string(u.Role)},
	})
	return c.JSON(h.Analytics.Dashboard())
}

func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	return c.JSON(h.Analytics.SystemStatistics())
}

func (h *AnalyticsHandler) Orders(c *fiber.Ctx) error {
	return c.JSON(h.Analytics.OrderAnalytics())
}

func (h *AnalyticsHandler) Users(c *fiber.Ctx) error {
	return c.JSON(h.Analytics.UserAnalytics())
}

func (h *AnalyticsHandler) Products(c *fiber.Ctx) error {
	return c.JSON(h.Analytics.ProductAnalytics())
}
