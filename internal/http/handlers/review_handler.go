package handlers

import (
	"github.com/gofiber/fiber/v2"

	"webshop/internal/domain"
	applog "webshop/internal/log"
	"webshop/internal/repos"
	"webshop/internal/services"
)

type ReviewHandler struct {
	Reviews *services.ReviewService
}

func (h *ReviewHandler) ListByProduct(c *fiber.Ctx) error {
	pid, err := c.ParamsInt("product_id")
	if err != nil {
		return respondErr(c, "reviews.list", domain.ErrNotFound)
	}
	reviews, err := h.Reviews.ListByProduct(int64(pid))
	if err != nil {
		return respondErr(c, "reviews.list", err)
	}
	return c.JSON(reviews)
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "reviews.create", domain.ErrValidation)
	}
	rev, err := h.Reviews.Create(currentUser(c), in)
	if err != nil {
		return respondErr(c, "reviews.create", err)
	}
	applog.Audit(c, "reviews.create", map[string]any{"review_id": rev.ID, "product_id": rev.ProductID})
	return c.JSON(rev)
}

type reviewPatchRequest struct {
	Rating   *int    `json:"rating"`
	Feedback *string `json:"feedback"`
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, "reviews.update", domain.ErrNotFound)
	}
	var in reviewPatchRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "reviews.update", domain.ErrValidation)
	}
	rev, err := h.Reviews.Update(currentUser(c), int64(id), repos.ReviewPatch{
		Rating:   in.Rating,
		Feedback: in.Feedback,
	})
	if err != nil {
		return respondErr(c, "reviews.update", err)
	}
	return c.JSON(rev)
}

func (h *ReviewHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, "reviews.delete", domain.ErrNotFound)
	}
	if err := h.Reviews.Delete(currentUser(c), int64(id)); err != nil {
		return respondErr(c, "reviews.delete", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ReviewHandler) Mine(c *fiber.Ctx) error {
	reviews, err := h.Reviews.ListMine(currentUser(c).ID)
	if err != nil {
		return respondErr(c, "reviews.mine", err)
	}
	return c.JSON(reviews)
}
