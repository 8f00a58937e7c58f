package handlers

import (
	"github.com/gofiber/fiber/v2"

	"webshop/internal/domain"
	applog "webshop/internal/log"
	"webshop/internal/repos"
	"webshop/internal/services"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.List()
	if err != nil {
		return respondErr(c, "products.list", err)
	}
	return c.JSON(products)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, "products.get", domain.ErrNotFound)
	}
	p, err := h.Catalog.Get(int64(id))
	if err != nil {
		return respondErr(c, "products.get", err)
	}
	return c.JSON(p)
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "products.create", domain.ErrValidation)
	}
	p, err := h.Catalog.Create(in)
	if err != nil {
		return respondErr(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": p.ID, "name": p.Name})
	return c.JSON(p)
}

type productPatchRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	ImageURL    *string  `json:"image_url"`
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, "products.update", domain.ErrNotFound)
	}
	var in productPatchRequest
	if err := c.BodyParser(&in); err != nil {
		return respondErr(c, "products.update", domain.ErrValidation)
	}
	p, err := h.Catalog.Update(int64(id), repos.ProductPatch{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		return respondErr(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": p.ID})
	return c.JSON(p)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return respondErr(c, "products.delete", domain.ErrNotFound)
	}
	if err := h.Catalog.Delete(int64(id)); err != nil {
		return respondErr(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
