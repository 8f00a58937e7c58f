package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"webshop/internal/domain"
	"webshop/internal/events"
	"webshop/internal/repos"
	"webshop/internal/validate"
)

type CatalogService struct {
	Products *repos.ProductRepo
	Events   events.Publisher
}

func NewCatalogService(products *repos.ProductRepo, pub events.Publisher) *CatalogService {
	return &CatalogService{Products: products, Events: pub}
}

func (s *CatalogService) List() ([]domain.Product, error) {
	return s.Products.List()
}

func (s *CatalogService) Get(id int64) (*domain.Product, error) {
	p, err := s.Products.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, err
}

type ProductInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    *string `json:"image_url"`
}

func (s *CatalogService) Create(in ProductInput) (*domain.Product, error) {
	name, ok := validate.ProductName(in.Name)
	if !ok {
		return nil, fmt.Errorf("%w: name", domain.ErrValidation)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", domain.ErrValidation)
	}
	p, err := s.Products.Create(name, in.Description, in.Price, in.Stock, in.ImageURL)
	if err != nil {
		return nil, err
	}
	s.emit("product_created", p)
	return p, nil
}

func (s *CatalogService) Update(id int64, patch repos.ProductPatch) (*domain.Product, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name, ok := validate.ProductName(*patch.Name)
		if !ok {
			return nil, fmt.Errorf("%w: name", domain.ErrValidation)
		}
		patch.Name = &name
	}
	if patch.Price != nil && *patch.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", domain.ErrValidation)
	}
	if patch.Stock != nil && *patch.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be non-negative", domain.ErrValidation)
	}
	p, err := s.Products.Update(id, patch)
	if err != nil {
		return nil, err
	}
	s.emit("product_updated", p)
	return p, nil
}

// Delete removes the product together with its order lines and reviews
// (explicit cleanup, see ProductRepo.Delete).
func (s *CatalogService) Delete(id int64) error {
	p, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.Products.Delete(id); err != nil {
		return err
	}
	s.emit("product_deleted", p)
	return nil
}

func (s *CatalogService) emit(eventType string, p *domain.Product) {
	s.Events.Emit(context.Background(), events.Event{
		EventType: eventType,
		Data: map[string]any{
			"product_id":   p.ID,
			"product_name": p.Name,
			"price":        p.Price,
		},
	})
}
