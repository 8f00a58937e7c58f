package services

import (
	"database/sql"
	"errors"
	"fmt"

	"webshop/internal/domain"
	"webshop/internal/repos"
	"webshop/internal/validate"
)

type ReviewService struct {
	Reviews  *repos.ReviewRepo
	Products *repos.ProductRepo
}

func NewReviewService(reviews *repos.ReviewRepo, products *repos.ProductRepo) *ReviewService {
	return &ReviewService{Reviews: reviews, Products: products}
}

type ReviewInput struct {
	ProductID int64   `json:"product_id"`
	Rating    int     `json:"rating"`
	Feedback  *string `json:"feedback"`
}

// Create enforces the one-review-per-(user,product) invariant.
func (s *ReviewService) Create(user *domain.User, in ReviewInput) (*domain.Review, error) {
	if !validate.Rating(in.Rating) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	feedback, ok := validate.Feedback(in.Feedback)
	if !ok {
		return nil, fmt.Errorf("%w: feedback exceeds 1000 characters", domain.ErrValidation)
	}
	if err := s.productExists(in.ProductID); err != nil {
		return nil, err
	}
	if exists, err := s.Reviews.Exists(user.ID, in.ProductID); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("you have already reviewed this product: %w", domain.ErrConflict)
	}

	rev, err := s.Reviews.Create(user.ID, in.ProductID, in.Rating, feedback)
	if err != nil {
		return nil, err
	}
	out := user.Out()
	rev.User = &out
	return rev, nil
}

// Update is owner-only.
func (s *ReviewService) Update(user *domain.User, reviewID int64, patch repos.ReviewPatch) (*domain.Review, error) {
	rev, err := s.byID(reviewID)
	if err != nil {
		return nil, err
	}
	if rev.UserID != user.ID {
		return nil, fmt.Errorf("review %d: %w", reviewID, domain.ErrForbidden)
	}
	if patch.Rating != nil && !validate.Rating(*patch.Rating) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}
	if patch.Feedback != nil {
		feedback, ok := validate.Feedback(patch.Feedback)
		if !ok {
			return nil, fmt.Errorf("%w: feedback exceeds 1000 characters", domain.ErrValidation)
		}
		patch.Feedback = feedback
	}
	updated, err := s.Reviews.Update(reviewID, patch)
	if err != nil {
		return nil, err
	}
	out := user.Out()
	updated.User = &out
	return updated, nil
}

// Delete is allowed for the owner or an administrator.
func (s *ReviewService) Delete(user *domain.User, reviewID int64) error {
	rev, err := s.byID(reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != user.ID && !user.IsAdmin() {
		return fmt.Errorf("review %d: %w", reviewID, domain.ErrForbidden)
	}
	return s.Reviews.Delete(reviewID)
}

func (s *ReviewService) ListByProduct(productID int64) ([]domain.Review, error) {
	if err := s.productExists(productID); err != nil {
		return nil, err
	}
	return s.Reviews.ListByProduct(productID)
}

func (s *ReviewService) ListMine(userID int64) ([]domain.Review, error) {
	return s.Reviews.ListByUser(userID)
}

func (s *ReviewService) byID(id int64) (*domain.Review, error) {
	rev, err := s.Reviews.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	return rev, err
}

func (s *ReviewService) productExists(id int64) error {
	_, err := s.Products.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return err
}
