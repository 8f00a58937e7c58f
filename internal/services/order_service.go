package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"webshop/internal/domain"
	"webshop/internal/events"
	"webshop/internal/repos"
	"webshop/internal/validate"
)

type OrderService struct {
	Orders *repos.OrderRepo
	Users  *repos.UserRepo
	Events events.Publisher
}

func NewOrderService(orders *repos.OrderRepo, users *repos.UserRepo, pub events.Publisher) *OrderService {
	return &OrderService{Orders: orders, Users: users, Events: pub}
}

// newOrderCode generates the human-readable order key: "ORD-" plus
// 8 uppercase hex chars.
func newOrderCode() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(fmt.Sprintf("%x", id[:4]))
}

// Place runs the whole order flow: input validation, per-line stock
// check and decrement, order+items creation — atomically via the repo
// transaction. The "order_created" notification is emitted only after
// commit and never affects the result.
func (s *OrderService) Place(buyer *domain.User, lines []repos.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no items in order", domain.ErrValidation)
	}
	for _, l := range lines {
		if !validate.Quantity(l.Quantity) {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
		}
	}

	order, err := s.Orders.Place(buyer.ID, newOrderCode(), lines)
	if err != nil {
		return nil, err
	}

	s.Events.Emit(context.Background(), events.Event{
		EventType: "order_created",
		UserID:    buyer.ID,
		Data: map[string]any{
			"order_id":     order.OrderCode,
			"total_amount": order.TotalAmount,
			"item_count":   len(order.Items),
		},
	})
	return order, nil
}

func (s *OrderService) ListMine(userID int64) ([]domain.Order, error) {
	return s.Orders.ListByUser(userID)
}

func (s *OrderService) ListMineDetailed(userID int64) ([]repos.OrderDetail, error) {
	return s.Orders.ListDetailedByUser(userID)
}

// Summary never errors for a customer without orders; it returns zeros
// and a null last order date.
func (s *OrderService) Summary(userID int64) (repos.Summary, error) {
	return s.Orders.SummaryByUser(userID)
}

// Get enforces ownership: only the buyer or an administrator may read
// an order.
func (s *OrderService) Get(id int64, requester *domain.User) (*domain.Order, error) {
	order, err := s.Orders.ByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.ID && !requester.IsAdmin() {
		return nil, fmt.Errorf("order %d: %w", id, domain.ErrForbidden)
	}
	return order, nil
}

func (s *OrderService) ListAll(skip, limit int, search string) ([]repos.OrderDetail, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 || limit > 1000 {
		limit = 100
	}
	return s.Orders.ListAll(skip, limit, search)
}

func (s *OrderService) ByCode(code string) (*domain.Order, error) {
	order, err := s.Orders.ByCode(code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", code, domain.ErrNotFound)
	}
	return order, err
}

// ForCustomer lists a customer's orders for the admin surface; the
// target must exist and hold the CUSTOMER role.
func (s *OrderService) ForCustomer(userID int64) ([]repos.OrderDetail, error) {
	if _, err := s.Users.CustomerByID(userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", userID, domain.ErrNotFound)
		}
		return nil, err
	}
	return s.Orders.ListDetailedByUser(userID)
}
