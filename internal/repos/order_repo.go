package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"webshop/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderLine is one requested product+quantity pair.
type OrderLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Place validates stock, decrements it and creates the order with its
// items inside a single transaction. Either everything commits or no
// stock mutation and no order row become visible.
//
// Lines are processed in input order; duplicate product ids are each
// checked against the running stock value, and the guarded UPDATE
// (stock >= qty) makes oversell impossible even under concurrent
// placements.
func (r *OrderRepo) Place(userID int64, code string, lines []OrderLine) (*domain.Order, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var total float64
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		var p struct {
			ID    int64   `db:"id"`
			Name  string  `db:"name"`
			Price float64 `db:"price"`
		}
		err := tx.Get(&p, `SELECT id, name, price FROM products WHERE id=?`, l.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", l.ProductID, domain.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}

		res, err := tx.Exec(`
			UPDATE products SET stock = stock - ?
			WHERE id = ? AND stock >= ?
		`, l.Quantity, l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, fmt.Errorf("%w for product %s", domain.ErrInsufficientStock, p.Name)
		}

		total += p.Price * float64(l.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: p.Price, // snapshot of the price read above
		})
	}

	res, err := tx.Exec(`
		INSERT INTO orders(order_code, user_id, total_amount)
		VALUES(?, ?, ?)
	`, code, userID, total)
	if err != nil {
		return nil, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].OrderID = orderID
		ires, err := tx.Exec(`
			INSERT INTO order_items(order_id, product_id, quantity, unit_price)
			VALUES(?, ?, ?, ?)
		`, orderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i].ID, _ = ires.LastInsertId()
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.ByID(orderID)
}

func (r *OrderRepo) ByID(id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, order_code, user_id, total_amount, created_at
		FROM orders WHERE id=?
	`, id)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ByCode(code string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.Get(&o, `
		SELECT id, order_code, user_id, total_amount, created_at
		FROM orders WHERE order_code=?
	`, code)
	if err != nil {
		return nil, err
	}
	if err := r.attachItems(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) attachItems(o *domain.Order) error {
	o.Items = []domain.OrderItem{}
	return r.db.Select(&o.Items, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_items WHERE order_id=? ORDER BY id
	`, o.ID)
}

func (r *OrderRepo) ListByUser(userID int64) ([]domain.Order, error) {
	orders := []domain.Order{}
	err := r.db.Select(&orders, `
		SELECT id, order_code, user_id, total_amount, created_at
		FROM orders WHERE user_id=?
		ORDER BY datetime(created_at) DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.attachItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// OrderItemDetail is an order line joined with its product's details.
type OrderItemDetail struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"-"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	Quantity    int     `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
}

// OrderDetail is an order with joined item/product rows and the buyer.
type OrderDetail struct {
	ID          int64             `db:"id" json:"id"`
	OrderCode   string            `db:"order_code" json:"order_id"`
	UserID      int64             `db:"user_id" json:"-"`
	UserEmail   string            `db:"user_email" json:"user_email"`
	Username    string            `db:"username" json:"username"`
	TotalAmount float64           `db:"total_amount" json:"total_amount"`
	CreatedAt   string            `db:"created_at" json:"created_at"`
	Items       []OrderItemDetail `db:"-" json:"items"`
}

const orderDetailCols = `
	o.id, o.order_code, o.user_id, u.email AS user_email, u.username,
	o.total_amount, o.created_at`

func (r *OrderRepo) listDetails(query string, args ...any) ([]OrderDetail, error) {
	orders := []OrderDetail{}
	if err := r.db.Select(&orders, query, args...); err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = []OrderItemDetail{}
		err := r.db.Select(&orders[i].Items, `
			SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name,
			       p.image_url, oi.quantity, oi.unit_price,
			       (oi.quantity * oi.unit_price) AS subtotal
			FROM order_items oi
			JOIN products p ON p.id = oi.product_id
			WHERE oi.order_id = ?
			ORDER BY oi.id
		`, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// ListDetailedByUser returns a user's orders with product details,
// most recent first.
func (r *OrderRepo) ListDetailedByUser(userID int64) ([]OrderDetail, error) {
	return r.listDetails(`
		SELECT `+orderDetailCols+`
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.user_id = ?
		ORDER BY datetime(o.created_at) DESC, o.id DESC
	`, userID)
}

// ListAll is the admin listing with pagination and order-code search.
func (r *OrderRepo) ListAll(skip, limit int, search string) ([]OrderDetail, error) {
	if search != "" {
		return r.listDetails(`
			SELECT `+orderDetailCols+`
			FROM orders o JOIN users u ON u.id = o.user_id
			WHERE o.order_code LIKE ?
			ORDER BY datetime(o.created_at) DESC, o.id DESC
			LIMIT ? OFFSET ?
		`, "%"+search+"%", limit, skip)
	}
	return r.listDetails(`
		SELECT `+orderDetailCols+`
		FROM orders o JOIN users u ON u.id = o.user_id
		ORDER BY datetime(o.created_at) DESC, o.id DESC
		LIMIT ? OFFSET ?
	`, limit, skip)
}

// Summary aggregates one user's order history. A user with no orders
// gets zeros and a null last_order_date, not an error.
type Summary struct {
	TotalOrders       int     `db:"total_orders" json:"total_orders"`
	TotalSpent        float64 `db:"total_spent" json:"total_spent"`
	AverageOrderValue float64 `db:"average_order_value" json:"average_order_value"`
	LastOrderDate     *string `db:"last_order_date" json:"last_order_date"`
}

func (r *OrderRepo) SummaryByUser(userID int64) (Summary, error) {
	var s Summary
	err := r.db.Get(&s, `
		SELECT COUNT(id)                      AS total_orders,
		       COALESCE(SUM(total_amount), 0) AS total_spent,
		       COALESCE(AVG(total_amount), 0) AS average_order_value,
		       MAX(created_at)                AS last_order_date
		FROM orders WHERE user_id = ?
	`, userID)
	return s, err
}
