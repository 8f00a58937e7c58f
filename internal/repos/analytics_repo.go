package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AnalyticsRepo holds the read-only aggregate queries backing the
// dashboards. Nothing here mutates state.
type AnalyticsRepo struct{ db *sqlx.DB }

func NewAnalyticsRepo(db *sqlx.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

func (r *AnalyticsRepo) count(query string, args ...any) (int, error) {
	var n int
	err := r.db.Get(&n, query, args...)
	return n, err
}

func (r *AnalyticsRepo) CountProducts() (int, error) {
	return r.count(`SELECT COUNT(*) FROM products`)
}

func (r *AnalyticsRepo) CountOrders() (int, error) {
	return r.count(`SELECT COUNT(*) FROM orders`)
}

func (r *AnalyticsRepo) CountUsers() (int, error) {
	return r.count(`SELECT COUNT(*) FROM users`)
}

func (r *AnalyticsRepo) CountUsersByRole(role string) (int, error) {
	return r.count(`SELECT COUNT(*) FROM users WHERE role=?`, role)
}

func (r *AnalyticsRepo) CountReviews() (int, error) {
	return r.count(`SELECT COUNT(*) FROM reviews`)
}

func (r *AnalyticsRepo) TotalRevenue() (float64, error) {
	var v float64
	err := r.db.Get(&v, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`)
	return v, err
}

// AverageRating is the raw mean over all reviews, 0 with none.
func (r *AnalyticsRepo) AverageRating() (float64, error) {
	var v float64
	err := r.db.Get(&v, `SELECT COALESCE(AVG(rating), 0) FROM reviews`)
	return v, err
}

func (r *AnalyticsRepo) OrdersToday() (int, float64, error) {
	var row struct {
		Orders  int     `db:"orders"`
		Revenue float64 `db:"revenue"`
	}
	err := r.db.Get(&row, `
		SELECT COUNT(id) AS orders, COALESCE(SUM(total_amount), 0) AS revenue
		FROM orders WHERE date(created_at) = date('now')
	`)
	return row.Orders, row.Revenue, err
}

func (r *AnalyticsRepo) NewUsersToday() (int, error) {
	return r.count(`SELECT COUNT(*) FROM users WHERE date(created_at) = date('now')`)
}

// ActiveUsers counts distinct buyers within the trailing window.
func (r *AnalyticsRepo) ActiveUsers(days int) (int, error) {
	return r.count(`
		SELECT COUNT(DISTINCT user_id) FROM orders
		WHERE created_at >= datetime('now', ?)
	`, fmt.Sprintf("-%d days", days))
}

func (r *AnalyticsRepo) UsersWithOrders() (int, error) {
	return r.count(`SELECT COUNT(DISTINCT user_id) FROM orders`)
}

// ProductStat is a per-product sales rollup.
type ProductStat struct {
	ProductID     int64   `db:"product_id" json:"product_id"`
	ProductName   string  `db:"product_name" json:"product_name"`
	Orders        int     `db:"orders" json:"orders"`
	Revenue       float64 `db:"revenue" json:"revenue"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
	StockLevel    int     `db:"stock_level" json:"stock_level"`
}

// TopSellingProducts orders by order-line count descending; ties break
// by product id, i.e. insertion order.
func (r *AnalyticsRepo) TopSellingProducts(limit int) ([]ProductStat, error) {
	out := []ProductStat{}
	err := r.db.Select(&out, `
		SELECT p.id AS product_id, p.name AS product_name,
		       COUNT(oi.id) AS orders,
		       COALESCE(SUM(oi.unit_price * oi.quantity), 0) AS revenue,
		       COALESCE((SELECT ROUND(AVG(rv.rating), 1) FROM reviews rv WHERE rv.product_id = p.id), 0) AS average_rating,
		       (SELECT COUNT(*) FROM reviews rv WHERE rv.product_id = p.id) AS review_count,
		       p.stock AS stock_level
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY orders DESC, p.id
		LIMIT ?
	`, limit)
	return out, err
}

// ProductPerformance is the full per-product rollup, revenue descending,
// ties in stable input (id) order.
func (r *AnalyticsRepo) ProductPerformance() ([]ProductStat, error) {
	out := []ProductStat{}
	err := r.db.Select(&out, `
		SELECT p.id AS product_id, p.name AS product_name,
		       COUNT(oi.id) AS orders,
		       COALESCE(SUM(oi.unit_price * oi.quantity), 0) AS revenue,
		       COALESCE((SELECT ROUND(AVG(rv.rating), 1) FROM reviews rv WHERE rv.product_id = p.id), 0) AS average_rating,
		       (SELECT COUNT(*) FROM reviews rv WHERE rv.product_id = p.id) AS review_count,
		       p.stock AS stock_level
		FROM products p
		LEFT JOIN order_items oi ON oi.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY revenue DESC, p.id
	`)
	return out, err
}

// RecentOrder is a row of the "latest orders" dashboard table.
type RecentOrder struct {
	ID          int64   `db:"id" json:"id"`
	OrderCode   string  `db:"order_code" json:"order_id"`
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
	UserEmail   string  `db:"user_email" json:"user_email"`
}

func (r *AnalyticsRepo) RecentOrders(limit int) ([]RecentOrder, error) {
	out := []RecentOrder{}
	err := r.db.Select(&out, `
		SELECT o.id, o.order_code, o.total_amount, o.created_at,
		       u.email AS user_email
		FROM orders o JOIN users u ON u.id = o.user_id
		ORDER BY datetime(o.created_at) DESC, o.id DESC
		LIMIT ?
	`, limit)
	return out, err
}

// Bucket is one observed aggregation bucket keyed by a strftime string
// (month "2006-01", day "2006-01-02", weekday "0".."6", hour "00".."23").
type Bucket struct {
	Key     string  `db:"bucket"`
	Orders  int     `db:"orders"`
	Revenue float64 `db:"revenue"`
}

func (r *AnalyticsRepo) bucket(format, since string) ([]Bucket, error) {
	out := []Bucket{}
	var err error
	if since == "" {
		err = r.db.Select(&out, `
			SELECT strftime(?, created_at) AS bucket,
			       COUNT(id) AS orders,
			       COALESCE(SUM(total_amount), 0) AS revenue
			FROM orders
			GROUP BY bucket ORDER BY bucket
		`, format)
	} else {
		err = r.db.Select(&out, `
			SELECT strftime(?, created_at) AS bucket,
			       COUNT(id) AS orders,
			       COALESCE(SUM(total_amount), 0) AS revenue
			FROM orders
			WHERE created_at >= datetime('now', ?)
			GROUP BY bucket ORDER BY bucket
		`, format, since)
	}
	return out, err
}

func (r *AnalyticsRepo) MonthlyOrders(days int) ([]Bucket, error) {
	return r.bucket(`%Y-%m`, fmt.Sprintf("-%d days", days))
}

func (r *AnalyticsRepo) OrdersByDayOfWeek() ([]Bucket, error) {
	return r.bucket(`%w`, "")
}

func (r *AnalyticsRepo) OrdersByHour() ([]Bucket, error) {
	return r.bucket(`%H`, "")
}

func (r *AnalyticsRepo) DailyOrders(days int) ([]Bucket, error) {
	return r.bucket(`%Y-%m-%d`, fmt.Sprintf("-%d days", days))
}

// NewUsersByDay groups registrations in the trailing window by calendar
// date.
type CountBucket struct {
	Key   string `db:"bucket"`
	Count int    `db:"n"`
}

func (r *AnalyticsRepo) NewUsersByDay(days int) ([]CountBucket, error) {
	out := []CountBucket{}
	err := r.db.Select(&out, `
		SELECT date(created_at) AS bucket, COUNT(id) AS n
		FROM users
		WHERE created_at >= datetime('now', ?)
		GROUP BY bucket ORDER BY bucket
	`, fmt.Sprintf("-%d days", days))
	return out, err
}

func (r *AnalyticsRepo) RatingDistribution() ([]CountBucket, error) {
	out := []CountBucket{}
	err := r.db.Select(&out, `
		SELECT CAST(rating AS TEXT) AS bucket, COUNT(id) AS n
		FROM reviews
		GROUP BY rating ORDER BY rating
	`)
	return out, err
}

// RatedProduct is a product's review rollup for the top-rated listing.
type RatedProduct struct {
	ProductID     int64   `db:"product_id" json:"product_id"`
	ProductName   string  `db:"product_name" json:"product_name"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
}

// TopRatedProducts returns products with at least one review, best
// average first.
func (r *AnalyticsRepo) TopRatedProducts(limit int) ([]RatedProduct, error) {
	out := []RatedProduct{}
	err := r.db.Select(&out, `
		SELECT p.id AS product_id, p.name AS product_name,
		       ROUND(AVG(rv.rating), 2) AS average_rating,
		       COUNT(rv.id) AS review_count
		FROM products p
		JOIN reviews rv ON rv.product_id = p.id
		GROUP BY p.id, p.name
		HAVING COUNT(rv.id) > 0
		ORDER BY AVG(rv.rating) DESC, p.id
		LIMIT ?
	`, limit)
	return out, err
}

// RatingTrendPoint is one observed day of the review-rating trend.
type RatingTrendPoint struct {
	Date          string  `db:"bucket" json:"date"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
}

func (r *AnalyticsRepo) RatingTrend(days int) ([]RatingTrendPoint, error) {
	out := []RatingTrendPoint{}
	err := r.db.Select(&out, `
		SELECT date(created_at) AS bucket,
		       COALESCE(AVG(rating), 0) AS average_rating,
		       COUNT(id) AS review_count
		FROM reviews
		WHERE created_at >= datetime('now', ?)
		GROUP BY bucket ORDER BY bucket
	`, fmt.Sprintf("-%d days", days))
	return out, err
}

func (r *AnalyticsRepo) ProductsWithReviews() (int, error) {
	return r.count(`SELECT COUNT(DISTINCT product_id) FROM reviews`)
}

// SentimentCounts splits reviews into positive (>=4), neutral (=3) and
// negative (<=2).
func (r *AnalyticsRepo) SentimentCounts() (positive, neutral, negative int, err error) {
	var row struct {
		Positive int `db:"positive"`
		Neutral  int `db:"neutral"`
		Negative int `db:"negative"`
	}
	err = r.db.Get(&row, `
		SELECT COALESCE(SUM(rating >= 4), 0) AS positive,
		       COALESCE(SUM(rating = 3), 0)  AS neutral,
		       COALESCE(SUM(rating <= 2), 0) AS negative
		FROM reviews
	`)
	return row.Positive, row.Neutral, row.Negative, err
}
