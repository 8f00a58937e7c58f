package repos

import (
	"github.com/jmoiron/sqlx"

	"webshop/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id, email, username, password_hash, role, created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EmailTaken and UsernameTaken use case-insensitive matching, same as
// the unique index.
func (r *UserRepo) EmailTaken(email string) (bool, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, email)
	return n > 0, err
}

func (r *UserRepo) UsernameTaken(username string) (bool, error) {
	var n int
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(username)=LOWER(?)`, username)
	return n > 0, err
}

func (r *UserRepo) Create(email, username, hash string, role domain.Role) (*domain.User, error) {
	res, err := r.DB.Exec(`
		INSERT INTO users(email, username, password_hash, role)
		VALUES(?, ?, ?, ?)
	`, email, username, hash, role)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.ByID(id)
}

// CustomerRow is a customer plus order statistics, used by the admin
// customer listing.
type CustomerRow struct {
	ID         int64       `db:"id" json:"id"`
	Email      string      `db:"email" json:"email"`
	Username   string      `db:"username" json:"username"`
	Role       domain.Role `db:"role" json:"role"`
	CreatedAt  string      `db:"created_at" json:"created_at"`
	OrderCount int         `db:"order_count" json:"order_count"`
	TotalSpent float64     `db:"total_spent" json:"total_spent"`
}

func (r *UserRepo) ListCustomers(skip, limit int) ([]CustomerRow, error) {
	rows := []CustomerRow{}
	err := r.DB.Select(&rows, `
		SELECT u.id, u.email, u.username, u.role, u.created_at,
		       COUNT(o.id) AS order_count,
		       COALESCE(SUM(o.total_amount), 0) AS total_spent
		FROM users u
		LEFT JOIN orders o ON o.user_id = u.id
		WHERE u.role = 'CUSTOMER'
		GROUP BY u.id
		ORDER BY u.created_at DESC, u.id DESC
		LIMIT ? OFFSET ?
	`, limit, skip)
	return rows, err
}

// CustomerByID returns a user only when they hold the CUSTOMER role.
func (r *UserRepo) CustomerByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=? AND role='CUSTOMER'`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
