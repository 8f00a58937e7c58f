package repos

import (
	"github.com/jmoiron/sqlx"

	"webshop/internal/domain"
)

type ReviewRepo struct{ db *sqlx.DB }

func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewCols = `id, user_id, product_id, rating, feedback, created_at`

func (r *ReviewRepo) ByID(id int64) (*domain.Review, error) {
	var rev domain.Review
	err := r.db.Get(&rev, `SELECT `+reviewCols+` FROM reviews WHERE id=?`, id)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// Exists reports whether the (user, product) pair already has a review.
func (r *ReviewRepo) Exists(userID, productID int64) (bool, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM reviews WHERE user_id=? AND product_id=?`, userID, productID)
	return n > 0, err
}

func (r *ReviewRepo) Create(userID, productID int64, rating int, feedback *string) (*domain.Review, error) {
	res, err := r.db.Exec(`
		INSERT INTO reviews(user_id, product_id, rating, feedback)
		VALUES(?, ?, ?, ?)
	`, userID, productID, rating, feedback)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.ByID(id)
}

// ReviewPatch carries optional updates; nil means "leave as is".
type ReviewPatch struct {
	Rating   *int
	Feedback *string
}

func (r *ReviewRepo) Update(id int64, patch ReviewPatch) (*domain.Review, error) {
	_, err := r.db.Exec(`
		UPDATE reviews SET
			rating   = COALESCE(?, rating),
			feedback = COALESCE(?, feedback)
		WHERE id = ?
	`, patch.Rating, patch.Feedback, id)
	if err != nil {
		return nil, err
	}
	return r.ByID(id)
}

func (r *ReviewRepo) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM reviews WHERE id=?`, id)
	return err
}

type reviewWithUser struct {
	domain.Review
	UEmail     string      `db:"u_email"`
	UUsername  string      `db:"u_username"`
	URole      domain.Role `db:"u_role"`
	UCreatedAt string      `db:"u_created_at"`
}

func (r *ReviewRepo) listWithUser(where string, arg any) ([]domain.Review, error) {
	rows := []reviewWithUser{}
	err := r.db.Select(&rows, `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.feedback, r.created_at,
		       u.email AS u_email, u.username AS u_username,
		       u.role AS u_role, u.created_at AS u_created_at
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE `+where+`
		ORDER BY r.id
	`, arg)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		rev := row.Review
		rev.User = &domain.UserOut{
			ID:        row.UserID,
			Email:     row.UEmail,
			Username:  row.UUsername,
			Role:      row.URole,
			IsAdmin:   row.URole == domain.RoleAdministrator,
			CreatedAt: row.UCreatedAt,
		}
		out = append(out, rev)
	}
	return out, nil
}

func (r *ReviewRepo) ListByProduct(productID int64) ([]domain.Review, error) {
	return r.listWithUser(`r.product_id = ?`, productID)
}

func (r *ReviewRepo) ListByUser(userID int64) ([]domain.Review, error) {
	return r.listWithUser(`r.user_id = ?`, userID)
}
