package repos

import (
	"github.com/jmoiron/sqlx"

	"webshop/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// productCols includes the review projections; average_rating is the
// mean rating rounded to 1 decimal, 0 with no reviews.
const productCols = `
	p.id, p.name, p.description, p.price, p.stock, p.image_url, p.created_at,
	COALESCE((SELECT ROUND(AVG(r.rating), 1) FROM reviews r WHERE r.product_id = p.id), 0) AS average_rating,
	(SELECT COUNT(*) FROM reviews r WHERE r.product_id = p.id) AS review_count`

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products p ORDER BY p.id`)
	return out, err
}

func (r *ProductRepo) ByID(id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products p WHERE p.id=?`, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) Create(name string, description *string, price float64, stock int, imageURL *string) (*domain.Product, error) {
	res, err := r.db.Exec(`
		INSERT INTO products(name, description, price, stock, image_url)
		VALUES(?, ?, ?, ?, ?)
	`, name, description, price, stock, imageURL)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.ByID(id)
}

// ProductPatch carries optional field updates; nil means "leave as is".
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	Stock       *int
	ImageURL    *string
}

func (r *ProductRepo) Update(id int64, patch ProductPatch) (*domain.Product, error) {
	// COALESCE keeps the stored value for fields the patch omits.
	_, err := r.db.Exec(`
		UPDATE products SET
			name        = COALESCE(?, name),
			description = COALESCE(?, description),
			price       = COALESCE(?, price),
			stock       = COALESCE(?, stock),
			image_url   = COALESCE(?, image_url)
		WHERE id = ?
	`, patch.Name, patch.Description, patch.Price, patch.Stock, patch.ImageURL, id)
	if err != nil {
		return nil, err
	}
	return r.ByID(id)
}

// Delete removes the product and its order lines in one transaction.
// Deleting order lines here is the explicit cleanup step the admin
// delete performs; it is not a storage-layer integrity guarantee.
func (r *ProductRepo) Delete(id int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM order_items WHERE product_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM reviews WHERE product_id=?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM products WHERE id=?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
