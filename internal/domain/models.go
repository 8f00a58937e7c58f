package domain

type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleCustomer      Role = "CUSTOMER"
)

func (r Role) Valid() bool {
	return r == RoleAdministrator || r == RoleCustomer
}

type User struct {
	ID        int64  `db:"id"`
	Email     string `db:"email"`
	Username  string `db:"username"`
	Hash      string `db:"password_hash"`
	Role      Role   `db:"role"`
	CreatedAt string `db:"created_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdministrator }

// UserOut is the public projection of a User; is_admin is computed on
// read, never stored.
type UserOut struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func (u *User) Out() UserOut {
	return UserOut{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsAdmin:   u.IsAdmin(),
		CreatedAt: u.CreatedAt,
	}
}

type Product struct {
	ID          int64   `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	Price       float64 `db:"price" json:"price"`
	Stock       int     `db:"stock" json:"stock"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	CreatedAt   string  `db:"created_at" json:"created_at"`

	// Projections over the product's reviews, filled by the repo on read.
	AverageRating float64 `db:"average_rating" json:"average_rating"`
	ReviewCount   int     `db:"review_count" json:"review_count"`
}

type Order struct {
	ID          int64   `db:"id" json:"id"`
	OrderCode   string  `db:"order_code" json:"order_id"`
	UserID      int64   `db:"user_id" json:"-"`
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
	CreatedAt   string  `db:"created_at" json:"created_at"`

	Items []OrderItem `db:"-" json:"items"`
}

type OrderItem struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"-"`
	ProductID int64 `db:"product_id" json:"product_id"`
	Quantity  int   `db:"quantity" json:"quantity"`
	// Price snapshotted at purchase time; never re-read from the product.
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
}

type Review struct {
	ID        int64   `db:"id" json:"id"`
	UserID    int64   `db:"user_id" json:"user_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Rating    int     `db:"rating" json:"rating"`
	Feedback  *string `db:"feedback" json:"feedback"`
	CreatedAt string  `db:"created_at" json:"created_at"`

	User *UserOut `db:"-" json:"user,omitempty"`
}
