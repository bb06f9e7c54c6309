package store

import (
	"context"
	"errors"
)

const (
	RoleCustomer = "customer"
	RoleManager  = "manager"

	StatusAvailable  = "Available"
	StatusOutOfStock = "Out of stock"
)

var (
	ErrUsernameTaken  = errors.New("username already taken")
	ErrProductMissing = errors.New("product not found")
)

type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

type Product struct {
	ID       int    `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Weight   string `json:"weight"`
	Price    string `json:"price"`
	Status   string `json:"status"`
	Stock    int    `json:"stock"`
}

// StatusFor derives the availability label from the stock count. The
// stored status column is never trusted: it is recomputed on every save.
func StatusFor(stock int) string {
	if stock > 0 {
		return StatusAvailable
	}
	return StatusOutOfStock
}

type UserStore interface {
	// LoadAll returns every user record in file order. A missing
	// backing collection is an empty slice, not an error.
	LoadAll(ctx context.Context) ([]User, error)

	// Create appends one record, enforcing username uniqueness at this
	// layer. Returns ErrUsernameTaken on a duplicate.
	Create(ctx context.Context, u User) error

	// Authenticate returns the first record matching both fields
	// exactly. The second result is false when none matches.
	Authenticate(ctx context.Context, username, password string) (User, bool, error)

	Ping(ctx context.Context) error
}

type ProductStore interface {
	LoadAll(ctx context.Context) ([]Product, error)

	// SaveAll rewrites the whole collection in a fixed column order,
	// re-deriving every status from stock.
	SaveAll(ctx context.Context, products []Product) error

	// Update runs fn over the current collection and persists its
	// result, all under the store's writer lock. An error from fn
	// aborts the update with nothing written.
	Update(ctx context.Context, fn func(products []Product) ([]Product, error)) error

	Ping(ctx context.Context) error
}

// NextID assigns identifiers the way the manager add flow always has:
// one past the current maximum, computed fresh each time.
func NextID(products []Product) int {
	max := 0
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}
