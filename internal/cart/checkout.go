package cart

import (
	"context"
	"errors"
	"fmt"

	"ShopFront/internal/store"
)

var ErrEmptyCart = errors.New("cart is empty")

// StockError reports the first cart line whose requested quantity
// exceeds current stock. The whole checkout is rejected.
type StockError struct {
	ProductName string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %s", e.ProductName)
}

// Engine applies a cart against the inventory: every line is validated
// against current stock first, and only if all pass are the decrements
// and the status rederivation persisted. Both passes run inside one
// store Update, so a failed line leaves the collection untouched and a
// concurrent checkout cannot overwrite this one.
type Engine struct {
	Products store.ProductStore
}

func (e *Engine) Checkout(ctx context.Context, cart map[int]int) error {
	if len(cart) == 0 {
		return ErrEmptyCart
	}

	return e.Products.Update(ctx, func(products []store.Product) ([]store.Product, error) {
		byID := make(map[int]int, len(products))
		for i, p := range products {
			byID[p.ID] = i
		}

		// Lines for products that no longer exist are skipped, as the
		// cart may outlive a manager delete.
		for pid, qty := range cart {
			i, ok := byID[pid]
			if !ok {
				continue
			}
			if products[i].Stock < qty {
				return nil, &StockError{ProductName: products[i].Name}
			}
		}

		for pid, qty := range cart {
			i, ok := byID[pid]
			if !ok {
				continue
			}
			products[i].Stock -= qty
			products[i].Status = store.StatusFor(products[i].Stock)
		}

		return products, nil
	})
}
