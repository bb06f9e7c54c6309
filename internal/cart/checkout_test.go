package cart

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ShopFront/internal/store"
)

func newEngine(t *testing.T, products []store.Product) (*Engine, store.ProductStore) {
	t.Helper()

	ps := store.NewCSVProductStore(filepath.Join(t.TempDir(), "products.csv"))
	if err := ps.SaveAll(context.Background(), products); err != nil {
		t.Fatalf("seed products: %v", err)
	}
	return &Engine{Products: ps}, ps
}

func TestCheckout_EmptyCart(t *testing.T) {
	e, _ := newEngine(t, []store.Product{
		{ID: 1, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 10},
	})

	if err := e.Checkout(context.Background(), map[int]int{}); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err=%v want=ErrEmptyCart", err)
	}
}

func TestCheckout_DecrementsExactly(t *testing.T) {
	e, ps := newEngine(t, []store.Product{
		{ID: 1, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 10},
		{ID: 2, Category: "Fruit", Name: "Banana", Weight: "1kg", Price: "1.00", Stock: 5},
	})

	if err := e.Checkout(context.Background(), map[int]int{1: 3}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	out, err := ps.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if out[0].Stock != 7 || out[0].Status != store.StatusAvailable {
		t.Fatalf("apple=%+v", out[0])
	}
	if out[1].Stock != 5 {
		t.Fatalf("banana stock changed: %+v", out[1])
	}
}

func TestCheckout_AllOrNothing(t *testing.T) {
	e, ps := newEngine(t, []store.Product{
		{ID: 1, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 10},
		{ID: 2, Category: "Fruit", Name: "Banana", Weight: "1kg", Price: "1.00", Stock: 2},
	})

	err := e.Checkout(context.Background(), map[int]int{1: 3, 2: 5})

	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("err=%v want StockError", err)
	}
	if stockErr.ProductName != "Banana" {
		t.Fatalf("short product=%q", stockErr.ProductName)
	}

	out, err := ps.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if out[0].Stock != 10 || out[1].Stock != 2 {
		t.Fatalf("partial application: %+v", out)
	}
}

func TestCheckout_DrainsToOutOfStock(t *testing.T) {
	e, ps := newEngine(t, []store.Product{
		{ID: 1, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 3},
	})

	if err := e.Checkout(context.Background(), map[int]int{1: 3}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	out, err := ps.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if out[0].Stock != 0 || out[0].Status != store.StatusOutOfStock {
		t.Fatalf("apple=%+v", out[0])
	}
}

func TestCheckout_SkipsVanishedProducts(t *testing.T) {
	e, ps := newEngine(t, []store.Product{
		{ID: 1, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 10},
	})

	// Line 99 was deleted by a manager after it went in the cart.
	if err := e.Checkout(context.Background(), map[int]int{1: 1, 99: 4}); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	out, err := ps.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(out) != 1 || out[0].Stock != 9 {
		t.Fatalf("out=%+v", out)
	}
}
