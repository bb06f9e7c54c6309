package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"ShopFront/internal/store"
)

func newService(t *testing.T, products []store.Product) *Service {
	t.Helper()

	ps := store.NewCSVProductStore(filepath.Join(t.TempDir(), "products.csv"))
	if products != nil {
		if err := ps.SaveAll(context.Background(), products); err != nil {
			t.Fatalf("seed products: %v", err)
		}
	}
	return &Service{Products: ps}
}

func TestListByCategory_Grouping(t *testing.T) {
	svc := newService(t, []store.Product{
		{ID: 1, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 10},
		{ID: 2, Category: "Dairy", Name: "Milk", Weight: "1l", Price: "1.20", Stock: 5},
		{ID: 3, Category: "Fruit", Name: "Banana", Weight: "1kg", Price: "1.00", Stock: 7},
		{ID: 4, Name: "Mystery Box", Weight: "2kg", Price: "9.99", Stock: 1},
	})

	groups, err := svc.ListByCategory(context.Background())
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}

	if len(groups) != 3 {
		t.Fatalf("groups=%d want=3", len(groups))
	}

	// First-seen category order, file order within a group.
	if groups[0].Category != "Fruit" || groups[1].Category != "Dairy" || groups[2].Category != FallbackCategory {
		t.Fatalf("category order: %q %q %q", groups[0].Category, groups[1].Category, groups[2].Category)
	}
	if groups[0].Products[0].Name != "Apple" || groups[0].Products[1].Name != "Banana" {
		t.Fatalf("fruit order: %+v", groups[0].Products)
	}
	if groups[2].Products[0].Name != "Mystery Box" {
		t.Fatalf("fallback bucket: %+v", groups[2].Products)
	}
}

func TestListByCategory_Empty(t *testing.T) {
	svc := newService(t, nil)

	groups, err := svc.ListByCategory(context.Background())
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("groups=%v want none", groups)
	}
}

func TestGetByID(t *testing.T) {
	svc := newService(t, []store.Product{
		{ID: 7, Category: "Fruit", Name: "Apple", Weight: "1kg", Price: "2.50", Stock: 3},
	})

	p, found, err := svc.GetByID(context.Background(), 7)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if p.Name != "Apple" {
		t.Fatalf("product=%+v", p)
	}

	_, found, err = svc.GetByID(context.Background(), 8)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found {
		t.Fatalf("unknown id found")
	}
}
