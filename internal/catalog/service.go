package catalog

import (
	"context"

	"ShopFront/internal/store"
)

// FallbackCategory buckets products with no category set.
const FallbackCategory = "Other"

// Group is one category with its products in file order.
type Group struct {
	Category string          `json:"category"`
	Products []store.Product `json:"products"`
}

type Service struct {
	Products store.ProductStore
}

// ListByCategory groups the collection by category. Categories appear
// in first-seen order and products keep their file order within each
// group.
func (s *Service) ListByCategory(ctx context.Context) ([]Group, error) {
	products, err := s.Products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]Group, 0, 8)

	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = FallbackCategory
		}

		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, Group{Category: cat})
		}
		groups[i].Products = append(groups[i].Products, p)
	}

	return groups, nil
}

func (s *Service) GetByID(ctx context.Context, id int) (store.Product, bool, error) {
	products, err := s.Products.LoadAll(ctx)
	if err != nil {
		return store.Product{}, false, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return store.Product{}, false, nil
}
