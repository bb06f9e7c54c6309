package manager

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ShopFront/internal/store"
)

var (
	ErrMissingFields = errors.New("missing fields")
	ErrBadNumber     = errors.New("price must be a number and stock an integer")
)

// Input is the manager add form. All fields arrive as strings; price
// must parse as a number and stock as a non-negative integer, but both
// are stored as submitted (price keeps its decimal text form).
type Input struct {
	Category string
	Name     string
	Weight   string
	Price    string
	Stock    string
}

type Service struct {
	Products store.ProductStore
}

func parseStock(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, ErrBadNumber
	}
	return n, nil
}

func checkPrice(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return ErrBadNumber
	}
	return nil
}

func (s *Service) Add(ctx context.Context, in Input) error {
	in.Category = strings.TrimSpace(in.Category)
	in.Name = strings.TrimSpace(in.Name)
	in.Weight = strings.TrimSpace(in.Weight)
	in.Price = strings.TrimSpace(in.Price)
	in.Stock = strings.TrimSpace(in.Stock)

	if in.Category == "" || in.Name == "" || in.Weight == "" || in.Price == "" || in.Stock == "" {
		return ErrMissingFields
	}
	if err := checkPrice(in.Price); err != nil {
		return err
	}
	stock, err := parseStock(in.Stock)
	if err != nil {
		return err
	}

	return s.Products.Update(ctx, func(products []store.Product) ([]store.Product, error) {
		return append(products, store.Product{
			ID:       store.NextID(products),
			Category: in.Category,
			Name:     in.Name,
			Weight:   in.Weight,
			Price:    in.Price,
			Status:   store.StatusFor(stock),
			Stock:    stock,
		}), nil
	})
}

// Edit mutates only price and stock; everything else on the record is
// untouched and the status is rederived. The record is resolved first,
// so an unknown id wins over bad input.
func (s *Service) Edit(ctx context.Context, id int, price, stock string) error {
	price = strings.TrimSpace(price)
	stock = strings.TrimSpace(stock)

	return s.Products.Update(ctx, func(products []store.Product) ([]store.Product, error) {
		idx := -1
		for i := range products {
			if products[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, store.ErrProductMissing
		}

		if price == "" || stock == "" {
			return nil, ErrMissingFields
		}
		if err := checkPrice(price); err != nil {
			return nil, err
		}
		stockInt, err := parseStock(stock)
		if err != nil {
			return nil, err
		}

		products[idx].Price = price
		products[idx].Stock = stockInt
		products[idx].Status = store.StatusFor(stockInt)
		return products, nil
	})
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.Products.Update(ctx, func(products []store.Product) ([]store.Product, error) {
		kept := products[:0]
		for _, p := range products {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		return kept, nil
	})
}

func (s *Service) Get(ctx context.Context, id int) (store.Product, bool, error) {
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
