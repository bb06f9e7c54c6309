package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// The flat files are semicolon-delimited with a header row. Users are
// append-only; products are rewritten in full on every mutation. The
// rewrite is not crash-safe, which is an accepted limitation of the
// format, but all read-modify-write cycles run under a single writer
// lock so concurrent requests cannot lose each other's updates.

const fileDelim = ';'

var userColumns = []string{"username", "password", "role"}

var productColumns = []string{"id", "category", "name", "weight", "price", "status", "stock"}

func readRows(path string) (header []string, rows [][]string, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = fileDelim
	r.FieldsPerRecord = -1

	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

type CSVUserStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVUserStore(path string) *CSVUserStore {
	return &CSVUserStore{path: path}
}

func (s *CSVUserStore) LoadAll(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CSVUserStore) loadLocked() ([]User, error) {
	header, rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}

	iUser := columnIndex(header, "username")
	iPass := columnIndex(header, "password")
	iRole := columnIndex(header, "role")

	users := make([]User, 0, len(rows))
	for _, row := range rows {
		users = append(users, User{
			Username: field(row, iUser),
			Password: field(row, iPass),
			Role:     field(row, iRole),
		})
	}
	return users, nil
}

// Create appends one row, writing the header first when the file is
// absent or empty. The duplicate check happens under the same lock as
// the append, so two concurrent signups cannot both slip through.
func (s *CSVUserStore) Create(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Username == u.Username {
			return ErrUsernameTaken
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	w.Comma = fileDelim

	if info.Size() == 0 {
		if err := w.Write(userColumns); err != nil {
			return err
		}
	}
	if err := w.Write([]string{u.Username, u.Password, u.Role}); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

func (s *CSVUserStore) Authenticate(ctx context.Context, username, password string) (User, bool, error) {
	users, err := s.LoadAll(ctx)
	if err != nil {
		return User{}, false, err
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (s *CSVUserStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

type CSVProductStore struct {
	mu   sync.Mutex
	path string
}

func NewCSVProductStore(path string) *CSVProductStore {
	return &CSVProductStore{path: path}
}

func (s *CSVProductStore) LoadAll(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *CSVProductStore) loadLocked() ([]Product, error) {
	header, rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}

	iID := columnIndex(header, "id")
	if iID < 0 {
		// Legacy exports capitalize the identifier column.
		iID = columnIndex(header, "Id")
	}
	iCat := columnIndex(header, "category")
	iName := columnIndex(header, "name")
	iWeight := columnIndex(header, "weight")
	iPrice := columnIndex(header, "price")
	iStatus := columnIndex(header, "status")
	iStock := columnIndex(header, "stock")

	products := make([]Product, 0, len(rows))
	for n, row := range rows {
		id, err := strconv.Atoi(field(row, iID))
		if err != nil {
			return nil, fmt.Errorf("products row %d: bad id %q", n+1, field(row, iID))
		}
		stock, err := strconv.Atoi(field(row, iStock))
		if err != nil {
			return nil, fmt.Errorf("products row %d: bad stock %q", n+1, field(row, iStock))
		}

		products = append(products, Product{
			ID:       id,
			Category: field(row, iCat),
			Name:     field(row, iName),
			Weight:   field(row, iWeight),
			Price:    field(row, iPrice),
			Status:   field(row, iStatus),
			Stock:    stock,
		})
	}
	return products, nil
}

func (s *CSVProductStore) SaveAll(ctx context.Context, products []Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(products)
}

func (s *CSVProductStore) saveLocked(products []Product) error {
	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = fileDelim

	if err := w.Write(productColumns); err != nil {
		return err
	}
	for _, p := range products {
		row := []string{
			strconv.Itoa(p.ID),
			p.Category,
			p.Name,
			p.Weight,
			p.Price,
			StatusFor(p.Stock),
			strconv.Itoa(p.Stock),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (s *CSVProductStore) Update(ctx context.Context, fn func(products []Product) ([]Product, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.loadLocked()
	if err != nil {
		return err
	}

	updated, err := fn(products)
	if err != nil {
		return err
	}
	return s.saveLocked(updated)
}

func (s *CSVProductStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}
