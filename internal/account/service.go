package account

import (
	"context"

	"ShopFront/internal/store"
)

// Service wraps the user store with the account rules: usernames are
// unique, signup always creates a customer, and login is an exact
// match against the stored record.
type Service struct {
	Users store.UserStore
}

func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	users, err := s.Users.LoadAll(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) CreateCustomer(ctx context.Context, username, password string) error {
	return s.Users.Create(ctx, store.User{
		Username: username,
		Password: password,
		Role:     store.RoleCustomer,
	})
}

func (s *Service) Authenticate(ctx context.Context, username, password string) (store.User, bool, error) {
	return s.Users.Authenticate(ctx, username, password)
}
