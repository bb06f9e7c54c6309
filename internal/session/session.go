package session

import (
	"context"

	"github.com/google/uuid"

	"ShopFront/internal/store"
)

// Session is the per-browser state: who is logged in, the cart, and
// any notices queued for the next page view. The cart maps product id
// to requested quantity.
type Session struct {
	ID      string      `json:"id"`
	User    string      `json:"user,omitempty"`
	Role    string      `json:"role,omitempty"`
	Cart    map[int]int `json:"cart"`
	Notices []string    `json:"notices,omitempty"`
}

func New() *Session {
	return &Session{
		ID:   "s_" + uuid.NewString(),
		Cart: make(map[int]int),
	}
}

func (s *Session) LoggedIn() bool { return s.User != "" }

func (s *Session) IsManager() bool { return s.Role == store.RoleManager }

// Flash queues a one-line notice for the next page view.
func (s *Session) Flash(msg string) {
	s.Notices = append(s.Notices, msg)
}

// DrainNotices returns and clears the queued notices.
func (s *Session) DrainNotices() []string {
	n := s.Notices
	s.Notices = nil
	return n
}

// Clear resets everything but the id, as logout does.
func (s *Session) Clear() {
	s.User = ""
	s.Role = ""
	s.Cart = make(map[int]int)
	s.Notices = nil
}

func (s *Session) ClearCart() {
	s.Cart = make(map[int]int)
}

func (s *Session) clone() *Session {
	c := &Session{
		ID:   s.ID,
		User: s.User,
		Role: s.Role,
		Cart: make(map[int]int, len(s.Cart)),
	}
	for id, qty := range s.Cart {
		c.Cart[id] = qty
	}
	if len(s.Notices) > 0 {
		c.Notices = append([]string(nil), s.Notices...)
	}
	return c
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
