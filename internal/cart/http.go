package cart

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ShopFront/internal/catalog"
	"ShopFront/internal/session"
	"ShopFront/pkg/kit"
)

type Server struct {
	Log      *zap.Logger
	Catalog  *catalog.Service
	Engine   *Engine
	Sessions *session.Manager

	// Publisher is optional; when nil no checkout events are emitted.
	Publisher *Publisher
}

type lineView struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Qty      int     `json:"qty"`
	Subtotal float64 `json:"subtotal"`
}

type cartView struct {
	Page    string     `json:"page"`
	Items   []lineView `json:"items"`
	Total   float64    `json:"total"`
	Notices []string   `json:"notices,omitempty"`
}

func (s *Server) View(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	ids := make([]int, 0, len(sess.Cart))
	for pid := range sess.Cart {
		ids = append(ids, pid)
	}
	sort.Ints(ids)

	items := make([]lineView, 0, len(ids))
	var total float64

	for _, pid := range ids {
		p, found, err := s.Catalog.GetByID(r.Context(), pid)
		if err != nil {
			s.Log.Error("cart lookup failed", zap.Error(err), zap.Int("product_id", pid))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		if !found {
			continue
		}

		price, _ := strconv.ParseFloat(p.Price, 64)
		qty := sess.Cart[pid]
		subtotal := price * float64(qty)
		total += subtotal

		items = append(items, lineView{
			ID:       pid,
			Name:     p.Name,
			Price:    price,
			Qty:      qty,
			Subtotal: subtotal,
		})
	}

	kit.WriteJSON(w, http.StatusOK, cartView{
		Page:    "cart",
		Items:   items,
		Total:   total,
		Notices: s.Sessions.Drain(w, r, sess),
	})
}

// Add puts one more unit of the product in the cart, clamped to the
// stock available right now. Checkout re-validates, since stock may
// have moved in between.
func (s *Server) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	pid, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.Sessions.Redirect(w, r, sess, "/cart", "Product not found.")
		return
	}

	p, found, err := s.Catalog.GetByID(r.Context(), pid)
	if err != nil {
		s.Log.Error("product lookup failed", zap.Error(err), zap.Int("product_id", pid))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		s.Sessions.Redirect(w, r, sess, "/cart", "Product not found.")
		return
	}

	if p.Stock <= 0 {
		s.Sessions.Redirect(w, r, sess, "/cart", "Out of stock.")
		return
	}
	if sess.Cart[pid]+1 > p.Stock {
		s.Sessions.Redirect(w, r, sess, "/cart", "You cannot add more than available stock.")
		return
	}

	sess.Cart[pid]++
	s.Sessions.Redirect(w, r, sess, "/cart", "Added to cart.")
}

func (s *Server) Remove(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if pid, err := strconv.Atoi(chi.URLParam(r, "id")); err == nil {
		delete(sess.Cart, pid)
	}
	s.Sessions.Redirect(w, r, sess, "/cart", "Removed from cart.")
}

func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	err := s.Engine.Checkout(r.Context(), sess.Cart)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.Sessions.Redirect(w, r, sess, "/cart", "Cart is empty.")
			return
		}
		var stockErr *StockError
		if errors.As(err, &stockErr) {
			s.Sessions.Redirect(w, r, sess, "/cart", "Not enough stock for "+stockErr.ProductName+".")
			return
		}
		s.Log.Error("checkout failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.publishOrder(r, sess)

	sess.ClearCart()
	s.Sessions.Redirect(w, r, sess, "/", "Payment successful!")
}

func (s *Server) publishOrder(r *http.Request, sess *session.Session) {
	if s.Publisher == nil {
		return
	}

	ev := OrderEvent{
		OrderID: "o_" + uuid.NewString(),
		User:    sess.User,
		Items:   make([]OrderItem, 0, len(sess.Cart)),
	}
	for pid, qty := range sess.Cart {
		ev.Items = append(ev.Items, OrderItem{ProductID: pid, Quantity: qty})
	}
	sort.Slice(ev.Items, func(i, j int) bool { return ev.Items[i].ProductID < ev.Items[j].ProductID })

	// The order is already persisted; a publish failure only costs the
	// downstream notification.
	if err := s.Publisher.Publish(r.Context(), ev); err != nil {
		s.Log.Warn("order event publish failed", zap.Error(err), zap.String("order_id", ev.OrderID))
	}
}
