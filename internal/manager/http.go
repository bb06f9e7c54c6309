package manager

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ShopFront/internal/session"
	"ShopFront/internal/store"
	"ShopFront/pkg/kit"
)

type Server struct {
	Log      *zap.Logger
	Svc      *Service
	Sessions *session.Manager
}

// RequireManager gates every /manager route. Anyone without the role
// is bounced to login before any handler can touch state.
func (s *Server) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		if !ok {
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		if !sess.IsManager() {
			s.Sessions.Redirect(w, r, sess, "/login", "Manager access only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type listView struct {
	Page     string          `json:"page"`
	Products []store.Product `json:"products"`
	Notices  []string        `json:"notices,omitempty"`
}

func (s *Server) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	products, err := s.Svc.Products.LoadAll(r.Context())
	if err != nil {
		s.Log.Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, listView{
		Page:     "manager",
		Products: products,
		Notices:  s.Sessions.Drain(w, r, sess),
	})
}

func (s *Server) AddPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"page":    "manager_add",
		"notices": s.Sessions.Drain(w, r, sess),
	})
}

func (s *Server) Add(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	err := s.Svc.Add(r.Context(), Input{
		Category: r.FormValue("category"),
		Name:     r.FormValue("name"),
		Weight:   r.FormValue("weight"),
		Price:    r.FormValue("price"),
		Stock:    r.FormValue("stock"),
	})
	switch {
	case errors.Is(err, ErrMissingFields):
		s.Sessions.Redirect(w, r, sess, "/manager/add", "Fill all fields.")
	case errors.Is(err, ErrBadNumber):
		s.Sessions.Redirect(w, r, sess, "/manager/add", "Price must be a number and stock must be an integer.")
	case err != nil:
		s.Log.Error("add product failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	default:
		s.Sessions.Redirect(w, r, sess, "/manager", "Product added.")
	}
}

func (s *Server) EditPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.Sessions.Redirect(w, r, sess, "/manager", "Product not found.")
		return
	}

	p, found, err := s.Svc.Get(r.Context(), id)
	if err != nil {
		s.Log.Error("get product failed", zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		s.Sessions.Redirect(w, r, sess, "/manager", "Product not found.")
		return
	}

	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"page":    "manager_edit",
		"product": p,
		"notices": s.Sessions.Drain(w, r, sess),
	})
}

func (s *Server) Edit(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	idParam := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idParam)
	if err != nil {
		s.Sessions.Redirect(w, r, sess, "/manager", "Product not found.")
		return
	}

	err = s.Svc.Edit(r.Context(), id, r.FormValue("price"), r.FormValue("stock"))
	switch {
	case errors.Is(err, store.ErrProductMissing):
		s.Sessions.Redirect(w, r, sess, "/manager", "Product not found.")
	case errors.Is(err, ErrMissingFields):
		s.Sessions.Redirect(w, r, sess, "/manager/edit/"+idParam, "Fill all fields.")
	case errors.Is(err, ErrBadNumber):
		s.Sessions.Redirect(w, r, sess, "/manager/edit/"+idParam, "Price must be a number and stock must be an integer.")
	case err != nil:
		s.Log.Error("edit product failed", zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	default:
		s.Sessions.Redirect(w, r, sess, "/manager", "Product updated.")
	}
}

func (s *Server) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.Sessions.Redirect(w, r, sess, "/manager", "Product not found.")
		return
	}

	if err := s.Svc.Delete(r.Context(), id); err != nil {
		s.Log.Error("delete product failed", zap.Error(err), zap.Int("id", id))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.Sessions.Redirect(w, r, sess, "/manager", "Product deleted.")
}
