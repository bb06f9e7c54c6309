package catalog

import (
	"net/http"

	"go.uber.org/zap"

	"ShopFront/internal/session"
	"ShopFront/pkg/kit"
)

type Server struct {
	Log      *zap.Logger
	Svc      *Service
	Sessions *session.Manager
}

type catalogueView struct {
	Page       string   `json:"page"`
	User       string   `json:"user,omitempty"`
	Role       string   `json:"role,omitempty"`
	Categories []Group  `json:"categories"`
	Notices    []string `json:"notices,omitempty"`
}

// Home and Catalogue render the same grouped view.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.grouped(w, r, "home")
}

func (s *Server) Catalogue(w http.ResponseWriter, r *http.Request) {
	s.grouped(w, r, "catalogue")
}

func (s *Server) grouped(w http.ResponseWriter, r *http.Request, page string) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	groups, err := s.Svc.ListByCategory(r.Context())
	if err != nil {
		s.Log.Error("list products failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, catalogueView{
		Page:       page,
		User:       sess.User,
		Role:       sess.Role,
		Categories: groups,
		Notices:    s.Sessions.Drain(w, r, sess),
	})
}

func (s *Server) About(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, map[string]string{"page": "about"})
}
