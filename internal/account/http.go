package account

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

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

type pageView struct {
	Page    string   `json:"page"`
	Notices []string `json:"notices,omitempty"`
}

func (s *Server) SignupPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, "signup")
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.page(w, r, "login")
}

func (s *Server) page(w http.ResponseWriter, r *http.Request, name string) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, pageView{
		Page:    name,
		Notices: s.Sessions.Drain(w, r, sess),
	})
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := strings.TrimSpace(r.FormValue("password"))

	if username == "" || password == "" {
		s.Sessions.Redirect(w, r, sess, "/signup", "Please fill in both fields.")
		return
	}

	taken, err := s.Svc.Exists(r.Context(), username)
	if err != nil {
		s.Log.Error("user lookup failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if taken {
		s.Sessions.Redirect(w, r, sess, "/signup", "Username already taken.")
		return
	}

	if err := s.Svc.CreateCustomer(r.Context(), username, password); err != nil {
		// The store enforces uniqueness too, closing the window
		// between the check above and the append.
		if errors.Is(err, store.ErrUsernameTaken) {
			s.Sessions.Redirect(w, r, sess, "/signup", "Username already taken.")
			return
		}
		s.Log.Error("create user failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	s.Sessions.Redirect(w, r, sess, "/login", "Signup successful. Please login.")
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := strings.TrimSpace(r.FormValue("password"))

	u, found, err := s.Svc.Authenticate(r.Context(), username, password)
	if err != nil {
		s.Log.Error("authenticate failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		s.Sessions.Redirect(w, r, sess, "/login", "Wrong credentials.")
		return
	}

	sess.User = u.Username
	sess.Role = u.Role
	s.Sessions.Redirect(w, r, sess, "/", fmt.Sprintf("Logged in as %s.", u.Role))
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	sess.Clear()
	s.Sessions.Redirect(w, r, sess, "/", "Logged out.")
}
