package session

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const sessionKey ctxKey = "session"

const (
	DefaultCookieName = "shopfront_session"
	DefaultTTL        = 24 * time.Hour
)

// Manager owns the cookie round-trip: it resolves the request's
// session from the store, starting a fresh one when the cookie is
// absent or invalid, and injects it into the request context.
type Manager struct {
	Store      Store
	Tokens     *TokenMaker
	Log        *zap.Logger
	CookieName string
	TTL        time.Duration
}

func NewManager(st Store, tokens *TokenMaker, log *zap.Logger) *Manager {
	return &Manager{
		Store:      st,
		Tokens:     tokens,
		Log:        log,
		CookieName: DefaultCookieName,
		TTL:        DefaultTTL,
	}
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.resolve(r)

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Manager) resolve(r *http.Request) *Session {
	cookie, err := r.Cookie(m.CookieName)
	if err == nil {
		sid, err := m.Tokens.Parse(cookie.Value)
		if err == nil {
			sess, ok, err := m.Store.Get(r.Context(), sid)
			if err != nil && m.Log != nil {
				m.Log.Warn("session load failed", zap.Error(err), zap.String("sid", sid))
			}
			if ok {
				return sess
			}
		}
	}
	return New()
}

// Save persists the session and refreshes the cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *Session) {
	if err := m.Store.Put(r.Context(), sess); err != nil {
		if m.Log != nil {
			m.Log.Error("session save failed", zap.Error(err), zap.String("sid", sess.ID))
		}
		return
	}

	token, err := m.Tokens.Issue(sess.ID, m.TTL)
	if err != nil {
		if m.Log != nil {
			m.Log.Error("session token issue failed", zap.Error(err))
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Redirect queues a notice, saves the session, and sends the browser
// to target. Every mutating endpoint answers this way.
func (m *Manager) Redirect(w http.ResponseWriter, r *http.Request, sess *Session, target, notice string) {
	sess.Flash(notice)
	m.Save(w, r, sess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Drain pops pending notices and persists the now-empty queue.
func (m *Manager) Drain(w http.ResponseWriter, r *http.Request, sess *Session) []string {
	notices := sess.DrainNotices()
	if len(notices) > 0 {
		m.Save(w, r, sess)
	}
	return notices
}
