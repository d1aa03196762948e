package http

import (
	"context"
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/pkg/logger"
)

// SessionName is the visitor session cookie.
const SessionName = "shophub_session"

const visitorKey = "visitor_id"

type contextKey string

const sessionKey contextKey = "session"

func init() {
	gob.Register(domain.Notice{})
}

// SessionConfig configures the visitor session cookie.
type SessionConfig struct {
	Secret string
	MaxAge int // seconds
	Secure bool
}

// Sessions identifies visitors with a signed cookie and carries one-shot
// notices across the redirect that follows a form post.
type Sessions struct {
	store  sessions.Store
	logger *slog.Logger
}

// NewSessions creates a cookie-backed session store.
func NewSessions(cfg SessionConfig, logger *slog.Logger) *Sessions {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, logger: logger}
}

// Middleware loads the visitor session, assigning a visitor ID on first
// contact, and stores the visitor ID for logging. A cookie that fails to
// decode starts a new session.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, SessionName)
		if err != nil {
			s.logger.DebugContext(r.Context(), "discarding unreadable session", slog.String("error", err.Error()))
		}

		if _, ok := session.Values[visitorKey].(string); !ok {
			session.Values[visitorKey] = uuid.NewString()
			if err := session.Save(r, w); err != nil {
				s.logger.ErrorContext(r.Context(), "failed to save session", slog.String("error", err.Error()))
			}
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		ctx = logger.WithVisitorID(ctx, session.Values[visitorKey].(string))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VisitorID returns the visitor of the request, or "" outside the session
// middleware.
func VisitorID(ctx context.Context) string {
	session, ok := ctx.Value(sessionKey).(*sessions.Session)
	if !ok {
		return ""
	}
	id, _ := session.Values[visitorKey].(string)
	return id
}

// PushNotice queues n for the next page the visitor sees. It must run before
// the response is written.
func (s *Sessions) PushNotice(w http.ResponseWriter, r *http.Request, n domain.Notice) {
	session, ok := r.Context().Value(sessionKey).(*sessions.Session)
	if !ok || n.Title == "" {
		return
	}
	session.AddFlash(n)
	if err := session.Save(r, w); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to save notice", slog.String("error", err.Error()))
	}
}

// PopNotice returns the oldest queued notice, or nil, and clears the queue.
func (s *Sessions) PopNotice(w http.ResponseWriter, r *http.Request) *domain.Notice {
	session, ok := r.Context().Value(sessionKey).(*sessions.Session)
	if !ok {
		return nil
	}
	flashes := session.Flashes()
	if len(flashes) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to save session", slog.String("error", err.Error()))
	}
	for _, f := range flashes {
		if n, ok := f.(domain.Notice); ok {
			return &n
		}
	}
	return nil
}
