package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/httputil"
	"github.com/shophub/storefront/pkg/logger"
)

// ContentTypeJSON enforces that requests with a body declare
// Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// pageCartView tags a cart form post with the {view} it targets.
func pageCartView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, withCartView(r, chi.URLParam(r, "view")))
	})
}

// apiCartView requires {id} to be a UUID and tags the request with it.
func apiCartView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
		if !ok {
			return
		}
		next.ServeHTTP(w, withCartView(r, id.String()))
	})
}

// withCartView puts the cart view in the context and on the request logger,
// so handler and cart event log lines carry it.
func withCartView(r *http.Request, id string) *http.Request {
	ctx := logger.WithCartView(r.Context(), id)
	ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("cart_view", id)))
	return r.WithContext(ctx)
}

// apiNotFound answers unmatched API routes with the JSON envelope.
func apiNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteError(w, r, apperrors.NotFound("route", r.URL.Path), nil)
}
