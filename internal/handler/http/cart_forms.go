package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/internal/view"
	apperrors "github.com/shophub/storefront/pkg/errors"
)

// TitleCartNotUpdated heads the notice shown when a cart form is refused.
const TitleCartNotUpdated = "Cart not updated"

// AddToCart handles POST /cart/{view}/items. The form carries product_id,
// an optional quantity and the page to return to.
func (h *PageHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	viewID, ok := h.parseCartForm(w, r)
	if !ok {
		return
	}

	productID := strings.TrimSpace(r.PostForm.Get("product_id"))
	qty := 1
	if raw := r.PostForm.Get("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.renderError(w, r, apperrors.InvalidInput("quantity must be a whole number"))
			return
		}
		qty = n
	}

	_, notice, err := h.carts.AddQuantity(r.Context(), viewID, VisitorID(r.Context()), productID, qty)
	h.finishCartForm(w, r, viewID, notice, err, false)
}

// SetCartQuantity handles POST /cart/{view}/items/{productID}/quantity
func (h *PageHandler) SetCartQuantity(w http.ResponseWriter, r *http.Request) {
	viewID, ok := h.parseCartForm(w, r)
	if !ok {
		return
	}

	qty, err := strconv.Atoi(r.PostForm.Get("quantity"))
	if err != nil {
		h.renderError(w, r, apperrors.InvalidInput("quantity must be a whole number"))
		return
	}

	_, notice, err := h.carts.SetQuantity(r.Context(), viewID, VisitorID(r.Context()), chi.URLParam(r, "productID"), qty)
	h.finishCartForm(w, r, viewID, notice, err, true)
}

// RemoveFromCart handles POST /cart/{view}/items/{productID}/remove
func (h *PageHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	viewID, ok := h.parseCartForm(w, r)
	if !ok {
		return
	}

	_, notice, err := h.carts.Remove(r.Context(), viewID, VisitorID(r.Context()), chi.URLParam(r, "productID"))
	h.finishCartForm(w, r, viewID, notice, err, true)
}

func (h *PageHandler) parseCartForm(w http.ResponseWriter, r *http.Request) (string, bool) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.InvalidInput("invalid form body"))
		return "", false
	}
	return chi.URLParam(r, "view"), true
}

// finishCartForm redirects back to the page the form was posted from, with
// the notice queued. Refused quantities come back as a notice too; a missing
// view, product or foreign view renders the error page. Forms posted from
// the drawer reopen it.
func (h *PageHandler) finishCartForm(w http.ResponseWriter, r *http.Request, viewID string, notice domain.Notice, err error, fromDrawer bool) {
	if err != nil {
		if !errors.Is(err, apperrors.ErrInvalidInput) && !errors.Is(err, apperrors.ErrOutOfStock) {
			h.renderError(w, r, err)
			return
		}
		notice = domain.Notice{Title: TitleCartNotUpdated, Description: apperrors.As(err).Message}
	}

	h.sessions.PushNotice(w, r, notice)
	http.Redirect(w, r, view.ReturnURL(r.PostForm.Get("return"), viewID, fromDrawer), http.StatusSeeOther)
}
