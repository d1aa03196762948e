package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/internal/service"
	"github.com/shophub/storefront/internal/view"
	apperrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/logger"
)

// PageHandler renders the storefront pages.
type PageHandler struct {
	carts     *service.CartService
	contact   *service.ContactService
	catalog   *catalog.Catalog
	renderer  *view.Renderer
	money     view.Money
	sessions  *Sessions
	storeName string
	logger    *slog.Logger
	now       func() time.Time
}

// PageDeps are the collaborators of the page handlers.
type PageDeps struct {
	Carts     *service.CartService
	Contact   *service.ContactService
	Catalog   *catalog.Catalog
	Renderer  *view.Renderer
	Money     view.Money
	Sessions  *Sessions
	StoreName string
	Logger    *slog.Logger
}

// NewPageHandler creates the page handlers.
func NewPageHandler(d PageDeps) *PageHandler {
	return &PageHandler{
		carts:     d.Carts,
		contact:   d.Contact,
		catalog:   d.Catalog,
		renderer:  d.Renderer,
		money:     d.Money,
		sessions:  d.Sessions,
		storeName: d.StoreName,
		logger:    d.Logger,
		now:       time.Now,
	}
}

// Store handles GET /
func (h *PageHandler) Store(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFor(w, r, domain.PageStore, "")
	if !ok {
		return
	}

	h.render(w, r, http.StatusOK, view.TemplateStore, view.StorePage{
		Layout:     h.layout(w, r, domain.PageStore, "", cart),
		Hero:       h.catalog.Hero(),
		Categories: h.catalog.StoreCategories(),
		Products:   h.money.ProductCards(h.catalog.Featured()),
	})
}

// Products handles GET /products
func (h *PageHandler) Products(w http.ResponseWriter, r *http.Request) {
	cart, ok := h.cartFor(w, r, domain.PageProducts, "")
	if !ok {
		return
	}

	res := h.catalog.Listing(catalog.ParseListingQuery(r.URL.Query()))
	title := "Products"
	if res.Category != nil {
		title = res.Category.Name
	}

	h.render(w, r, http.StatusOK, view.TemplateProducts,
		h.money.NewListingPage(h.layout(w, r, domain.PageProducts, title, cart), res))
}

// ProductDetail handles GET /products/{id}
func (h *PageHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.Detail(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	cart, ok := h.cartFor(w, r, domain.PageProductDetail, detail.ID)
	if !ok {
		return
	}

	q := r.URL.Query()
	image, _ := strconv.Atoi(q.Get("image"))
	qty, err := strconv.Atoi(q.Get("quantity"))
	if err != nil {
		qty = 1
	}

	layout := h.layout(w, r, domain.PageProductDetail, detail.Name, cart)
	h.render(w, r, http.StatusOK, view.TemplateDetail,
		h.money.NewDetailPage(layout, detail, image, q.Get("tab"), qty))
}

// Categories handles GET /categories
func (h *PageHandler) Categories(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.TemplateCategories, view.CategoriesPage{
		Layout:     h.layout(w, r, domain.PageCategories, "Categories", nil),
		Categories: h.catalog.Categories(),
	})
}

// About handles GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.TemplateAbout, view.AboutPage{
		Layout: h.layout(w, r, domain.PageAbout, "About Us", nil),
		About:  h.catalog.About(),
	})
}

// Contact handles GET /contact
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.TemplateContact, view.ContactPage{
		Layout:  h.layout(w, r, domain.PageContact, "Contact Us", nil),
		Contact: h.catalog.Contact(),
	})
}

// SubmitContact handles POST /contact
func (h *PageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, apperrors.InvalidInput("invalid form body"))
		return
	}

	msg := service.ContactMessage{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}
	notice, err := h.contact.Submit(r.Context(), msg)
	if err != nil {
		h.render(w, r, http.StatusBadRequest, view.TemplateContact, view.ContactPage{
			Layout:  h.layout(w, r, domain.PageContact, "Contact Us", nil),
			Contact: h.catalog.Contact(),
			Form:    view.ContactForm(msg),
			Errors:  view.FormErrors(err),
		})
		return
	}

	h.sessions.PushNotice(w, r, notice)
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// NotFound renders the 404 page for unmatched routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, apperrors.NotFound("page", r.URL.Path))
}

// cartFor resolves the cart of the page view named by the "view" query
// parameter. A request without a view, or naming a view that has expired or
// belongs to another page or product, mounts a new one. productID names the
// product of a detail page and is empty elsewhere. On failure the error page
// has been written and ok is false.
func (h *PageHandler) cartFor(w http.ResponseWriter, r *http.Request, page domain.Page, productID string) (*domain.Cart, bool) {
	ctx := r.Context()
	visitor := VisitorID(ctx)

	if viewID := r.URL.Query().Get("view"); viewID != "" {
		cart, err := h.carts.Get(ctx, viewID, visitor)
		switch {
		case err == nil && cart.Page == page && cart.ProductID == productID:
			return cart, true
		case err == nil, errors.Is(err, apperrors.ErrNotFound):
			logger.FromContext(ctx).DebugContext(ctx, "remounting cart view", slog.String("stale_view", viewID))
		default:
			h.renderError(w, r, err)
			return nil, false
		}
	}

	var (
		cart *domain.Cart
		err  error
	)
	if productID != "" {
		cart, err = h.carts.MountProduct(ctx, productID, visitor)
	} else {
		cart, err = h.carts.Mount(ctx, page, visitor)
	}
	if err != nil {
		h.renderError(w, r, err)
		return nil, false
	}
	return cart, true
}

func (h *PageHandler) layout(w http.ResponseWriter, r *http.Request, page domain.Page, title string, cart *domain.Cart) view.Layout {
	q := r.URL.Query()
	return view.Layout{
		StoreName: h.storeName,
		Title:     title,
		Active:    page,
		Search:    q.Get("q"),
		Cart:      h.money.NewCartDrawer(cart, q.Get("cart") == "open", r.URL.RequestURI()),
		Notice:    h.sessions.PopNotice(w, r),
		Year:      h.now().Year(),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.renderer.Render(w, status, name, data); err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "failed to render page",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
	}
}

// renderError writes the error page for err. Internal errors are logged and
// shown without detail.
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.As(err)
	message := appErr.Message
	if appErr.Status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		message = "Something went wrong. Please try again."
	} else if appErr.Status == http.StatusNotFound {
		message = "The page you are looking for does not exist."
	}

	h.render(w, r, appErr.Status, view.TemplateError, view.ErrorPage{
		Layout:  h.layout(w, r, "", http.StatusText(appErr.Status), nil),
		Status:  appErr.Status,
		Message: message,
	})
}
