package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shophub/storefront/internal/domain"
	"github.com/shophub/storefront/internal/service"
	"github.com/shophub/storefront/internal/view"
	"github.com/shophub/storefront/pkg/httputil"
	"github.com/shophub/storefront/pkg/validator"
)

// CartHandler serves the JSON cart API. API carts have no visitor; they are
// addressed by view ID alone.
type CartHandler struct {
	service *service.CartService
	money   view.Money
	logger  *slog.Logger
}

// NewCartHandler creates a new cart API handler.
func NewCartHandler(svc *service.CartService, money view.Money, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		money:   money,
		logger:  logger,
	}
}

// --- Request DTOs ---

// MountRequest is the JSON body of POST /api/v1/carts. Product detail views
// name the product they show.
type MountRequest struct {
	Page      domain.Page `json:"page" validate:"required"`
	ProductID string      `json:"product_id" validate:"required_if=Page product-detail,max=64"`
}

// AddItemRequest is the JSON body for adding a product to a cart. Quantity
// defaults to 1.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=999"`
}

// UpdateQuantityRequest is the JSON body for setting a line's quantity. Zero
// or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=999"`
}

// --- Response DTOs ---

// CartResponse is a cart with its amounts formatted in the store currency.
type CartResponse struct {
	ID        string         `json:"id"`
	Page      domain.Page    `json:"page"`
	ProductID string         `json:"product_id,omitempty"`
	Lines     []LineResponse `json:"lines"`
	ItemCount int            `json:"item_count"`
	Total     string         `json:"total"`
	Currency  string         `json:"currency"`
	Notice    *domain.Notice `json:"notice,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// LineResponse is one cart line.
type LineResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

func (h *CartHandler) toResponse(c *domain.Cart, notice domain.Notice) CartResponse {
	resp := CartResponse{
		ID:        c.ID,
		Page:      c.Page,
		ProductID: c.ProductID,
		Lines:     make([]LineResponse, 0, len(c.Lines)),
		ItemCount: c.ItemCount(),
		Total:     h.money.Fixed(c.Total()),
		Currency:  h.money.Unit().String(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if notice.Title != "" {
		resp.Notice = &notice
	}
	for _, l := range c.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Image:     l.Product.Image,
			Quantity:  l.Quantity,
			UnitPrice: h.money.Fixed(l.UnitPrice()),
			Subtotal:  h.money.Fixed(l.Subtotal()),
		})
	}
	return resp
}

// --- Handlers ---

// Mount handles POST /api/v1/carts
func (h *CartHandler) Mount(w http.ResponseWriter, r *http.Request) {
	var req MountRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	var (
		cart *domain.Cart
		err  error
	)
	if req.Page == domain.PageProductDetail {
		cart, err = h.service.MountProduct(r.Context(), req.ProductID, "")
	} else {
		cart, err = h.service.Mount(r.Context(), req.Page, "")
	}
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/carts/"+cart.ID)
	httputil.WriteData(w, http.StatusCreated, h.toResponse(cart, domain.Notice{}))
}

// Get handles GET /api/v1/carts/{id}
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), "")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.toResponse(cart, domain.Notice{}))
}

// Unmount handles DELETE /api/v1/carts/{id}
func (h *CartHandler) Unmount(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Unmount(r.Context(), chi.URLParam(r, "id"), ""); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/v1/carts/{id}/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, notice, err := h.service.AddQuantity(r.Context(), chi.URLParam(r, "id"), "", req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.toResponse(cart, notice))
}

// UpdateItemQuantity handles PUT /api/v1/carts/{id}/items/{productID}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	cart, notice, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "id"), "", chi.URLParam(r, "productID"), *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.toResponse(cart, notice))
}

// RemoveItem handles DELETE /api/v1/carts/{id}/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	cart, notice, err := h.service.Remove(r.Context(), chi.URLParam(r, "id"), "", chi.URLParam(r, "productID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, h.toResponse(cart, notice))
}
