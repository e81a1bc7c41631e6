package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/andresGon/cursor-pet/internal/cart"
	"github.com/andresGon/cursor-pet/internal/catalog"
	"github.com/andresGon/cursor-pet/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ProductResolver turns a product id into a resolved catalog Product. The
// cart store only ever receives already-resolved products; the handler owns
// the lookup.
type ProductResolver interface {
	Product(ctx context.Context, id int64) (*domain.Product, error)
}

type CartHandler struct {
	store    *cart.Store
	resolver ProductResolver
	timeout  time.Duration
}

func NewCartHandler(store *cart.Store, resolver ProductResolver, timeout time.Duration) *CartHandler {
	return &CartHandler{
		store:    store,
		resolver: resolver,
		timeout:  timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// CartItemView is a cart line with its derived prices. Rounding to two
// decimals is left to the consumer; values carry full precision.
type CartItemView struct {
	domain.CartItem
	DiscountedPrice float64 `json:"discountedPrice"`
	Subtotal        float64 `json:"subtotal"`
}

type CartView struct {
	Items []CartItemView `json:"items"`
	Total float64        `json:"total"`
}

func buildCartView(items []domain.CartItem) CartView {
	view := CartView{
		Items: make([]CartItemView, len(items)),
		Total: domain.CartTotal(items),
	}
	for i, item := range items {
		view.Items[i] = CartItemView{
			CartItem:        item,
			DiscountedPrice: domain.DiscountedPrice(item.Price, item.Discount),
			Subtotal:        domain.LineSubtotal(item),
		}
	}
	return view
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, buildCartView(h.store.Items()))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	product, err := h.resolver.Product(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "catalog is unavailable")
		return
	}

	h.store.AddItem(ctx, *product)

	respondJSON(w, http.StatusCreated, buildCartView(h.store.Items()))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Negative values clamp to 0 and 0 removes the line; unknown ids are a
	// silent no-op. The store owns those rules.
	h.store.UpdateQuantity(ctx, productID, req.Quantity)

	respondJSON(w, http.StatusOK, buildCartView(h.store.Items()))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	h.store.RemoveItem(ctx, productID)

	respondJSON(w, http.StatusOK, buildCartView(h.store.Items()))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.store.Clear(ctx)

	respondJSON(w, http.StatusOK, buildCartView(nil))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
