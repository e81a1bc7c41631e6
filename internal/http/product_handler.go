package http

import (
	"context"
	"net/http"
	"time"

	"github.com/andresGon/cursor-pet/internal/domain"
)

type ProductLister interface {
	Products(ctx context.Context, categorySlug string) ([]domain.Product, error)
}

type ProductHandler struct {
	lister  ProductLister
	timeout time.Duration
}

func NewProductHandler(lister ProductLister, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		lister:  lister,
		timeout: timeout,
	}
}

type ProductView struct {
	domain.Product
	DiscountedPrice float64 `json:"discountedPrice"`
}

type ProductsResponse struct {
	Products []ProductView `json:"products"`
}

// Get serves the listing, optionally filtered with ?category=<slug>.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categorySlug := r.URL.Query().Get("category")

	products, err := h.lister.Products(ctx, categorySlug)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "catalog is unavailable")
		return
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = ProductView{
			Product:         p,
			DiscountedPrice: domain.DiscountedPrice(p.Price, p.Discount),
		}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: views})
}
