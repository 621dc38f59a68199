// Package handler exposes the order engine over HTTP. Each route maps 1:1
// onto a service operation; transport concerns stop here.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

// Handler serves the store API.
type Handler struct {
	products product.Repository
	coupons  coupon.Repository
	orders   *order.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	products product.Repository,
	coupons coupon.Repository,
	orders *order.Service,
) *Handler {
	return &Handler{
		products: products,
		coupons:  coupons,
		orders:   orders,
	}
}

// Register mounts all API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/orders/{id}/cancel", h.CancelOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.ChangeOrderStatus)
	mux.HandleFunc("DELETE /api/orders/{id}", h.DeleteOrder)
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/coupons", h.CreateCoupon)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeDomainError maps a service error onto an HTTP response. Business-rule
// failures get specific statuses; anything else is an infrastructure failure,
// logged and reported opaquely so callers can distinguish the two.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		qtyErr   *order.InvalidQuantityError
		prodErr  *order.ProductNotFoundError
		stockErr *order.InsufficientStockError
	)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &qtyErr):
		writeError(w, http.StatusBadRequest, qtyErr.Error())
	case errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &prodErr):
		writeError(w, http.StatusUnprocessableEntity, prodErr.Error())
	case errors.Is(err, order.ErrInvalidCoupon):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, stockErr.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrNotOwner):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		zctx.From(r.Context()).Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
