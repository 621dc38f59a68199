package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/order"
)

type checkoutRequest struct {
	CustomerID string         `json:"customer_id"`
	Items      []checkoutItem `json:"items"`
	CouponCode string         `json:"coupon_code,omitempty"`
}

type checkoutItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutResponse struct {
	OrderID  string          `json:"order_id"`
	Status   string          `json:"status"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Checkout converts the request cart into a committed order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id is required")
		return
	}

	items := make([]order.CartItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.CartItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	res, err := h.orders.Checkout(r.Context(), order.CheckoutRequest{
		CustomerID: req.CustomerID,
		Items:      items,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:  res.Order.ID,
		Status:   string(res.Order.Status),
		Subtotal: res.Subtotal,
		Discount: res.Discount,
		Total:    res.Order.Total,
	})
}

type summaryResponse struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"customer_id"`
	Status     string            `json:"status"`
	Total      decimal.Decimal   `json:"total"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Coupon     *couponInfo       `json:"coupon,omitempty"`
	Lines      []summaryLineItem `json:"lines"`
}

type couponInfo struct {
	Code  string          `json:"code"`
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
}

type summaryLineItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// GetOrder returns the denormalized order detail view.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sum, err := h.orders.GetSummary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := summaryResponse{
		ID:         sum.ID,
		CustomerID: sum.CustomerID,
		Status:     string(sum.Status),
		Total:      sum.Total,
		CreatedAt:  sum.CreatedAt,
		UpdatedAt:  sum.UpdatedAt,
		Lines:      make([]summaryLineItem, len(sum.Lines)),
	}
	if sum.Coupon != nil {
		resp.Coupon = &couponInfo{
			Code:  sum.Coupon.Code,
			Type:  string(sum.Coupon.Type),
			Value: sum.Coupon.Value,
		}
	}
	for i, l := range sum.Lines {
		resp.Lines[i] = summaryLineItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type orderListItem struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Status     string          `json:"status"`
	Total      decimal.Decimal `json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ListOrders returns all orders, or one customer's orders when the
// customer_id query parameter is present.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var (
		items []order.ListItem
		err   error
	)
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		items, err = h.orders.ListForCustomer(r.Context(), customerID)
	} else {
		items, err = h.orders.ListAll(r.Context())
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]orderListItem, len(items))
	for i, it := range items {
		resp[i] = orderListItem{
			ID:         it.ID,
			CustomerID: it.CustomerID,
			Status:     string(it.Status),
			Total:      it.Total,
			CreatedAt:  it.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type cancelRequest struct {
	CustomerID string `json:"customer_id"`
}

// CancelOrder removes the order when the requesting customer owns it.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "customer_id is required")
		return
	}

	if err := h.orders.Cancel(r.Context(), r.PathValue("id"), req.CustomerID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

// ChangeOrderStatus sets the order status (administrative).
func (h *Handler) ChangeOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req changeStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.orders.ChangeStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteOrder unconditionally removes the order (administrative).
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.AdminDelete(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
