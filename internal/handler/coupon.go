package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
)

type createCouponRequest struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Value       decimal.Decimal `json:"value"`
}

type createCouponResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// CreateCoupon registers a new discount coupon (administrative).
func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	discountType := coupon.DiscountType(req.Type)
	switch {
	case req.Code == "":
		writeError(w, http.StatusBadRequest, "code is required")
		return
	case !discountType.Valid():
		writeError(w, http.StatusBadRequest, "type must be PERCENT or FIXED")
		return
	case req.Value.IsNegative():
		writeError(w, http.StatusBadRequest, "value must not be negative")
		return
	}

	c := &coupon.Coupon{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Description: req.Description,
		Type:        discountType,
		Value:       req.Value,
		Active:      true,
	}
	if err := h.coupons.Create(r.Context(), c); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createCouponResponse{ID: c.ID, Code: c.Code})
}
