package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/coupon"
)

func newLifecycleService(orders *mockOrderRepo, cfg Config) *Service {
	return NewService(newCatalog(), newCoupons(), orders, cfg)
}

func TestCancel(t *testing.T) {
	t.Run("owner cancels", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{
			"ord-1": {ID: "ord-1", CustomerID: "cust-1"},
		}}
		svc := newLifecycleService(orders, Config{})

		require.NoError(t, svc.Cancel(context.Background(), "ord-1", "cust-1"))
		assert.Equal(t, []string{"ord-1"}, orders.deleted)
		assert.False(t, orders.restocked)

		// Cancelled order is gone, not status-flipped.
		_, err := orders.GetByID(context.Background(), "ord-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{
			"ord-1": {ID: "ord-1", CustomerID: "cust-1"},
		}}
		svc := newLifecycleService(orders, Config{})

		err := svc.Cancel(context.Background(), "ord-1", "cust-2")
		require.ErrorIs(t, err, ErrNotOwner)
		assert.Empty(t, orders.deleted)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := newLifecycleService(&mockOrderRepo{byID: map[string]*Order{}}, Config{})

		err := svc.Cancel(context.Background(), "ghost", "cust-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("restock flag reaches the ledger", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{
			"ord-1": {ID: "ord-1", CustomerID: "cust-1"},
		}}
		svc := newLifecycleService(orders, Config{RestockOnCancel: true})

		require.NoError(t, svc.Cancel(context.Background(), "ord-1", "cust-1"))
		assert.True(t, orders.restocked)
	})

	t.Run("storage failure surfaced", func(t *testing.T) {
		dbErr := errors.New("disk on fire")
		orders := &mockOrderRepo{
			byID:      map[string]*Order{"ord-1": {ID: "ord-1", CustomerID: "cust-1"}},
			deleteErr: dbErr,
		}
		svc := newLifecycleService(orders, Config{})

		err := svc.Cancel(context.Background(), "ord-1", "cust-1")
		require.ErrorIs(t, err, dbErr)
	})
}

func TestChangeStatus(t *testing.T) {
	t.Run("accepts any enum value", func(t *testing.T) {
		for _, status := range []string{"PENDING", "PROCESSING", "SHIPPED", "DELIVERED", "CANCELLED"} {
			orders := &mockOrderRepo{}
			svc := newLifecycleService(orders, Config{})

			require.NoError(t, svc.ChangeStatus(context.Background(), "ord-1", status))
			assert.Equal(t, Status(status), orders.statusSet)
			assert.Equal(t, "ord-1", orders.statusID)
		}
	})

	t.Run("rejects values outside the enum", func(t *testing.T) {
		orders := &mockOrderRepo{}
		svc := newLifecycleService(orders, Config{})

		for _, status := range []string{"", "pending", "REFUNDED", "SHIPPED "} {
			err := svc.ChangeStatus(context.Background(), "ord-1", status)
			require.ErrorIs(t, err, ErrInvalidStatus, "status %q", status)
		}
		assert.Empty(t, orders.statusID, "no write may happen on rejection")
	})

	t.Run("missing order", func(t *testing.T) {
		orders := &mockOrderRepo{setStatErr: ErrNotFound}
		svc := newLifecycleService(orders, Config{})

		err := svc.ChangeStatus(context.Background(), "ghost", "SHIPPED")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestAdminDelete(t *testing.T) {
	t.Run("deletes without ownership check", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{
			"ord-1": {ID: "ord-1", CustomerID: "cust-1"},
		}}
		svc := newLifecycleService(orders, Config{RestockOnCancel: true})

		require.NoError(t, svc.AdminDelete(context.Background(), "ord-1"))
		assert.Equal(t, []string{"ord-1"}, orders.deleted)
		assert.True(t, orders.restocked)
	})

	t.Run("missing order", func(t *testing.T) {
		orders := &mockOrderRepo{byID: map[string]*Order{}}
		svc := newLifecycleService(orders, Config{})

		err := svc.AdminDelete(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGetSummary(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		want := &Summary{
			ID:         "ord-1",
			CustomerID: "cust-1",
			Status:     StatusPending,
			Total:      money("50"),
			CreatedAt:  created,
			Coupon:     &CouponInfo{Code: "TENOFF", Type: coupon.DiscountFixed, Value: money("10")},
			Lines: []SummaryLine{
				{ProductID: "p1", ProductName: "Widget", Quantity: 3, UnitPrice: money("20"), LineTotal: money("60")},
			},
		}
		orders := &mockOrderRepo{summaries: map[string]*Summary{"ord-1": want}}
		svc := newLifecycleService(orders, Config{})

		got, err := svc.GetSummary(context.Background(), "ord-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := newLifecycleService(&mockOrderRepo{}, Config{})

		_, err := svc.GetSummary(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("DELIVERED")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, st)

	_, err = ParseStatus("DONE")
	require.ErrorIs(t, err, ErrInvalidStatus)
}
