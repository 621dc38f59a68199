//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestGetOrder_Summary(t *testing.T) {
	// SAVE5 (FIXED 5) is seeded by seed-db.
	res := checkout(t, "cust-carol", "SAVE5", checkoutItem{ProductID: mugID, Quantity: 3})

	resp := doGet(t, "/api/orders/"+res.OrderID)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	sum := decodeJSON[summaryResponse](t, resp)
	if sum.ID != res.OrderID {
		t.Errorf("id: got %q, want %q", sum.ID, res.OrderID)
	}
	if sum.CustomerID != "cust-carol" {
		t.Errorf("customer: got %q, want cust-carol", sum.CustomerID)
	}
	if sum.Status != "PENDING" {
		t.Errorf("status: got %q, want PENDING", sum.Status)
	}
	// 3 x 14.25 = 42.75, minus the $5 coupon.
	assertMoney(t, "total", sum.Total, "37.75")

	if sum.Coupon == nil {
		t.Fatal("expected coupon info on summary")
	}
	if sum.Coupon.Code != "SAVE5" {
		t.Errorf("coupon code: got %q, want SAVE5", sum.Coupon.Code)
	}
	if sum.Coupon.Type != "FIXED" {
		t.Errorf("coupon type: got %q, want FIXED", sum.Coupon.Type)
	}

	if len(sum.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(sum.Lines))
	}
	line := sum.Lines[0]
	if line.ProductID != mugID {
		t.Errorf("line product: got %q, want %q", line.ProductID, mugID)
	}
	if line.ProductName != "Ceramic Mug" {
		t.Errorf("line product name: got %q, want Ceramic Mug", line.ProductName)
	}
	if line.Quantity != 3 {
		t.Errorf("line quantity: got %d, want 3", line.Quantity)
	}
	assertMoney(t, "unit_price", line.UnitPrice, "14.25")
	assertMoney(t, "line_total", line.LineTotal, "42.75")
}

func TestGetOrder_NotFound(t *testing.T) {
	resp := doGet(t, "/api/orders/"+uuid.New().String())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestListOrders_ByCustomer(t *testing.T) {
	first := checkout(t, "cust-lister", "", checkoutItem{ProductID: mugID, Quantity: 1})
	second := checkout(t, "cust-lister", "", checkoutItem{ProductID: mugID, Quantity: 2})

	resp := doGet(t, "/api/orders?customer_id=cust-lister")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	items := decodeJSON[[]orderListItem](t, resp)
	if len(items) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(items))
	}
	for _, it := range items {
		if it.CustomerID != "cust-lister" {
			t.Errorf("order %s: customer %q, want cust-lister", it.ID, it.CustomerID)
		}
	}
	// Newest first.
	if items[0].ID != second.OrderID {
		t.Errorf("first item: got %q, want newest order %q", items[0].ID, second.OrderID)
	}
	if items[1].ID != first.OrderID {
		t.Errorf("second item: got %q, want %q", items[1].ID, first.OrderID)
	}
}

func TestListOrders_All(t *testing.T) {
	res := checkout(t, "cust-dave", "", checkoutItem{ProductID: mugID, Quantity: 1})

	resp := doGet(t, "/api/orders")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	items := decodeJSON[[]orderListItem](t, resp)
	found := false
	for _, it := range items {
		if it.ID == res.OrderID {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("order %s missing from admin list of %d orders", res.OrderID, len(items))
	}
}

func TestCancelOrder_Owner(t *testing.T) {
	res := checkout(t, "cust-eve", "", checkoutItem{ProductID: kettleID, Quantity: 2})
	stockAfterCheckout := productStock(t, kettleID)

	resp := doPost(t, "/api/orders/"+res.OrderID+"/cancel", map[string]string{"customer_id": "cust-eve"})
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	// Cancelled orders are gone, not soft-deleted.
	get := doGet(t, "/api/orders/"+res.OrderID)
	get.Body.Close()
	if get.StatusCode != http.StatusNotFound {
		t.Errorf("after cancel: expected 404, got %d", get.StatusCode)
	}

	// Restock-on-cancel is off in the test deployment.
	if got := productStock(t, kettleID); got != stockAfterCheckout {
		t.Errorf("kettle stock after cancel: got %d, want %d", got, stockAfterCheckout)
	}
}

func TestCancelOrder_NotOwner(t *testing.T) {
	res := checkout(t, "cust-frank", "", checkoutItem{ProductID: mugID, Quantity: 1})

	resp := doPost(t, "/api/orders/"+res.OrderID+"/cancel", map[string]string{"customer_id": "cust-mallory"})
	resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	// The order survives the rejected attempt.
	get := doGet(t, "/api/orders/"+res.OrderID)
	get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Errorf("after rejected cancel: expected 200, got %d", get.StatusCode)
	}
}

func TestCancelOrder_NotFound(t *testing.T) {
	resp := doPost(t, "/api/orders/"+uuid.New().String()+"/cancel", map[string]string{"customer_id": "cust-eve"})
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestChangeOrderStatus(t *testing.T) {
	res := checkout(t, "cust-grace", "", checkoutItem{ProductID: mugID, Quantity: 1})

	resp := doJSON(t, http.MethodPatch, "/api/orders/"+res.OrderID+"/status", map[string]string{"status": "SHIPPED"})
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	get := doGet(t, "/api/orders/"+res.OrderID)
	defer get.Body.Close()
	sum := decodeJSON[summaryResponse](t, get)
	if sum.Status != "SHIPPED" {
		t.Errorf("status: got %q, want SHIPPED", sum.Status)
	}
}

func TestChangeOrderStatus_Invalid(t *testing.T) {
	res := checkout(t, "cust-grace", "", checkoutItem{ProductID: mugID, Quantity: 1})

	resp := doJSON(t, http.MethodPatch, "/api/orders/"+res.OrderID+"/status", map[string]string{"status": "REFUNDED"})
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestChangeOrderStatus_NotFound(t *testing.T) {
	resp := doJSON(t, http.MethodPatch, "/api/orders/"+uuid.New().String()+"/status", map[string]string{"status": "SHIPPED"})
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteOrder_Admin(t *testing.T) {
	res := checkout(t, "cust-heidi", "", checkoutItem{ProductID: mugID, Quantity: 1})

	resp := doJSON(t, http.MethodDelete, "/api/orders/"+res.OrderID, nil)
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	get := doGet(t, "/api/orders/"+res.OrderID)
	get.Body.Close()
	if get.StatusCode != http.StatusNotFound {
		t.Errorf("after delete: expected 404, got %d", get.StatusCode)
	}

	// Deleting again reports not found rather than silently succeeding.
	again := doJSON(t, http.MethodDelete, "/api/orders/"+res.OrderID, nil)
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("second delete: expected 404, got %d", again.StatusCode)
	}
}
