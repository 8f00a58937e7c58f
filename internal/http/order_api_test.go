package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestOrderPlacementFlow(t *testing.T) {
	app, db := newTestApp(t)
	admin := adminToken(t, app, db)
	buyer := registerAndLogin(t, app, "buyer@example.com", "buyer")
	pid := createProduct(t, app, admin, "Keyboard", 29.99, 10)

	var order struct {
		ID          int64   `json:"id"`
		OrderCode   string  `json:"order_id"`
		TotalAmount float64 `json:"total_amount"`
		Items       []struct {
			ProductID int64   `json:"product_id"`
			Quantity  int     `json:"quantity"`
			UnitPrice float64 `json:"unit_price"`
		} `json:"items"`
	}
	resp := doJSON(t, app, withBearer(jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{{"product_id": pid, "quantity": 2}},
	}), buyer), &order)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("place: want 200, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(order.OrderCode, "ORD-") {
		t.Fatalf("order code %q", order.OrderCode)
	}
	if order.TotalAmount < 59.97 || order.TotalAmount > 59.99 {
		t.Fatalf("total %v", order.TotalAmount)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("items %+v", order.Items)
	}

	// stock visibly decremented on the product
	var prod struct {
		Stock int `json:"stock"`
	}
	doJSON(t, app, httptest.NewRequest("GET", fmt.Sprintf("/products/%d", pid), nil), &prod)
	if prod.Stock != 8 {
		t.Fatalf("stock after order: want 8, got %d", prod.Stock)
	}

	var mine []struct {
		OrderCode string `json:"order_id"`
	}
	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/", nil), buyer), &mine)
	if resp.StatusCode != http.StatusOK || len(mine) != 1 {
		t.Fatalf("list mine: status %d, %d orders", resp.StatusCode, len(mine))
	}
}

func TestOrderPlacementFailures(t *testing.T) {
	app, db := newTestApp(t)
	admin := adminToken(t, app, db)
	buyer := registerAndLogin(t, app, "buyer@example.com", "buyer")
	pid := createProduct(t, app, admin, "Rare Item", 99.99, 1)

	resp := doJSON(t, app, jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{{"product_id": pid, "quantity": 1}},
	}), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous place: want 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{},
	}), buyer), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty items: want 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{{"product_id": pid, "quantity": 5}},
	}), buyer), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("insufficient stock: want 400, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{{"product_id": 9999, "quantity": 1}},
	}), buyer), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown product: want 404, got %d", resp.StatusCode)
	}
}

func TestOrderOwnershipOverAPI(t *testing.T) {
	app, db := newTestApp(t)
	admin := adminToken(t, app, db)
	buyer := registerAndLogin(t, app, "buyer@example.com", "buyer")
	other := registerAndLogin(t, app, "other@example.com", "other")
	pid := createProduct(t, app, admin, "Mouse", 25.00, 5)

	var order struct {
		ID int64 `json:"id"`
	}
	doJSON(t, app, withBearer(jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{{"product_id": pid, "quantity": 1}},
	}), buyer), &order)

	path := fmt.Sprintf("/orders/%d", order.ID)

	resp := doJSON(t, app, withBearer(httptest.NewRequest("GET", path, nil), other), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other's order: want 403, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", path, nil), admin), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin read: want 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/424242", nil), buyer), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing order: want 404, got %d", resp.StatusCode)
	}
}

func TestOrderSummaryEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	buyer := registerAndLogin(t, app, "buyer@example.com", "buyer")

	var sum struct {
		TotalOrders       int     `json:"total_orders"`
		TotalSpent        float64 `json:"total_spent"`
		AverageOrderValue float64 `json:"average_order_value"`
		LastOrderDate     *string `json:"last_order_date"`
	}
	resp := doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/summary", nil), buyer), &sum)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("summary: want 200, got %d", resp.StatusCode)
	}
	if sum.TotalOrders != 0 || sum.TotalSpent != 0 || sum.LastOrderDate != nil {
		t.Fatalf("zero-order summary: %+v", sum)
	}
}

func TestAdminOrderSearch(t *testing.T) {
	app, db := newTestApp(t)
	admin := adminToken(t, app, db)
	buyer := registerAndLogin(t, app, "buyer@example.com", "buyer")
	pid := createProduct(t, app, admin, "Charger", 15.00, 10)

	var order struct {
		OrderCode string `json:"order_id"`
	}
	doJSON(t, app, withBearer(jsonReq("POST", "/orders/", fiber.Map{
		"items": []fiber.Map{{"product_id": pid, "quantity": 1}},
	}), buyer), &order)

	var all []map[string]any
	resp := doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/admin/all", nil), admin), &all)
	if resp.StatusCode != http.StatusOK || len(all) != 1 {
		t.Fatalf("admin all: status %d, %d rows", resp.StatusCode, len(all))
	}

	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/admin/search/"+order.OrderCode, nil), admin), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search by code: want 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/admin/search/ORD-NOPE", nil), admin), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("search missing code: want 404, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/orders/admin/all", nil), buyer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer on admin list: want 403, got %d", resp.StatusCode)
	}
}
