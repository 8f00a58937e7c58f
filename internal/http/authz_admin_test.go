package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestProductWritesAreAdminOnly(t *testing.T) {
	app, db := newTestApp(t)
	customer := registerAndLogin(t, app, "cust@example.com", "cust")
	admin := adminToken(t, app, db)

	body := fiber.Map{"name": "Gadget", "price": 19.99, "stock": 5}

	resp := doJSON(t, app, jsonReq("POST", "/products/", body), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: want 401, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(jsonReq("POST", "/products/", body), customer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer create: want 403, got %d", resp.StatusCode)
	}

	id := createProduct(t, app, admin, "Gadget", 19.99, 5)

	// public reads stay open
	resp = doJSON(t, app, httptest.NewRequest("GET", "/products/", nil), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("public list: want 200, got %d", resp.StatusCode)
	}

	resp = doJSON(t, app, withBearer(jsonReq("DELETE", fmt.Sprintf("/products/%d", id), nil), customer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer delete: want 403, got %d", resp.StatusCode)
	}
}

func TestAnalyticsRequiresAdmin(t *testing.T) {
	app, db := newTestApp(t)
	customer := registerAndLogin(t, app, "cust@example.com", "cust")
	admin := adminToken(t, app, db)

	for _, path := range []string{
		"/analytics/dashboard", "/analytics/overview", "/analytics/orders",
		"/analytics/users", "/analytics/products",
	} {
		resp := doJSON(t, app, httptest.NewRequest("GET", path, nil), nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s anonymous: want 401, got %d", path, resp.StatusCode)
		}
		resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", path, nil), customer), nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s customer: want 403, got %d", path, resp.StatusCode)
		}
		resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", path, nil), admin), nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s admin: want 200, got %d", path, resp.StatusCode)
		}
	}
}

func TestCustomersSurfaceIsAdminOnly(t *testing.T) {
	app, db := newTestApp(t)
	customer := registerAndLogin(t, app, "cust@example.com", "cust")
	admin := adminToken(t, app, db)

	resp := doJSON(t, app, withBearer(httptest.NewRequest("GET", "/customers/", nil), customer), nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer listing customers: want 403, got %d", resp.StatusCode)
	}

	var customers []map[string]any
	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/customers/", nil), admin), &customers)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin listing customers: want 200, got %d", resp.StatusCode)
	}
	if len(customers) != 1 {
		t.Fatalf("want the one customer, got %d rows", len(customers))
	}

	resp = doJSON(t, app, withBearer(httptest.NewRequest("GET", "/customers/9999", nil), admin), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing customer: want 404, got %d", resp.StatusCode)
	}
}
