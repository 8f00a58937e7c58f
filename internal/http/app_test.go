package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"webshop/internal/auth"
	"webshop/internal/config"
	"webshop/internal/domain"
	"webshop/internal/events"
	"webshop/internal/http/handlers"
	"webshop/internal/repos"
	"webshop/internal/services"
)

// newTestApp wires the full route table against an in-memory database,
// mirroring the server setup minus middlewares that need real traffic
// (rate limits, helmet).
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	pub := events.NoopPublisher{}
	authSvc := services.NewAuthService(repos.NewUserRepo(db), tokens, pub)

	cfg := config.Config{UploadDir: t.TempDir()}
	deps := handlers.NewDeps(db, cfg, authSvc, pub)
	user := handlers.RequireUser(authSvc)
	admin := handlers.RequireAdmin(authSvc)

	app := fiber.New()

	ag := app.Group("/auth")
	ag.Post("/register", deps.AuthHandler.Register)
	ag.Post("/login", deps.AuthHandler.Login)
	ag.Get("/me", user, deps.AuthHandler.Me)

	pg := app.Group("/products")
	pg.Get("/", deps.ProductHandler.List)
	pg.Get("/:id", deps.ProductHandler.Get)
	pg.Post("/", admin, deps.ProductHandler.Create)
	pg.Patch("/:id", admin, deps.ProductHandler.Update)
	pg.Delete("/:id", admin, deps.ProductHandler.Delete)

	og := app.Group("/orders")
	og.Post("/", user, deps.OrderHandler.Place)
	og.Get("/", user, deps.OrderHandler.List)
	og.Get("/detailed", user, deps.OrderHandler.ListDetailed)
	og.Get("/summary", user, deps.OrderHandler.Summary)
	og.Get("/admin/all", admin, deps.OrderHandler.AdminList)
	og.Get("/admin/search/:code", admin, deps.OrderHandler.AdminSearch)
	og.Get("/admin/customer/:user_id", admin, deps.OrderHandler.AdminCustomerOrders)
	og.Get("/:id", user, deps.OrderHandler.Get)

	rg := app.Group("/reviews")
	rg.Get("/product/:product_id", deps.ReviewHandler.ListByProduct)
	rg.Get("/user/me", user, deps.ReviewHandler.Mine)
	rg.Post("/", user, deps.ReviewHandler.Create)
	rg.Patch("/:id", user, deps.ReviewHandler.Update)
	rg.Delete("/:id", user, deps.ReviewHandler.Delete)

	cg := app.Group("/customers", admin)
	cg.Get("/", deps.CustomerHandler.List)
	cg.Get("/:user_id", deps.CustomerHandler.Get)
	cg.Get("/:user_id/summary", deps.CustomerHandler.Summary)

	ang := app.Group("/analytics", admin)
	ang.Get("/dashboard", deps.AnalyticsHandler.Dashboard)
	ang.Get("/overview", deps.AnalyticsHandler.Overview)
	ang.Get("/orders", deps.AnalyticsHandler.Orders)
	ang.Get("/users", deps.AnalyticsHandler.Users)
	ang.Get("/products", deps.AnalyticsHandler.Products)

	ug := app.Group("/upload")
	ug.Post("/image", admin, deps.UploadHandler.Image)
	ug.Get("/uploads/:filename", deps.UploadHandler.Serve)

	return app, db
}

func jsonReq(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out any) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out != nil {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(b, out); err != nil {
			t.Fatalf("decode %s: %v", string(b), err)
		}
	}
	return resp
}

// registerAndLogin creates an account through the API and returns its
// bearer token.
func registerAndLogin(t *testing.T, app *fiber.App, email, username string) string {
	t.Helper()
	resp := doJSON(t, app, jsonReq("POST", "/auth/register", fiber.Map{
		"email": email, "username": username, "password": "Passw0rd!",
	}), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	resp = doJSON(t, app, jsonReq("POST", "/auth/login", fiber.Map{
		"email": email, "password": "Passw0rd!",
	}), &tok)
	if resp.StatusCode != http.StatusOK || tok.AccessToken == "" {
		t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
	return tok.AccessToken
}

// adminToken promotes a fresh account to ADMINISTRATOR directly in the
// database, then logs in.
func adminToken(t *testing.T, app *fiber.App, db *sqlx.DB) string {
	t.Helper()
	email := fmt.Sprintf("admin%d@example.com", time.Now().UnixNano())
	resp := doJSON(t, app, jsonReq("POST", "/auth/register", fiber.Map{
		"email": email, "username": fmt.Sprintf("admin%d", time.Now().UnixNano()), "password": "Passw0rd!",
	}), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register admin: status %d", resp.StatusCode)
	}
	if _, err := db.Exec(`UPDATE users SET role=? WHERE email=?`, domain.RoleAdministrator, email); err != nil {
		t.Fatal(err)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	doJSON(t, app, jsonReq("POST", "/auth/login", fiber.Map{
		"email": email, "password": "Passw0rd!",
	}), &tok)
	if tok.AccessToken == "" {
		t.Fatal("no admin token")
	}
	return tok.AccessToken
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// createProduct inserts a product through the admin API.
func createProduct(t *testing.T, app *fiber.App, token, name string, price float64, stock int) int64 {
	t.Helper()
	var p struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, app, withBearer(jsonReq("POST", "/products/", fiber.Map{
		"name": name, "price": price, "stock": stock,
	}), token), &p)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create product: status %d", resp.StatusCode)
	}
	return p.ID
}
