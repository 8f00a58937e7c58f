package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"webshop/internal/auth"
	"webshop/internal/config"
	"webshop/internal/events"
	"webshop/internal/http/handlers"
	applog "webshop/internal/log"
	"webshop/internal/repos"
	"webshop/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := repos.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.TokenTTLMin)*time.Minute)
	if err != nil {
		log.Fatal(err)
	}

	var pub events.Publisher = events.NoopPublisher{}
	if cfg.KafkaEnabled {
		pub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	userRepo := repos.NewUserRepo(db)
	authSvc := services.NewAuthService(userRepo, tokens, pub)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			if code >= 500 {
				applog.Error(c, "server.error", err, nil)
				return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Server().MaxRequestBodySize = 6 << 20 // image uploads cap at 5 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	deps := handlers.NewDeps(db, cfg, authSvc, pub)
	user := handlers.RequireUser(authSvc)
	admin := handlers.RequireAdmin(authSvc)

	// ---------- Routes ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Webshop API running"})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	ag := app.Group("/auth")
	ag.Post("/register", deps.AuthHandler.Register)
	ag.Post("/login", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many login attempts, retry later"})
		},
	}), deps.AuthHandler.Login)
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

	// ---------- Serve with graceful shutdown ----------
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[server] shutting down")
	if err := app.Shutdown(); err != nil {
		log.Printf("[server] shutdown: %v", err)
	}
	if err := pub.Close(); err != nil {
		log.Printf("[events] close: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("[db] close: %v", err)
	}
}
