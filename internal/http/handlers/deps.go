package handlers

import (
	"webshop/internal/config"
	"webshop/internal/events"
	"webshop/internal/repos"
	"webshop/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	AuthHandler      *AuthHandler
	ProductHandler   *ProductHandler
	OrderHandler     *OrderHandler
	ReviewHandler    *ReviewHandler
	CustomerHandler  *CustomerHandler
	AnalyticsHandler *AnalyticsHandler
	UploadHandler    *UploadHandler
	Auth             *services.AuthService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, pub events.Publisher) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	reviewRepo := repos.NewReviewRepo(db)
	analyticsRepo := repos.NewAnalyticsRepo(db)

	catalogSvc := services.NewCatalogService(prodRepo, pub)
	orderSvc := services.NewOrderService(orderRepo, userRepo, pub)
	reviewSvc := services.NewReviewService(reviewRepo, prodRepo)
	analyticsSvc := services.NewAnalyticsService(analyticsRepo)

	return &Deps{
		AuthHandler:      &AuthHandler{Auth: auth},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		OrderHandler:     &OrderHandler{Orders: orderSvc},
		ReviewHandler:    &ReviewHandler{Reviews: reviewSvc},
		CustomerHandler:  &CustomerHandler{Users: userRepo, Orders: orderSvc},
		AnalyticsHandler: &AnalyticsHandler{Analytics: analyticsSvc, Events: pub},
		UploadHandler:    &UploadHandler{Dir: cfg.UploadDir},
		Auth:             auth,
	}
}
