package services_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webshop/internal/domain"
	"webshop/internal/repos"
	"webshop/internal/services"
)

func newAnalytics(db *sqlx.DB) *services.AnalyticsService {
	return services.NewAnalyticsService(repos.NewAnalyticsRepo(db))
}

func TestSalesAnalyticsDenseBuckets(t *testing.T) {
	db := memdb(t)
	svc := newAnalytics(db)
	svc.Now = func() time.Time { return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC) }

	out := svc.SalesAnalytics()

	require.Len(t, out.MonthlySales, 12)
	assert.Equal(t, "2025-04", out.MonthlySales[0].Month)
	assert.Equal(t, "2026-03", out.MonthlySales[11].Month)
	for _, m := range out.MonthlySales {
		assert.Zero(t, m.Orders)
		assert.Zero(t, m.Revenue)
	}

	require.Len(t, out.DayOfWeekSales, 7)
	assert.Equal(t, "Sunday", out.DayOfWeekSales[0].DayName)
	assert.Equal(t, "Saturday", out.DayOfWeekSales[6].DayName)

	require.Len(t, out.HourlySales, 24)
	assert.Equal(t, 0, out.HourlySales[0].Hour)
	assert.Equal(t, 23, out.HourlySales[23].Hour)

	assert.Zero(t, out.ConversionRate)
}

func TestMonthlySalesYearBoundary(t *testing.T) {
	db := memdb(t)
	svc := newAnalytics(db)
	svc.Now = func() time.Time { return time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC) }

	out := svc.SalesAnalytics()
	require.Len(t, out.MonthlySales, 12)
	assert.Equal(t, "2025-02", out.MonthlySales[0].Month)
	assert.Equal(t, "2025-12", out.MonthlySales[10].Month)
	assert.Equal(t, "2026-01", out.MonthlySales[11].Month)
}

func TestAnalyticsEmptyDatabaseZeroes(t *testing.T) {
	db := memdb(t)
	svc := newAnalytics(db)

	stats := svc.SystemStatistics()
	assert.Zero(t, stats.TotalProducts)
	assert.Zero(t, stats.TotalRevenue)
	assert.NotNil(t, stats.TopSellingProducts)
	assert.NotNil(t, stats.RecentOrders)
	require.Len(t, stats.UserGrowth.Labels, 7)
	require.Len(t, stats.UserGrowth.Data, 7)

	orders := svc.OrderAnalytics()
	assert.Zero(t, orders.TotalOrders)
	assert.Zero(t, orders.AverageOrderValue)
	require.Len(t, orders.MonthlySales, 6)
	require.Len(t, orders.SalesByCategory, 1)
	assert.Equal(t, "All Products", orders.SalesByCategory[0].Category)

	users := svc.UserAnalytics()
	assert.Zero(t, users.TotalUsers)
	assert.Zero(t, users.UserEngagement)

	ratings := svc.RatingAnalytics()
	require.Len(t, ratings.RatingDistribution, 5)
	for i, rc := range ratings.RatingDistribution {
		assert.Equal(t, i+1, rc.Rating)
		assert.Zero(t, rc.Count)
		assert.Zero(t, rc.Percentage)
	}
	assert.NotNil(t, ratings.TopRatedProducts)
	assert.NotNil(t, ratings.RatingTrends)
}

func TestOrderAnalyticsCountsToday(t *testing.T) {
	db := memdb(t)
	buyer := seedUser(t, db, "buyer@example.com", "buyer", domain.RoleCustomer)
	prod := seedProduct(t, db, "Monitor", 150.00, 10)
	orderSvc := newOrderService(db)

	_, err := orderSvc.Place(buyer, []repos.OrderLine{{ProductID: prod.ID, Quantity: 2}})
	require.NoError(t, err)

	svc := newAnalytics(db)
	out := svc.OrderAnalytics()
	assert.Equal(t, 1, out.TotalOrders)
	assert.InDelta(t, 300.00, out.TotalRevenue, 0.001)
	assert.InDelta(t, 300.00, out.AverageOrderValue, 0.001)
	assert.Equal(t, 1, out.OrdersToday)
	assert.InDelta(t, 300.00, out.RevenueToday, 0.001)

	// current month carries the order, the rest stay zero
	last := out.MonthlySales[len(out.MonthlySales)-1]
	assert.Equal(t, 1, last.Orders)
	assert.InDelta(t, 300.00, last.Revenue, 0.001)
	for _, m := range out.MonthlySales[:len(out.MonthlySales)-1] {
		assert.Zero(t, m.Orders)
	}

	require.NotEmpty(t, out.TopProducts)
	assert.Equal(t, prod.ID, out.TopProducts[0].ProductID)
}

func TestUserAnalyticsEngagement(t *testing.T) {
	db := memdb(t)
	buyer := seedUser(t, db, "buyer@example.com", "buyer", domain.RoleCustomer)
	seedUser(t, db, "idle@example.com", "idle", domain.RoleCustomer)
	seedUser(t, db, "admin@example.com", "admin", domain.RoleAdministrator)
	prod := seedProduct(t, db, "Cable", 5.00, 50)

	_, err := newOrderService(db).Place(buyer, []repos.OrderLine{{ProductID: prod.ID, Quantity: 1}})
	require.NoError(t, err)

	out := newAnalytics(db).UserAnalytics()
	assert.Equal(t, 3, out.TotalUsers)
	assert.Equal(t, 3, out.NewUsersToday)
	assert.Equal(t, 1, out.ActiveUsers)
	assert.Equal(t, 1, out.AdminUsers)
	assert.Equal(t, 2, out.CustomerUsers)
	assert.InDelta(t, 33.33, out.UserEngagement, 0.01)
}

func TestRatingAnalyticsHistogramAndSentiment(t *testing.T) {
	db := memdb(t)
	prod := seedProduct(t, db, "Keyboard", 60.00, 10)
	reviewSvc := services.NewReviewService(repos.NewReviewRepo(db), repos.NewProductRepo(db))

	ratings := []int{5, 4, 4, 3, 1}
	for i, rating := range ratings {
		u := seedUser(t, db, usernameEmail(i), usernameOnly(i), domain.RoleCustomer)
		_, err := reviewSvc.Create(u, services.ReviewInput{ProductID: prod.ID, Rating: rating})
		require.NoError(t, err)
	}

	out := newAnalytics(db).RatingAnalytics()

	require.Len(t, out.RatingDistribution, 5)
	assert.Equal(t, 1, out.RatingDistribution[0].Count) // rating 1
	assert.Equal(t, 0, out.RatingDistribution[1].Count) // rating 2
	assert.Equal(t, 1, out.RatingDistribution[2].Count) // rating 3
	assert.Equal(t, 2, out.RatingDistribution[3].Count) // rating 4
	assert.Equal(t, 1, out.RatingDistribution[4].Count) // rating 5
	assert.InDelta(t, 40.0, out.RatingDistribution[3].Percentage, 0.01)

	stats := out.OverallStats
	assert.Equal(t, 5, stats.TotalReviews)
	assert.Equal(t, 3, stats.PositiveReviews)
	assert.Equal(t, 1, stats.NeutralReviews)
	assert.Equal(t, 1, stats.NegativeReviews)
	assert.InDelta(t, 60.0, stats.PositivePercentage, 0.01)
	assert.InDelta(t, 3.4, stats.AverageRating, 0.01)
	assert.Equal(t, 1, stats.ProductsWithReviews)

	require.Len(t, out.TopRatedProducts, 1)
	assert.Equal(t, prod.ID, out.TopRatedProducts[0].ProductID)
	require.Len(t, out.RatingTrends, 1)
}

func TestDashboardComposes(t *testing.T) {
	db := memdb(t)
	out := newAnalytics(db).Dashboard()
	require.Len(t, out.SalesAnalytics.MonthlySales, 12)
	require.Len(t, out.Orders.MonthlySales, 6)
	assert.NotNil(t, out.Products)
	assert.NotNil(t, out.RevenueChart)
	assert.NotNil(t, out.OrdersChart)
}

func usernameEmail(i int) string { return "rev" + string(rune('a'+i)) + "@example.com" }
func usernameOnly(i int) string  { return "reviewer_" + string(rune('a'+i)) }
