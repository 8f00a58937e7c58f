package services

import (
	"math"
	"strconv"
	"time"

	applog "webshop/internal/log"
	"webshop/internal/repos"
)

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// AnalyticsService aggregates read-only rollups for the admin
// dashboards. Every entry point degrades to a zero-valued result on an
// internal error instead of failing the caller; the error is logged.
type AnalyticsService struct {
	Repo *repos.AnalyticsRepo

	// Now is injectable for deterministic bucket domains in tests.
	Now func() time.Time
}

func NewAnalyticsService(repo *repos.AnalyticsRepo) *AnalyticsService {
	return &AnalyticsService{Repo: repo, Now: func() time.Time { return time.Now().UTC() }}
}

// ---------- response shapes ----------

type UserGrowth struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
}

type SalesMetrics struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalOrders       int     `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type RatingMetrics struct {
	TotalReviews       int     `json:"total_reviews"`
	AverageRating      float64 `json:"average_rating"`
	PositivePercentage float64 `json:"positive_percentage"`
}

type SystemStatistics struct {
	TotalProducts        int                 `json:"total_products"`
	TotalOrders          int                 `json:"total_orders"`
	TotalUsers           int                 `json:"total_users"`
	TotalRevenue         float64             `json:"total_revenue"`
	AverageProductRating float64             `json:"average_product_rating"`
	TopSellingProducts   []repos.ProductStat `json:"top_selling_products"`
	RecentOrders         []repos.RecentOrder `json:"recent_orders"`
	UserGrowth           UserGrowth          `json:"user_growth"`
	SalesMetrics         SalesMetrics        `json:"sales_metrics"`
	RatingMetrics        RatingMetrics       `json:"rating_metrics"`
}

type MonthlyBucket struct {
	Month   string  `json:"month"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Orders   int     `json:"orders"`
	Revenue  float64 `json:"revenue"`
}

type OrderAnalytics struct {
	TotalOrders       int                 `json:"total_orders"`
	TotalRevenue      float64             `json:"total_revenue"`
	AverageOrderValue float64             `json:"average_order_value"`
	OrdersToday       int                 `json:"orders_today"`
	RevenueToday      float64             `json:"revenue_today"`
	TopProducts       []repos.ProductStat `json:"top_products"`
	SalesByCategory   []CategorySales     `json:"sales_by_category"`
	MonthlySales      []MonthlyBucket     `json:"monthly_sales"`
}

type UserAnalytics struct {
	TotalUsers     int     `json:"total_users"`
	NewUsersToday  int     `json:"new_users_today"`
	ActiveUsers    int     `json:"active_users"`
	AdminUsers     int     `json:"admin_users"`
	CustomerUsers  int     `json:"customer_users"`
	UserEngagement float64 `json:"user_engagement"`
}

type WeekdayBucket struct {
	Day     int     `json:"day"`
	DayName string  `json:"day_name"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type HourBucket struct {
	Hour    int     `json:"hour"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type SalesAnalytics struct {
	MonthlySales   []MonthlyBucket `json:"monthly_sales"`
	DayOfWeekSales []WeekdayBucket `json:"day_of_week_sales"`
	HourlySales    []HourBucket    `json:"hourly_sales"`
	ConversionRate float64         `json:"conversion_rate"`
	TotalCustomers int             `json:"total_customers"`
	TotalOrders    int             `json:"total_orders"`
}

type RatingCount struct {
	Rating     int     `json:"rating"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type RatingOverall struct {
	TotalReviews        int     `json:"total_reviews"`
	AverageRating       float64 `json:"average_rating"`
	ProductsWithReviews int     `json:"products_with_reviews"`
	PositiveReviews     int     `json:"positive_reviews"`
	NeutralReviews      int     `json:"neutral_reviews"`
	NegativeReviews     int     `json:"negative_reviews"`
	PositivePercentage  float64 `json:"positive_percentage"`
}

type RatingAnalytics struct {
	RatingDistribution []RatingCount            `json:"rating_distribution"`
	TopRatedProducts   []repos.RatedProduct     `json:"top_rated_products"`
	RatingTrends       []repos.RatingTrendPoint `json:"rating_trends"`
	OverallStats       RatingOverall            `json:"overall_stats"`
}

type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type OrderPoint struct {
	Date   string `json:"date"`
	Orders int    `json:"orders"`
}

type DashboardMetrics struct {
	Overview        SystemStatistics    `json:"overview"`
	Orders          OrderAnalytics      `json:"orders"`
	Users           UserAnalytics       `json:"users"`
	Products        []repos.ProductStat `json:"products"`
	RevenueChart    []RevenuePoint      `json:"revenue_chart"`
	OrdersChart     []OrderPoint        `json:"orders_chart"`
	SalesAnalytics  SalesAnalytics      `json:"sales_analytics"`
	RatingAnalytics RatingAnalytics     `json:"rating_analytics"`
}

// ---------- entry points ----------

func (s *AnalyticsService) Dashboard() DashboardMetrics {
	return DashboardMetrics{
		Overview:        s.SystemStatistics(),
		Orders:          s.OrderAnalytics(),
		Users:           s.UserAnalytics(),
		Products:        s.ProductAnalytics(),
		RevenueChart:    s.revenueChart(),
		OrdersChart:     s.ordersChart(),
		SalesAnalytics:  s.SalesAnalytics(),
		RatingAnalytics: s.RatingAnalytics(),
	}
}

func (s *AnalyticsService) SystemStatistics() SystemStatistics {
	out, err := s.systemStatistics()
	if err != nil {
		applog.Error(nil, "analytics.overview.degraded", err, nil)
		return SystemStatistics{
			TopSellingProducts: []repos.ProductStat{},
			RecentOrders:       []repos.RecentOrder{},
			UserGrowth:         UserGrowth{Labels: []string{}, Data: []int{}},
		}
	}
	return out
}

func (s *AnalyticsService) systemStatistics() (SystemStatistics, error) {
	var (
		out SystemStatistics
		err error
	)
	if out.TotalProducts, err = s.Repo.CountProducts(); err != nil {
		return out, err
	}
	if out.TotalOrders, err = s.Repo.CountOrders(); err != nil {
		return out, err
	}
	if out.TotalUsers, err = s.Repo.CountUsers(); err != nil {
		return out, err
	}
	if out.TotalRevenue, err = s.Repo.TotalRevenue(); err != nil {
		return out, err
	}
	avgRating, err := s.Repo.AverageRating()
	if err != nil {
		return out, err
	}
	out.AverageProductRating = round1(avgRating)

	if out.TopSellingProducts, err = s.Repo.TopSellingProducts(5); err != nil {
		return out, err
	}
	if out.RecentOrders, err = s.Repo.RecentOrders(10); err != nil {
		return out, err
	}

	growth, err := s.Repo.NewUsersByDay(7)
	if err != nil {
		return out, err
	}
	days := dayKeys(s.Now(), 7)
	counts := backfill(days, growth,
		func(b repos.CountBucket) string { return b.Key },
		func(_ string, obs *repos.CountBucket) int {
			if obs == nil {
				return 0
			}
			return obs.Count
		})
	out.UserGrowth = UserGrowth{Labels: days, Data: counts}

	out.SalesMetrics = SalesMetrics{
		TotalRevenue: out.TotalRevenue,
		TotalOrders:  out.TotalOrders,
	}
	if out.TotalOrders > 0 {
		out.SalesMetrics.AverageOrderValue = round2(out.TotalRevenue / float64(out.TotalOrders))
	}

	totalReviews, err := s.Repo.CountReviews()
	if err != nil {
		return out, err
	}
	positive, _, _, err := s.Repo.SentimentCounts()
	if err != nil {
		return out, err
	}
	out.RatingMetrics = RatingMetrics{
		TotalReviews:       totalReviews,
		AverageRating:      round2(avgRating),
		PositivePercentage: percentage(positive, totalReviews),
	}
	return out, nil
}

func (s *AnalyticsService) OrderAnalytics() OrderAnalytics {
	out, err := s.orderAnalytics()
	if err != nil {
		applog.Error(nil, "analytics.orders.degraded", err, nil)
		return OrderAnalytics{
			TopProducts:     []repos.ProductStat{},
			SalesByCategory: []CategorySales{},
			MonthlySales:    []MonthlyBucket{},
		}
	}
	return out
}

func (s *AnalyticsService) orderAnalytics() (OrderAnalytics, error) {
	var (
		out OrderAnalytics
		err error
	)
	if out.TotalOrders, err = s.Repo.CountOrders(); err != nil {
		return out, err
	}
	if out.TotalRevenue, err = s.Repo.TotalRevenue(); err != nil {
		return out, err
	}
	if out.TotalOrders > 0 {
		out.AverageOrderValue = round2(out.TotalRevenue / float64(out.TotalOrders))
	}
	if out.OrdersToday, out.RevenueToday, err = s.Repo.OrdersToday(); err != nil {
		return out, err
	}
	if out.TopProducts, err = s.Repo.TopSellingProducts(5); err != nil {
		return out, err
	}

	// No category field exists on Product; a single synthetic rollup
	// stands in for per-category sales.
	out.SalesByCategory = []CategorySales{{
		Category: "All Products",
		Orders:   out.TotalOrders,
		Revenue:  out.TotalRevenue,
	}}

	observed, err := s.Repo.MonthlyOrders(180)
	if err != nil {
		return out, err
	}
	out.MonthlySales = s.monthlySales(6, observed)
	return out, nil
}

func (s *AnalyticsService) UserAnalytics() UserAnalytics {
	out, err := s.userAnalytics()
	if err != nil {
		applog.Error(nil, "analytics.users.degraded", err, nil)
		return UserAnalytics{}
	}
	return out
}

func (s *AnalyticsService) userAnalytics() (UserAnalytics, error) {
	var (
		out UserAnalytics
		err error
	)
	if out.TotalUsers, err = s.Repo.CountUsers(); err != nil {
		return out, err
	}
	if out.NewUsersToday, err = s.Repo.NewUsersToday(); err != nil {
		return out, err
	}
	if out.ActiveUsers, err = s.Repo.ActiveUsers(30); err != nil {
		return out, err
	}
	if out.AdminUsers, err = s.Repo.CountUsersByRole("ADMINISTRATOR"); err != nil {
		return out, err
	}
	if out.CustomerUsers, err = s.Repo.CountUsersByRole("CUSTOMER"); err != nil {
		return out, err
	}
	engaged, err := s.Repo.UsersWithOrders()
	if err != nil {
		return out, err
	}
	out.UserEngagement = percentage(engaged, out.TotalUsers)
	return out, nil
}

func (s *AnalyticsService) ProductAnalytics() []repos.ProductStat {
	out, err := s.Repo.ProductPerformance()
	if err != nil {
		applog.Error(nil, "analytics.products.degraded", err, nil)
		return []repos.ProductStat{}
	}
	return out
}

func (s *AnalyticsService) SalesAnalytics() SalesAnalytics {
	out, err := s.salesAnalytics()
	if err != nil {
		applog.Error(nil, "analytics.sales.degraded", err, nil)
		return SalesAnalytics{
			MonthlySales:   []MonthlyBucket{},
			DayOfWeekSales: []WeekdayBucket{},
			HourlySales:    []HourBucket{},
		}
	}
	return out
}

func (s *AnalyticsService) salesAnalytics() (SalesAnalytics, error) {
	var out SalesAnalytics

	monthly, err := s.Repo.MonthlyOrders(365)
	if err != nil {
		return out, err
	}
	out.MonthlySales = s.monthlySales(12, monthly)

	byWeekday, err := s.Repo.OrdersByDayOfWeek()
	if err != nil {
		return out, err
	}
	out.DayOfWeekSales = backfill(weekdayKeys(), byWeekday, bucketKey,
		func(key string, obs *repos.Bucket) WeekdayBucket {
			day, _ := strconv.Atoi(key)
			b := WeekdayBucket{Day: day, DayName: weekdayNames[day]}
			if obs != nil {
				b.Orders = obs.Orders
				b.Revenue = obs.Revenue
			}
			return b
		})

	byHour, err := s.Repo.OrdersByHour()
	if err != nil {
		return out, err
	}
	out.HourlySales = backfill(hourKeys(), byHour, bucketKey,
		func(key string, obs *repos.Bucket) HourBucket {
			hour, _ := strconv.Atoi(key)
			b := HourBucket{Hour: hour}
			if obs != nil {
				b.Orders = obs.Orders
				b.Revenue = obs.Revenue
			}
			return b
		})

	if out.TotalCustomers, err = s.Repo.CountUsers(); err != nil {
		return out, err
	}
	if out.TotalOrders, err = s.Repo.CountOrders(); err != nil {
		return out, err
	}
	out.ConversionRate = percentage(out.TotalOrders, out.TotalCustomers)
	return out, nil
}

func (s *AnalyticsService) RatingAnalytics() RatingAnalytics {
	out, err := s.ratingAnalytics()
	if err != nil {
		applog.Error(nil, "analytics.ratings.degraded", err, nil)
		return RatingAnalytics{
			RatingDistribution: []RatingCount{},
			TopRatedProducts:   []repos.RatedProduct{},
			RatingTrends:       []repos.RatingTrendPoint{},
		}
	}
	return out
}

func (s *AnalyticsService) ratingAnalytics() (RatingAnalytics, error) {
	var out RatingAnalytics

	totalReviews, err := s.Repo.CountReviews()
	if err != nil {
		return out, err
	}

	dist, err := s.Repo.RatingDistribution()
	if err != nil {
		return out, err
	}
	out.RatingDistribution = backfill(ratingKeys(), dist,
		func(b repos.CountBucket) string { return b.Key },
		func(key string, obs *repos.CountBucket) RatingCount {
			rating, _ := strconv.Atoi(key)
			rc := RatingCount{Rating: rating}
			if obs != nil {
				rc.Count = obs.Count
				rc.Percentage = percentage(obs.Count, totalReviews)
			}
			return rc
		})

	if out.TopRatedProducts, err = s.Repo.TopRatedProducts(10); err != nil {
		return out, err
	}
	if out.RatingTrends, err = s.Repo.RatingTrend(30); err != nil {
		return out, err
	}

	avgRating, err := s.Repo.AverageRating()
	if err != nil {
		return out, err
	}
	productsWithReviews, err := s.Repo.ProductsWithReviews()
	if err != nil {
		return out, err
	}
	positive, neutral, negative, err := s.Repo.SentimentCounts()
	if err != nil {
		return out, err
	}
	out.OverallStats = RatingOverall{
		TotalReviews:        totalReviews,
		AverageRating:       round2(avgRating),
		ProductsWithReviews: productsWithReviews,
		PositiveReviews:     positive,
		NeutralReviews:      neutral,
		NegativeReviews:     negative,
		PositivePercentage:  percentage(positive, totalReviews),
	}
	return out, nil
}

// ---------- internals ----------

func (s *AnalyticsService) monthlySales(months int, observed []repos.Bucket) []MonthlyBucket {
	return backfill(monthKeys(s.Now(), months), observed, bucketKey,
		func(key string, obs *repos.Bucket) MonthlyBucket {
			b := MonthlyBucket{Month: key}
			if obs != nil {
				b.Orders = obs.Orders
				b.Revenue = obs.Revenue
			}
			return b
		})
}

func (s *AnalyticsService) revenueChart() []RevenuePoint {
	daily, err := s.Repo.DailyOrders(30)
	if err != nil {
		applog.Error(nil, "analytics.revenue_chart.degraded", err, nil)
		return []RevenuePoint{}
	}
	out := make([]RevenuePoint, 0, len(daily))
	for _, d := range daily {
		out = append(out, RevenuePoint{Date: d.Key, Revenue: d.Revenue})
	}
	return out
}

func (s *AnalyticsService) ordersChart() []OrderPoint {
	daily, err := s.Repo.DailyOrders(30)
	if err != nil {
		applog.Error(nil, "analytics.orders_chart.degraded", err, nil)
		return []OrderPoint{}
	}
	out := make([]OrderPoint, 0, len(daily))
	for _, d := range daily {
		out = append(out, OrderPoint{Date: d.Key, Orders: d.Orders})
	}
	return out
}

func bucketKey(b repos.Bucket) string { return b.Key }

// percentage guards division by zero, returning 0 for an empty total.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
