// internal/domain/models.go
package domain

import "time"

// Category represents an article category
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Article is an immutable snapshot of an article at analysis time
type Article struct {
	ID                int64   `json:"id" db:"id"`
	Name              string  `json:"name" db:"name"`
	Price             float64 `json:"price" db:"price"`
	CurrentStock      int     `json:"current_stock" db:"current_stock"`
	MinStockThreshold int     `json:"min_stock_threshold" db:"min_stock_threshold"`
	CategoryID        int64   `json:"category_id" db:"category_id"`
	CategoryName      string  `json:"category_name" db:"category_name"`
}

// SalesRecord is one entry of an article's sales history
type SalesRecord struct {
	Date             time.Time `json:"date" db:"sale_date"`
	QuantitySold     float64   `json:"quantity_sold" db:"quantity_sold"`
	QuantitySupplied float64   `json:"quantity_supplied" db:"quantity_supplied"`
	SalePrice        float64   `json:"sale_price" db:"sale_price"`
}

// PromotionEpisode is one historical discount campaign for an article
type PromotionEpisode struct {
	StartDate          time.Time `json:"start_date" db:"start_date"`
	EndDate            time.Time `json:"end_date" db:"end_date"`
	DiscountPercentage float64   `json:"discount_percentage" db:"discount_percentage"`
	PriceBefore        float64   `json:"price_before" db:"price_before"`
	PriceAfter         float64   `json:"price_after" db:"price_after"`
	UnitsSold          float64   `json:"units_sold" db:"units_sold"`
}

// ScoreSet holds the four component scores and the weighted final score.
// All values are in [0,1]. Recomputed on every analysis, never persisted.
type ScoreSet struct {
	Stock            float64 `json:"stock_score"`
	Elasticity       float64 `json:"elasticity_score"`
	SalesTrend       float64 `json:"sales_score"`
	PromotionHistory float64 `json:"promotion_score"`
	Final            float64 `json:"final_score"`
}

// PredictionMethod tags how a promotion percentage was produced
type PredictionMethod string

const (
	MethodClassic         PredictionMethod = "classic"
	MethodAI              PredictionMethod = "ai"
	MethodClassicFallback PredictionMethod = "classic_fallback"
)

// RiskLevel classifies a recommendation for downstream consumers
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PromotionRecommendation is the per-article output of a category analysis
type PromotionRecommendation struct {
	ArticleID    int64   `json:"article_id" db:"article_id"`
	ArticleName  string  `json:"article_name" db:"article_name"`
	CategoryID   int64   `json:"category_id" db:"category_id"`
	CurrentPrice float64 `json:"current_price" db:"current_price"`
	CurrentStock int     `json:"current_stock" db:"current_stock"`

	Scores ScoreSet `json:"scores"`

	ClassicPercentage int              `json:"classic_promotion_percentage" db:"classic_percentage"`
	Percentage        int              `json:"promotion_percentage" db:"percentage"`
	Method            PredictionMethod `json:"prediction_method" db:"method"`
	DiscountedPrice   float64          `json:"discounted_price" db:"discounted_price"`

	CurrentMonthlySales   float64 `json:"current_monthly_sales_volume" db:"current_monthly_sales"`
	PredictedMonthlySales float64 `json:"predicted_monthly_sales_volume" db:"predicted_monthly_sales"`
	SalesChange           float64 `json:"sales_volume_change" db:"sales_change"`
	SalesChangePct        float64 `json:"sales_volume_change_percentage" db:"sales_change_pct"`

	CurrentMonthlyRevenue   float64 `json:"current_monthly_revenue" db:"current_monthly_revenue"`
	PredictedMonthlyRevenue float64 `json:"predicted_monthly_revenue" db:"predicted_monthly_revenue"`
	RevenueChange           float64 `json:"revenue_change" db:"revenue_change"`
	RevenueChangePct        float64 `json:"revenue_change_percentage" db:"revenue_change_pct"`

	Recommendation string    `json:"recommendation" db:"recommendation"`
	Risk           RiskLevel `json:"risk_level" db:"risk_level"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AnalysisStatistics summarizes a batch of recommendations
type AnalysisStatistics struct {
	TotalPromotions    int               `json:"total_promotions"`
	AveragePromotion   float64           `json:"average_promotion"`
	TotalRevenueImpact float64           `json:"total_revenue_impact"`
	MethodDistribution map[string]int    `json:"method_distribution"`
	RiskDistribution   map[RiskLevel]int `json:"risk_distribution"`
}

// CategoryAnalysis is the full result of analyzing one category
type CategoryAnalysis struct {
	CategoryID  int64                     `json:"category_id"`
	Promotions  []PromotionRecommendation `json:"promotions"`
	Statistics  AnalysisStatistics        `json:"statistics"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
