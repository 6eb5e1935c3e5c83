package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/smartpromo/backend-go/internal/domain"
)

// RecommendationRepository persists accepted promotion recommendations and
// serves the history listing.
type RecommendationRepository struct {
	db *DB
}

func NewRecommendationRepository(db *DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// Save stores a batch of recommendations inside a single transaction so a
// partially saved batch never becomes visible.
func (r *RecommendationRepository) Save(ctx context.Context, recs []domain.PromotionRecommendation) error {
	if len(recs) == 0 {
		return nil
	}

	const query = `
		INSERT INTO promotion_recommendations (
			article_id, article_name, category_id,
			current_price, current_stock,
			classic_percentage, percentage, method, discounted_price,
			current_monthly_sales, predicted_monthly_sales, sales_change, sales_change_pct,
			current_monthly_revenue, predicted_monthly_revenue, revenue_change, revenue_change_pct,
			recommendation, risk_level, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)`

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare recommendation insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range recs {
			_, err := stmt.ExecContext(ctx,
				rec.ArticleID, rec.ArticleName, rec.CategoryID,
				rec.CurrentPrice, rec.CurrentStock,
				rec.ClassicPercentage, rec.Percentage, rec.Method, rec.DiscountedPrice,
				rec.CurrentMonthlySales, rec.PredictedMonthlySales, rec.SalesChange, rec.SalesChangePct,
				rec.CurrentMonthlyRevenue, rec.PredictedMonthlyRevenue, rec.RevenueChange, rec.RevenueChangePct,
				rec.Recommendation, rec.Risk, rec.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert recommendation for article %d: %w", rec.ArticleID, err)
			}
		}
		return nil
	})
}

// History lists previously saved recommendations, newest first. A zero
// categoryID means all categories.
func (r *RecommendationRepository) History(ctx context.Context, categoryID int64, limit int) ([]domain.PromotionRecommendation, error) {
	if limit <= 0 {
		limit = 100
	}

	const query = `
		SELECT
			article_id, article_name, category_id,
			current_price, current_stock,
			classic_percentage, percentage, method, discounted_price,
			current_monthly_sales, predicted_monthly_sales, sales_change, sales_change_pct,
			current_monthly_revenue, predicted_monthly_revenue, revenue_change, revenue_change_pct,
			recommendation, risk_level, created_at
		FROM promotion_recommendations
		WHERE ($1 = 0 OR category_id = $1)
		ORDER BY created_at DESC
		LIMIT $2`

	recs := []domain.PromotionRecommendation{}
	if err := r.db.SelectContext(ctx, &recs, query, categoryID, limit); err != nil {
		return nil, fmt.Errorf("select recommendation history: %w", err)
	}
	return recs, nil
}
