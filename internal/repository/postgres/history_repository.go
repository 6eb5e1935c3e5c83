package postgres

import (
	"context"
	"fmt"

	"github.com/smartpromo/backend-go/internal/domain"
)

// HistoryRepository reads per-article sales and promotion history. Both
// queries return rows in chronological order; empty history is a valid
// result.
type HistoryRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) SalesHistory(ctx context.Context, articleID int64, lookbackDays int) ([]domain.SalesRecord, error) {
	const query = `
		SELECT
			sale_date,
			quantity_sold,
			COALESCE(quantity_supplied, 0) AS quantity_supplied,
			sale_price
		FROM sales
		WHERE article_id = $1
		  AND sale_date >= NOW() - ($2 * INTERVAL '1 day')
		ORDER BY sale_date`

	records := []domain.SalesRecord{}
	if err := r.db.SelectContext(ctx, &records, query, articleID, lookbackDays); err != nil {
		return nil, fmt.Errorf("select sales history for article %d: %w", articleID, err)
	}
	return records, nil
}

func (r *HistoryRepository) PromotionHistory(ctx context.Context, articleID int64, lookbackDays int) ([]domain.PromotionEpisode, error) {
	// Units sold during the episode come from the sales table; a promotion
	// with no overlapping sales rows counts as zero units.
	const query = `
		SELECT
			p.start_date,
			p.end_date,
			p.discount_percentage,
			p.price_before,
			p.price_after,
			COALESCE((
				SELECT SUM(s.quantity_sold)
				FROM sales s
				WHERE s.article_id = p.article_id
				  AND s.sale_date BETWEEN p.start_date AND p.end_date
			), 0) AS units_sold
		FROM promotions p
		WHERE p.article_id = $1
		  AND p.end_date >= NOW() - ($2 * INTERVAL '1 day')
		ORDER BY p.start_date`

	episodes := []domain.PromotionEpisode{}
	if err := r.db.SelectContext(ctx, &episodes, query, articleID, lookbackDays); err != nil {
		return nil, fmt.Errorf("select promotion history for article %d: %w", articleID, err)
	}
	return episodes, nil
}
