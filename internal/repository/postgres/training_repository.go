package postgres

import (
	"context"
	"fmt"

	"github.com/smartpromo/backend-go/internal/promo/model"
)

// TrainingRepository extracts historical promotion episodes joined with
// their surrounding sales figures. "Before" spans the 60 to 30 days ahead
// of the promotion start; "during" spans the promotion window itself.
type TrainingRepository struct {
	db *DB
}

func NewTrainingRepository(db *DB) *TrainingRepository {
	return &TrainingRepository{db: db}
}

func (r *TrainingRepository) TrainingRows(ctx context.Context) ([]model.TrainingRow, error) {
	const query = `
		SELECT
			p.article_id,
			a.price,
			a.category_id,
			COALESCE(st.quantity_on_hand, 0)::float8 AS current_stock,
			COALESCE(st.min_stock, 5)::float8        AS min_stock_threshold,
			COALESCE((
				SELECT SUM(s.quantity_supplied)
				FROM sales s
				WHERE s.article_id = p.article_id
				  AND s.sale_date BETWEEN p.start_date - INTERVAL '60 days'
				                      AND p.start_date
			), 0) AS quantity_supplied,
			p.discount_percentage AS promotion_percentage,
			COALESCE((
				SELECT SUM(s.quantity_sold)
				FROM sales s
				WHERE s.article_id = p.article_id
				  AND s.sale_date BETWEEN p.start_date - INTERVAL '60 days'
				                      AND p.start_date - INTERVAL '30 days'
			), 0) AS sales_before,
			COALESCE((
				SELECT SUM(s.quantity_sold)
				FROM sales s
				WHERE s.article_id = p.article_id
				  AND s.sale_date BETWEEN p.start_date AND p.end_date
			), 0) AS sales_during,
			COALESCE((
				SELECT SUM(s.quantity_sold * s.sale_price)
				FROM sales s
				WHERE s.article_id = p.article_id
				  AND s.sale_date BETWEEN p.start_date - INTERVAL '60 days'
				                      AND p.start_date - INTERVAL '30 days'
			), 0) AS revenue_before,
			COALESCE((
				SELECT SUM(s.quantity_sold * s.sale_price)
				FROM sales s
				WHERE s.article_id = p.article_id
				  AND s.sale_date BETWEEN p.start_date AND p.end_date
			), 0) AS revenue_during
		FROM promotions p
		JOIN articles a ON a.id = p.article_id
		LEFT JOIN stocks st ON st.article_id = p.article_id
		WHERE a.price > 0
		ORDER BY p.start_date`

	rows := []model.TrainingRow{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select training rows: %w", err)
	}
	return rows, nil
}
