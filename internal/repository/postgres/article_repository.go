package postgres

import (
	"context"
	"fmt"

	"github.com/smartpromo/backend-go/internal/domain"
)

// ArticleRepository reads articles and categories. Only articles with a
// positive price qualify for analysis.
type ArticleRepository struct {
	db *DB
}

func NewArticleRepository(db *DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) ArticlesInCategory(ctx context.Context, categoryID int64) ([]domain.Article, error) {
	const query = `
		SELECT
			a.id,
			a.name,
			a.price,
			COALESCE(s.quantity_on_hand, 0) AS current_stock,
			COALESCE(s.min_stock, 5)        AS min_stock_threshold,
			a.category_id,
			COALESCE(c.name, '')            AS category_name
		FROM articles a
		LEFT JOIN categories c ON c.id = a.category_id
		LEFT JOIN stocks s     ON s.article_id = a.id
		WHERE a.category_id = $1
		  AND a.price > 0
		ORDER BY a.id`

	articles := []domain.Article{}
	if err := r.db.SelectContext(ctx, &articles, query, categoryID); err != nil {
		return nil, fmt.Errorf("select articles for category %d: %w", categoryID, err)
	}
	return articles, nil
}

func (r *ArticleRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name FROM categories ORDER BY name`

	categories := []domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return categories, nil
}
