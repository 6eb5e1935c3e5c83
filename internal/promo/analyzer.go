// Package promo orchestrates the per-article promotion pipeline: history
// retrieval, scoring, percentage selection and impact projection.
package promo

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smartpromo/backend-go/internal/domain"
	"github.com/smartpromo/backend-go/internal/promo/impact"
	"github.com/smartpromo/backend-go/internal/promo/model"
	"github.com/smartpromo/backend-go/internal/promo/scoring"
)

// ArticleSource supplies the qualifying articles of a category. An empty
// slice means "nothing to analyze", not failure.
type ArticleSource interface {
	ArticlesInCategory(ctx context.Context, categoryID int64) ([]domain.Article, error)
}

// HistorySource supplies per-article sales and promotion history over a
// lookback window. Empty history is a valid answer, not an error.
type HistorySource interface {
	SalesHistory(ctx context.Context, articleID int64, lookbackDays int) ([]domain.SalesRecord, error)
	PromotionHistory(ctx context.Context, articleID int64, lookbackDays int) ([]domain.PromotionEpisode, error)
}

// Config holds the analyzer's lookback windows
type Config struct {
	SalesLookbackDays     int
	PromotionLookbackDays int
}

func DefaultConfig() Config {
	return Config{
		SalesLookbackDays:     90,
		PromotionLookbackDays: 180,
	}
}

// Analyzer runs the full pipeline for every article of a category. It is
// synchronous: each article completes before the next starts. The trained
// model state is passed per call and never mutated.
type Analyzer struct {
	articles  ArticleSource
	history   HistorySource
	scorer    *scoring.Calculator
	projector *impact.Projector
	cfg       Config
	now       func() time.Time
}

func NewAnalyzer(articles ArticleSource, history HistorySource, scorer *scoring.Calculator, projector *impact.Projector, cfg Config) *Analyzer {
	return &Analyzer{
		articles:  articles,
		history:   history,
		scorer:    scorer,
		projector: projector,
		cfg:       cfg,
		now:       time.Now,
	}
}

// AnalyzeCategory analyzes every qualifying article in the category and
// returns recommendations in source order. An article whose history cannot
// be fetched is skipped with a logged error; the batch continues. An empty
// category yields an empty slice and no error.
func (a *Analyzer) AnalyzeCategory(ctx context.Context, categoryID int64, state *model.TrainedModelState) ([]domain.PromotionRecommendation, error) {
	articles, err := a.articles.ArticlesInCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PromotionRecommendation, 0, len(articles))
	for _, article := range articles {
		rec, err := a.analyzeArticle(ctx, article, state)
		if err != nil {
			log.Error().Err(err).Int64("article_id", article.ID).Str("article", article.Name).
				Msg("skipping article, history unavailable")
			continue
		}
		results = append(results, rec)
	}

	log.Info().Int64("category_id", categoryID).Int("analyzed", len(results)).
		Int("total", len(articles)).Msg("category analysis complete")
	return results, nil
}

func (a *Analyzer) analyzeArticle(ctx context.Context, article domain.Article, state *model.TrainedModelState) (domain.PromotionRecommendation, error) {
	sales, err := a.history.SalesHistory(ctx, article.ID, a.cfg.SalesLookbackDays)
	if err != nil {
		return domain.PromotionRecommendation{}, err
	}
	promos, err := a.history.PromotionHistory(ctx, article.ID, a.cfg.PromotionLookbackDays)
	if err != nil {
		return domain.PromotionRecommendation{}, err
	}

	now := a.now()
	scores := a.scorer.Score(article, sales, promos, now)
	classicPct := a.scorer.ClassicPercentage(scores.Final)

	chosenPct := classicPct
	method := domain.MethodClassic
	if state != nil {
		features := model.ArticleFeatures(article, sales)
		aiPct, err := state.PromotionPercentage(features, a.scorer.MinPromotion(), a.scorer.MaxPromotion())
		if err != nil {
			log.Warn().Err(err).Int64("article_id", article.ID).
				Msg("model prediction failed, using classic percentage")
			method = domain.MethodClassicFallback
		} else {
			chosenPct = aiPct
			method = domain.MethodAI
		}
	}

	percentage := int(math.Round(chosenPct))
	discounted := math.Round(article.Price*(1-float64(percentage)/100)*100) / 100
	if discounted < 0 {
		discounted = 0
	}

	proj := a.projector.Project(percentage, article.Price, discounted, article.CurrentStock, sales)

	return domain.PromotionRecommendation{
		ArticleID:    article.ID,
		ArticleName:  article.Name,
		CategoryID:   article.CategoryID,
		CurrentPrice: article.Price,
		CurrentStock: article.CurrentStock,

		Scores: roundScores(scores),

		ClassicPercentage: int(math.Round(classicPct)),
		Percentage:        percentage,
		Method:            method,
		DiscountedPrice:   discounted,

		CurrentMonthlySales:   proj.CurrentMonthlySales,
		PredictedMonthlySales: proj.PredictedMonthlySales,
		SalesChange:           proj.SalesChange,
		SalesChangePct:        proj.SalesChangePct,

		CurrentMonthlyRevenue:   proj.CurrentMonthlyRevenue,
		PredictedMonthlyRevenue: proj.PredictedMonthlyRevenue,
		RevenueChange:           proj.RevenueChange,
		RevenueChangePct:        proj.RevenueChangePct,

		Recommendation: proj.Recommendation,
		Risk:           impact.RiskFor(proj.RevenueChangePct, percentage, article.CurrentStock),

		CreatedAt: now,
	}, nil
}

func roundScores(s domain.ScoreSet) domain.ScoreSet {
	r := func(v float64) float64 { return math.Round(v*1000) / 1000 }
	return domain.ScoreSet{
		Stock:            r(s.Stock),
		Elasticity:       r(s.Elasticity),
		SalesTrend:       r(s.SalesTrend),
		PromotionHistory: r(s.PromotionHistory),
		Final:            r(s.Final),
	}
}
