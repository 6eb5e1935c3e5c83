package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartpromo/backend-go/internal/domain"
	"github.com/smartpromo/backend-go/internal/promo/impact"
	"github.com/smartpromo/backend-go/internal/promo/model"
	"github.com/smartpromo/backend-go/internal/promo/scoring"
)

type fakeArticleSource struct {
	articles []domain.Article
	err      error
}

func (f *fakeArticleSource) ArticlesInCategory(ctx context.Context, categoryID int64) ([]domain.Article, error) {
	return f.articles, f.err
}

type fakeHistorySource struct {
	sales    map[int64][]domain.SalesRecord
	promos   map[int64][]domain.PromotionEpisode
	salesErr map[int64]error
}

func (f *fakeHistorySource) SalesHistory(ctx context.Context, articleID int64, lookbackDays int) ([]domain.SalesRecord, error) {
	if err := f.salesErr[articleID]; err != nil {
		return nil, err
	}
	return f.sales[articleID], nil
}

func (f *fakeHistorySource) PromotionHistory(ctx context.Context, articleID int64, lookbackDays int) ([]domain.PromotionEpisode, error) {
	return f.promos[articleID], nil
}

func newTestAnalyzer(articles ArticleSource, history HistorySource) *Analyzer {
	scorer := scoring.NewCalculator(scoring.DefaultConfig())
	projector := impact.NewProjector(impact.DefaultConfig())
	a := NewAnalyzer(articles, history, scorer, projector, DefaultConfig())
	a.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAnalyzeCategoryEmptyIsNotAnError(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeArticleSource{}, &fakeHistorySource{})

	recs, err := analyzer.AnalyzeCategory(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestAnalyzeCategoryArticleSourceFailure(t *testing.T) {
	analyzer := newTestAnalyzer(&fakeArticleSource{err: errors.New("db down")}, &fakeHistorySource{})

	_, err := analyzer.AnalyzeCategory(context.Background(), 1, nil)
	assert.Error(t, err)
}

func TestAnalyzeCategorySkipsBrokenArticles(t *testing.T) {
	articles := &fakeArticleSource{articles: []domain.Article{
		{ID: 1, Name: "ok", Price: 100, CurrentStock: 50, MinStockThreshold: 5, CategoryID: 1},
		{ID: 2, Name: "broken", Price: 80, CurrentStock: 40, MinStockThreshold: 5, CategoryID: 1},
		{ID: 3, Name: "also ok", Price: 60, CurrentStock: 30, MinStockThreshold: 5, CategoryID: 1},
	}}
	history := &fakeHistorySource{
		salesErr: map[int64]error{2: errors.New("history unavailable")},
	}

	analyzer := newTestAnalyzer(articles, history)
	recs, err := analyzer.AnalyzeCategory(context.Background(), 1, nil)

	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(1), recs[0].ArticleID)
	assert.Equal(t, int64(3), recs[1].ArticleID)
}

func TestAnalyzeCategoryClassicWithoutModel(t *testing.T) {
	articles := &fakeArticleSource{articles: []domain.Article{
		{ID: 1, Name: "widget", Price: 100, CurrentStock: 50, MinStockThreshold: 5, CategoryID: 1},
	}}

	analyzer := newTestAnalyzer(articles, &fakeHistorySource{})
	recs, err := analyzer.AnalyzeCategory(context.Background(), 1, nil)

	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, domain.MethodClassic, rec.Method)
	assert.Equal(t, rec.ClassicPercentage, rec.Percentage)
	assert.GreaterOrEqual(t, rec.Percentage, 5)
	assert.LessOrEqual(t, rec.Percentage, 50)

	wantPrice := 100 * (1 - float64(rec.Percentage)/100)
	assert.InDelta(t, wantPrice, rec.DiscountedPrice, 0.01)
	assert.NotEmpty(t, rec.Recommendation)
	assert.NotEmpty(t, rec.Risk)
}

func TestAnalyzeCategoryUsesTrainedModel(t *testing.T) {
	articles := &fakeArticleSource{articles: []domain.Article{
		{ID: 1, Name: "widget", Price: 100, CurrentStock: 50, MinStockThreshold: 5, CategoryID: 1},
	}}

	// Constant prediction of -30 maps to |e|*0.5 + 5 = 20%
	state := &model.TrainedModelState{
		Winner: model.NameRandomForest,
		Forest: &model.ForestModel{
			Trees:    []*model.TreeNode{{Leaf: true, Value: -30}},
			NumTrees: 1,
		},
	}

	analyzer := newTestAnalyzer(articles, &fakeHistorySource{})
	recs, err := analyzer.AnalyzeCategory(context.Background(), 1, state)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.MethodAI, recs[0].Method)
	assert.Equal(t, 20, recs[0].Percentage)
}

func TestAnalyzeCategoryFallsBackOnModelError(t *testing.T) {
	articles := &fakeArticleSource{articles: []domain.Article{
		{ID: 1, Name: "widget", Price: 100, CurrentStock: 50, MinStockThreshold: 5, CategoryID: 1},
	}}

	// Winner declared but its parameters are missing, so prediction errors
	broken := &model.TrainedModelState{Winner: model.NameGradientBoosting}

	analyzer := newTestAnalyzer(articles, &fakeHistorySource{})
	recs, err := analyzer.AnalyzeCategory(context.Background(), 1, broken)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.MethodClassicFallback, recs[0].Method)
	assert.Equal(t, recs[0].ClassicPercentage, recs[0].Percentage)
}

func TestAnalyzeCategoryScoresAreRounded(t *testing.T) {
	articles := &fakeArticleSource{articles: []domain.Article{
		{ID: 1, Name: "widget", Price: 100, CurrentStock: 50, MinStockThreshold: 5, CategoryID: 1},
	}}

	analyzer := newTestAnalyzer(articles, &fakeHistorySource{})
	recs, err := analyzer.AnalyzeCategory(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	for _, v := range []float64{
		recs[0].Scores.Stock,
		recs[0].Scores.Elasticity,
		recs[0].Scores.SalesTrend,
		recs[0].Scores.PromotionHistory,
		recs[0].Scores.Final,
	} {
		assert.InDelta(t, v, float64(int(v*1000+0.5))/1000, 1e-9)
	}
}
