package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartpromo/backend-go/internal/domain"
)

func testArticle(stock, minStock int) domain.Article {
	return domain.Article{
		ID:                1,
		Name:              "Test Article",
		Price:             49.90,
		CurrentStock:      stock,
		MinStockThreshold: minStock,
		CategoryID:        3,
	}
}

func salesWithRotation(sold, supplied float64) []domain.SalesRecord {
	return []domain.SalesRecord{
		{Date: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), QuantitySold: sold, QuantitySupplied: supplied, SalePrice: 10},
	}
}

func TestStockRotationScore(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	tests := []struct {
		name  string
		stock int
		min   int
		sales []domain.SalesRecord
		want  float64
	}{
		{
			name:  "no sales history",
			stock: 50,
			min:   5,
			sales: nil,
			want:  0.5,
		},
		{
			name:  "zero supplied",
			stock: 50,
			min:   5,
			sales: salesWithRotation(10, 0),
			want:  0.5,
		},
		{
			name:  "zero stock is maximal urgency",
			stock: 0,
			min:   5,
			sales: salesWithRotation(10, 20),
			want:  1.0,
		},
		{
			name:  "low stock caps score at rotation rate",
			stock: 3,
			min:   5,
			sales: salesWithRotation(6, 10),
			want:  0.6,
		},
		{
			name:  "low stock cap never exceeds 0.8",
			stock: 3,
			min:   5,
			sales: salesWithRotation(20, 10),
			want:  0.8,
		},
		{
			name:  "excess stock",
			stock: 150,
			min:   5,
			sales: salesWithRotation(10, 20),
			want:  0.9,
		},
		{
			name:  "fast rotation means little pressure",
			stock: 50,
			min:   5,
			sales: salesWithRotation(30, 20),
			want:  0.3,
		},
		{
			name:  "moderate rotation",
			stock: 50,
			min:   5,
			sales: salesWithRotation(16, 20),
			want:  0.5,
		},
		{
			name:  "slowish rotation",
			stock: 50,
			min:   5,
			sales: salesWithRotation(10, 20),
			want:  0.7,
		},
		{
			name:  "very slow rotation",
			stock: 50,
			min:   5,
			sales: salesWithRotation(25, 250),
			want:  0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.StockRotationScore(testArticle(tt.stock, tt.min), tt.sales)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestElasticityScoreFromPromotions(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	// Steady baseline of 10 units per record
	sales := make([]domain.SalesRecord, 12)
	for i := range sales {
		sales[i] = domain.SalesRecord{
			Date:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			QuantitySold: 10,
			SalePrice:    100,
		}
	}

	episode := func(unitsSold float64) domain.PromotionEpisode {
		return domain.PromotionEpisode{
			PriceBefore: 100,
			PriceAfter:  80, // -20% price change
			UnitsSold:   unitsSold,
		}
	}

	tests := []struct {
		name  string
		sold  float64
		want  float64
	}{
		// demand change = (sold-10)/10, elasticity = |demand/-0.2|
		{name: "highly elastic", sold: 15, want: 0.9},     // elasticity 2.5
		{name: "elastic", sold: 13.5, want: 0.8},          // elasticity 1.75
		{name: "unit elastic", sold: 12.5, want: 0.6},     // elasticity 1.25
		{name: "mildly elastic", sold: 11.5, want: 0.4},   // elasticity 0.75
		{name: "inelastic", sold: 10.5, want: 0.2},        // elasticity 0.25
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promos := []domain.PromotionEpisode{episode(tt.sold), episode(tt.sold)}
			got := calc.ElasticityScore(sales, promos)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestElasticityScoreFallsBackToSalesCorrelation(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	// Both episodes have zero price change, so no usable elasticity
	promos := []domain.PromotionEpisode{
		{PriceBefore: 100, PriceAfter: 100, UnitsSold: 20},
		{PriceBefore: 100, PriceAfter: 100, UnitsSold: 25},
	}

	t.Run("too little sales history yields neutral", func(t *testing.T) {
		got := calc.ElasticityScore(nil, promos)
		assert.InDelta(t, 0.5, got, 1e-9)
	})

	t.Run("anticorrelated price and quantity scores high", func(t *testing.T) {
		// Price alternates up/down, quantity moves opposite
		sales := make([]domain.SalesRecord, 20)
		for i := range sales {
			price := 100.0
			qty := 10.0
			if i%2 == 1 {
				price = 80
				qty = 14
			}
			sales[i] = domain.SalesRecord{
				Date:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
				QuantitySold: qty,
				SalePrice:    price,
			}
		}
		got := calc.ElasticityScore(sales, promos)
		assert.Greater(t, got, 0.5)
		assert.LessOrEqual(t, got, 0.9)
	})
}

func TestSalesTrendScore(t *testing.T) {
	calc := NewCalculator(DefaultConfig())

	weekOf := func(weeks int) time.Time {
		// Mondays, so each record lands in its own ISO week
		return time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*weeks)
	}

	t.Run("empty history", func(t *testing.T) {
		assert.InDelta(t, 0.3, calc.SalesTrendScore(nil), 1e-9)
	})

	t.Run("single week is neutral", func(t *testing.T) {
		sales := []domain.SalesRecord{{Date: weekOf(0), QuantitySold: 10}}
		assert.InDelta(t, 0.5, calc.SalesTrendScore(sales), 1e-9)
	})

	t.Run("growing sales discourage promotion", func(t *testing.T) {
		sales := []domain.SalesRecord{
			{Date: weekOf(0), QuantitySold: 10},
			{Date: weekOf(1), QuantitySold: 15},
			{Date: weekOf(2), QuantitySold: 20},
		}
		assert.InDelta(t, 0.3, calc.SalesTrendScore(sales), 1e-9)
	})

	t.Run("sharp decline encourages promotion", func(t *testing.T) {
		sales := []domain.SalesRecord{
			{Date: weekOf(0), QuantitySold: 20},
			{Date: weekOf(1), QuantitySold: 10},
			{Date: weekOf(2), QuantitySold: 2},
		}
		assert.InDelta(t, 0.8, calc.SalesTrendScore(sales), 1e-9)
	})

	t.Run("mild decline is moderate", func(t *testing.T) {
		sales := []domain.SalesRecord{
			{Date: weekOf(0), QuantitySold: 10},
			{Date: weekOf(1), QuantitySold: 9.8},
			{Date: weekOf(2), QuantitySold: 9.6},
		}
		assert.InDelta(t, 0.6, calc.SalesTrendScore(sales), 1e-9)
	})
}

func TestPromotionHistoryScore(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	ended := func(daysAgo int) domain.PromotionEpisode {
		end := now.AddDate(0, 0, -daysAgo)
		return domain.PromotionEpisode{StartDate: end.AddDate(0, 0, -7), EndDate: end}
	}

	tests := []struct {
		name   string
		promos []domain.PromotionEpisode
		want   float64
	}{
		{name: "never promoted", promos: nil, want: 0.7},
		{
			name:   "no recent promotions",
			promos: []domain.PromotionEpisode{ended(90), ended(120)},
			want:   0.8,
		},
		{
			name:   "a couple of recent promotions",
			promos: []domain.PromotionEpisode{ended(10), ended(30)},
			want:   0.5,
		},
		{
			name:   "promotion fatigue",
			promos: []domain.PromotionEpisode{ended(5), ended(15), ended(25)},
			want:   0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.PromotionHistoryScore(tt.promos, now)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreAndClassicPercentageBounds(t *testing.T) {
	calc := NewCalculator(DefaultConfig())
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	articles := []domain.Article{
		testArticle(0, 5),
		testArticle(3, 5),
		testArticle(50, 5),
		testArticle(200, 5),
	}

	for _, article := range articles {
		set := calc.Score(article, salesWithRotation(10, 20), nil, now)

		assert.GreaterOrEqual(t, set.Final, 0.0)
		assert.LessOrEqual(t, set.Final, 1.0)

		pct := calc.ClassicPercentage(set.Final)
		assert.GreaterOrEqual(t, pct, calc.MinPromotion())
		assert.LessOrEqual(t, pct, calc.MaxPromotion())
	}
}

func TestScoreUsesConfiguredWeights(t *testing.T) {
	cfg := DefaultConfig()
	calc := NewCalculator(cfg)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	set := calc.Score(testArticle(50, 5), nil, nil, now)

	want := set.Stock*cfg.Weights.Stock +
		set.Elasticity*cfg.Weights.Elasticity +
		set.SalesTrend*cfg.Weights.SalesTrend +
		set.PromotionHistory*cfg.Weights.PromotionHistory
	assert.InDelta(t, want, set.Final, 1e-9)
}
