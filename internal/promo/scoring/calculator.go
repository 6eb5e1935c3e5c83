package scoring

import (
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/smartpromo/backend-go/internal/domain"
)

// Weights controls how the four component scores blend into the final score.
// The four values must sum to 1.0; config validates this at load time.
type Weights struct {
	Stock            float64
	Elasticity       float64
	SalesTrend       float64
	PromotionHistory float64
}

// Config holds the tunables of the classic scoring path
type Config struct {
	Weights             Weights
	MinPromotion        float64
	MaxPromotion        float64
	StockExcess         int
	RecentPromotionDays int
}

// DefaultConfig returns the documented defaults
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Stock:            0.35,
			Elasticity:       0.25,
			SalesTrend:       0.25,
			PromotionHistory: 0.15,
		},
		MinPromotion:        5,
		MaxPromotion:        50,
		StockExcess:         100,
		RecentPromotionDays: 60,
	}
}

// Calculator computes the four component scores and the classic promotion
// percentage. All methods are pure functions of their inputs.
type Calculator struct {
	cfg Config
}

func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// StockRotationScore maps current stock and sell-through speed to a
// promotion-pressure score. Rotation rate is units sold over units supplied
// across the lookback window.
func (c *Calculator) StockRotationScore(article domain.Article, sales []domain.SalesRecord) float64 {
	if len(sales) == 0 {
		return 0.5
	}

	var totalSold, totalSupplied float64
	for _, rec := range sales {
		totalSold += rec.QuantitySold
		totalSupplied += rec.QuantitySupplied
	}
	if totalSupplied == 0 {
		return 0.5
	}
	rotationRate := totalSold / totalSupplied

	if article.CurrentStock == 0 {
		// Nothing left to sell: maximal urgency regardless of rotation
		return 1.0
	}
	if article.CurrentStock <= article.MinStockThreshold {
		// Low stock caps the promotion pressure even when turnover is high
		return math.Min(0.8, rotationRate)
	}
	if article.CurrentStock >= c.cfg.StockExcess {
		return 0.9
	}

	// Slower turnover means more promotion pressure
	switch {
	case rotationRate > 1.0:
		return 0.3
	case rotationRate > 0.7:
		return 0.5
	case rotationRate > 0.4:
		return 0.7
	default:
		return 0.9
	}
}

// ElasticityScore estimates demand sensitivity to price. The primary path
// derives elasticity from historical promotion episodes; with fewer than two
// usable episodes it falls back to the correlation of period-over-period
// price and quantity changes in the sales history.
func (c *Calculator) ElasticityScore(sales []domain.SalesRecord, promos []domain.PromotionEpisode) float64 {
	if len(promos) >= 2 {
		if score, ok := c.elasticityFromPromotions(sales, promos); ok {
			return score
		}
		log.Warn().Int("episodes", len(promos)).Msg("promotion-based elasticity unusable, falling back to sales correlation")
	}
	return c.elasticityFromSales(sales)
}

func (c *Calculator) elasticityFromPromotions(sales []domain.SalesRecord, promos []domain.PromotionEpisode) (float64, bool) {
	var elasticities []float64

	for _, promo := range promos {
		if promo.PriceBefore <= 0 || promo.PriceAfter <= 0 || promo.UnitsSold <= 0 {
			continue
		}
		priceChange := (promo.PriceAfter - promo.PriceBefore) / promo.PriceBefore
		if priceChange == 0 {
			continue
		}

		baseline := meanQuantitySold(sales)
		if baseline == 0 {
			// Conservative estimate when no sales history exists
			baseline = promo.UnitsSold * 0.7
		}
		if baseline <= 0 {
			continue
		}

		demandChange := (promo.UnitsSold - baseline) / baseline
		elasticities = append(elasticities, math.Abs(demandChange/priceChange))
	}

	if len(elasticities) == 0 {
		return 0, false
	}

	avg := stat.Mean(elasticities, nil)
	switch {
	case avg > 2.0:
		return 0.9, true
	case avg > 1.5:
		return 0.8, true
	case avg > 1.0:
		return 0.6, true
	case avg > 0.5:
		return 0.4, true
	default:
		return 0.2, true
	}
}

func (c *Calculator) elasticityFromSales(sales []domain.SalesRecord) float64 {
	if len(sales) < 10 {
		return 0.5
	}

	var priceChanges, quantityChanges []float64
	for i := 1; i < len(sales); i++ {
		prevPrice := sales[i-1].SalePrice
		prevQty := sales[i-1].QuantitySold
		if prevPrice == 0 || prevQty == 0 {
			continue
		}
		priceChanges = append(priceChanges, (sales[i].SalePrice-prevPrice)/prevPrice)
		quantityChanges = append(quantityChanges, (sales[i].QuantitySold-prevQty)/prevQty)
	}

	if len(priceChanges) < 5 {
		return 0.5
	}

	corr := stat.Correlation(priceChanges, quantityChanges, nil)
	if math.IsNaN(corr) {
		return 0.5
	}

	// More negative price/demand correlation means stronger elasticity
	return clamp((1-corr)/2, 0.1, 0.9)
}

// SalesTrendScore fits a least-squares slope over weekly sales totals.
// Growing demand argues against discounting; a sharp decline argues for it.
func (c *Calculator) SalesTrendScore(sales []domain.SalesRecord) float64 {
	if len(sales) == 0 {
		return 0.3
	}

	weekly := weeklyTotals(sales)
	if len(weekly) < 2 {
		return 0.5
	}

	xs := make([]float64, len(weekly))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, weekly, nil, false)

	switch {
	case slope > 0:
		return 0.3
	case slope < -0.5:
		return 0.8
	default:
		return 0.6
	}
}

// PromotionHistoryScore penalizes promotion fatigue. Articles never promoted
// in the lookback window get headroom; articles with several promotions
// ending within the recent window get discouraged.
func (c *Calculator) PromotionHistoryScore(promos []domain.PromotionEpisode, now time.Time) float64 {
	if len(promos) == 0 {
		return 0.7
	}

	cutoff := now.AddDate(0, 0, -c.cfg.RecentPromotionDays)
	recent := 0
	for _, p := range promos {
		if !p.EndDate.Before(cutoff) {
			recent++
		}
	}

	switch {
	case recent > 2:
		return 0.2
	case recent == 0:
		return 0.8
	default:
		return 0.5
	}
}

// Score computes all four component scores and the weighted final score
func (c *Calculator) Score(article domain.Article, sales []domain.SalesRecord, promos []domain.PromotionEpisode, now time.Time) domain.ScoreSet {
	set := domain.ScoreSet{
		Stock:            c.StockRotationScore(article, sales),
		Elasticity:       c.ElasticityScore(sales, promos),
		SalesTrend:       c.SalesTrendScore(sales),
		PromotionHistory: c.PromotionHistoryScore(promos, now),
	}
	set.Final = set.Stock*c.cfg.Weights.Stock +
		set.Elasticity*c.cfg.Weights.Elasticity +
		set.SalesTrend*c.cfg.Weights.SalesTrend +
		set.PromotionHistory*c.cfg.Weights.PromotionHistory
	return set
}

// ClassicPercentage interpolates the final score between the configured
// promotion bounds. Rounding is deferred to the point of final selection.
func (c *Calculator) ClassicPercentage(finalScore float64) float64 {
	pct := c.cfg.MinPromotion + (c.cfg.MaxPromotion-c.cfg.MinPromotion)*finalScore
	return clamp(pct, c.cfg.MinPromotion, c.cfg.MaxPromotion)
}

// MinPromotion returns the lower promotion bound in percent
func (c *Calculator) MinPromotion() float64 { return c.cfg.MinPromotion }

// MaxPromotion returns the upper promotion bound in percent
func (c *Calculator) MaxPromotion() float64 { return c.cfg.MaxPromotion }

func meanQuantitySold(sales []domain.SalesRecord) float64 {
	if len(sales) == 0 {
		return 0
	}
	var sum float64
	for _, rec := range sales {
		sum += rec.QuantitySold
	}
	return sum / float64(len(sales))
}

// weeklyTotals buckets quantities by ISO year/week and returns the totals in
// chronological order.
func weeklyTotals(sales []domain.SalesRecord) []float64 {
	type week struct {
		year int
		week int
	}
	totals := map[week]float64{}
	var order []week
	for _, rec := range sales {
		y, w := rec.Date.ISOWeek()
		key := week{y, w}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] += rec.QuantitySold
	}

	// Sales history arrives date-ordered, so insertion order is chronological
	out := make([]float64, len(order))
	for i, key := range order {
		out[i] = totals[key]
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
