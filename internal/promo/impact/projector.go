package impact

import (
	"fmt"
	"math"

	"github.com/smartpromo/backend-go/internal/domain"
)

// Config holds the impact-projection tunables. ElasticityFactor is the
// assumed demand uplift per unit of discount depth; it is an uncalibrated
// modeling policy, not an empirical law.
type Config struct {
	HorizonDays      int
	ElasticityFactor float64
	StockCritical    int
	StockExcess      int
}

func DefaultConfig() Config {
	return Config{
		HorizonDays:      30,
		ElasticityFactor: 2.0,
		StockCritical:    10,
		StockExcess:      100,
	}
}

// Projection is the forward estimate of sales volume and revenue under a
// candidate promotion percentage.
type Projection struct {
	CurrentMonthlySales   float64
	PredictedMonthlySales float64
	SalesChange           float64
	SalesChangePct        float64

	CurrentMonthlyRevenue   float64
	PredictedMonthlyRevenue float64
	RevenueChange           float64
	RevenueChangePct        float64

	Recommendation string
}

// Projector projects promotion impact over a fixed horizon and derives the
// textual recommendation.
type Projector struct {
	cfg Config
}

func NewProjector(cfg Config) *Projector {
	return &Projector{cfg: cfg}
}

// Project estimates the horizon-length impact of applying the given
// percentage. With no sales history the baseline defaults to one unit per
// day at the current price; this is a documented modeling simplification.
func (p *Projector) Project(percentage int, currentPrice, discountedPrice float64, currentStock int, sales []domain.SalesRecord) Projection {
	var avgDailySales, avgDailyRevenue float64
	if len(sales) == 0 {
		avgDailySales = 1
		avgDailyRevenue = currentPrice
	} else {
		var qtySum, revSum float64
		for _, rec := range sales {
			qtySum += rec.QuantitySold
			revSum += rec.QuantitySold * rec.SalePrice
		}
		avgDailySales = qtySum / float64(len(sales))
		avgDailyRevenue = revSum / float64(len(sales))
	}

	increaseFactor := 1 + (float64(percentage)/100)*p.cfg.ElasticityFactor
	predictedDailySales := avgDailySales * increaseFactor
	predictedDailyRevenue := predictedDailySales * discountedPrice

	horizon := float64(p.cfg.HorizonDays)
	proj := Projection{
		CurrentMonthlySales:     round2(avgDailySales * horizon),
		PredictedMonthlySales:   round2(predictedDailySales * horizon),
		CurrentMonthlyRevenue:   round2(avgDailyRevenue * horizon),
		PredictedMonthlyRevenue: round2(predictedDailyRevenue * horizon),
	}
	proj.SalesChange = round2(proj.PredictedMonthlySales - proj.CurrentMonthlySales)
	proj.RevenueChange = round2(proj.PredictedMonthlyRevenue - proj.CurrentMonthlyRevenue)
	proj.SalesChangePct = round2(pctChange(proj.SalesChange, proj.CurrentMonthlySales))
	proj.RevenueChangePct = round2(pctChange(proj.RevenueChange, proj.CurrentMonthlyRevenue))

	proj.Recommendation = p.recommendation(currentStock, percentage, proj.RevenueChangePct, proj.SalesChangePct)
	return proj
}

// recommendation evaluates the decision table in order. Stock conditions
// override profitability framing, so they are checked first.
func (p *Projector) recommendation(stock, percentage int, revenueChangePct, salesChangePct float64) string {
	switch {
	case stock <= p.cfg.StockCritical:
		return fmt.Sprintf("CRITICAL STOCK: avoid the %d%% promotion to prevent a stockout", percentage)
	case stock >= p.cfg.StockExcess:
		return fmt.Sprintf("OVERSTOCK: %d%% promotion recommended to clear excess stock", percentage)
	case revenueChangePct > 0 && salesChangePct > 20:
		return fmt.Sprintf("PROFITABLE: projected revenue +%.1f%% and sales +%.1f%%", revenueChangePct, salesChangePct)
	case revenueChangePct < -10:
		return fmt.Sprintf("RISK: promotion could reduce revenue by %.1f%%", math.Abs(revenueChangePct))
	default:
		return fmt.Sprintf("NEUTRAL: moderate impact expected, %d%% promotion acceptable", percentage)
	}
}

// RiskFor classifies a recommendation for downstream consumers
func RiskFor(revenueChangePct float64, percentage, stock int) domain.RiskLevel {
	switch {
	case revenueChangePct < -15 || stock < 5:
		return domain.RiskHigh
	case revenueChangePct < 5 || percentage > 35:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func pctChange(change, base float64) float64 {
	if base == 0 {
		return 0
	}
	return change / base * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
