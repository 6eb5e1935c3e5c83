package impact

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/smartpromo/backend-go/internal/domain"
)

func steadySales(days int, qty, price float64) []domain.SalesRecord {
	sales := make([]domain.SalesRecord, days)
	for i := range sales {
		sales[i] = domain.SalesRecord{
			Date:         time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			QuantitySold: qty,
			SalePrice:    price,
		}
	}
	return sales
}

func TestProjectWithoutHistoryUsesDegenerateBaseline(t *testing.T) {
	p := NewProjector(DefaultConfig())

	proj := p.Project(20, 100, 80, 50, nil)

	// One unit per day at the current price over the 30-day horizon
	assert.InDelta(t, 30.0, proj.CurrentMonthlySales, 1e-9)
	assert.InDelta(t, 3000.0, proj.CurrentMonthlyRevenue, 1e-9)

	// 20% discount with elasticity factor 2 lifts demand by 40%
	assert.InDelta(t, 42.0, proj.PredictedMonthlySales, 1e-9)
	assert.InDelta(t, 42.0*80, proj.PredictedMonthlyRevenue, 1e-9)
	assert.InDelta(t, 40.0, proj.SalesChangePct, 1e-9)
}

func TestProjectComputesChangesFromHistory(t *testing.T) {
	p := NewProjector(DefaultConfig())

	// 5 units/day at 100 over 30 days
	proj := p.Project(10, 100, 90, 50, steadySales(30, 5, 100))

	assert.InDelta(t, 150.0, proj.CurrentMonthlySales, 1e-9)
	assert.InDelta(t, 15000.0, proj.CurrentMonthlyRevenue, 1e-9)

	// 10% discount, factor 2 => +20% demand
	assert.InDelta(t, 180.0, proj.PredictedMonthlySales, 1e-9)
	assert.InDelta(t, 180.0*90, proj.PredictedMonthlyRevenue, 1e-9)
	assert.InDelta(t, 30.0, proj.SalesChange, 1e-9)
	assert.InDelta(t, 20.0, proj.SalesChangePct, 1e-9)
	assert.InDelta(t, 16200.0-15000.0, proj.RevenueChange, 1e-9)
	assert.InDelta(t, 8.0, proj.RevenueChangePct, 1e-9)
}

func TestProjectZeroBaselineGuard(t *testing.T) {
	p := NewProjector(DefaultConfig())

	// History exists but nothing ever sold
	proj := p.Project(20, 100, 80, 50, steadySales(10, 0, 100))

	assert.Zero(t, proj.CurrentMonthlySales)
	assert.Zero(t, proj.SalesChangePct)
	assert.Zero(t, proj.RevenueChangePct)
}

func TestRecommendationDecisionOrder(t *testing.T) {
	p := NewProjector(DefaultConfig())

	tests := []struct {
		name  string
		stock int
		pct   int
		sales []domain.SalesRecord
		want  string
	}{
		{
			name:  "critical stock wins over everything",
			stock: 5,
			pct:   20,
			sales: steadySales(30, 5, 100),
			want:  "CRITICAL STOCK",
		},
		{
			name:  "overstock beats profitability framing",
			stock: 150,
			pct:   20,
			sales: steadySales(30, 5, 100),
			want:  "OVERSTOCK",
		},
		{
			name:  "profitable when revenue and sales grow",
			stock: 50,
			pct:   15, // +30% sales, +10.5% revenue
			sales: steadySales(30, 5, 100),
			want:  "PROFITABLE",
		},
		{
			// Historical revenue was earned at a much higher price point, so
			// the projected discounted revenue falls well short of it
			name:  "risk when revenue drops hard",
			stock: 50,
			pct:   20,
			sales: steadySales(30, 5, 200),
			want:  "RISK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := 100.0
			discounted := price * (1 - float64(tt.pct)/100)
			proj := p.Project(tt.pct, price, discounted, tt.stock, tt.sales)
			assert.Contains(t, proj.Recommendation, tt.want)
		})
	}
}

func TestRecommendationNeutralFallthrough(t *testing.T) {
	p := NewProjector(DefaultConfig())

	// 5% discount, +10% demand: sales change below the 20% profitability bar,
	// revenue change positive, stock in normal range
	proj := p.Project(5, 100, 95, 50, steadySales(30, 5, 100))
	assert.Contains(t, proj.Recommendation, "NEUTRAL")
}

func TestRiskFor(t *testing.T) {
	tests := []struct {
		name       string
		revenuePct float64
		percentage int
		stock      int
		want       domain.RiskLevel
	}{
		{name: "deep revenue drop", revenuePct: -20, percentage: 10, stock: 50, want: domain.RiskHigh},
		{name: "near stockout", revenuePct: 10, percentage: 10, stock: 3, want: domain.RiskHigh},
		{name: "thin revenue gain", revenuePct: 2, percentage: 10, stock: 50, want: domain.RiskMedium},
		{name: "aggressive discount", revenuePct: 10, percentage: 40, stock: 50, want: domain.RiskMedium},
		{name: "comfortable upside", revenuePct: 10, percentage: 20, stock: 50, want: domain.RiskLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskFor(tt.revenuePct, tt.percentage, tt.stock))
		})
	}
}
