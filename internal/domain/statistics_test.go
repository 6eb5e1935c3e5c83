package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)

	assert.Zero(t, stats.TotalPromotions)
	assert.Zero(t, stats.AveragePromotion)
	assert.Zero(t, stats.TotalRevenueImpact)
	assert.NotNil(t, stats.MethodDistribution)
	assert.NotNil(t, stats.RiskDistribution)
}

func TestComputeStatistics(t *testing.T) {
	recs := []PromotionRecommendation{
		{Percentage: 10, RevenueChangePct: 5.125, Method: MethodAI, Risk: RiskLow},
		{Percentage: 20, RevenueChangePct: -2.5, Method: MethodAI, Risk: RiskMedium},
		{Percentage: 33, RevenueChangePct: 1.0, Method: MethodClassic, Risk: RiskLow},
	}

	stats := ComputeStatistics(recs)

	assert.Equal(t, 3, stats.TotalPromotions)
	assert.InDelta(t, 21.0, stats.AveragePromotion, 1e-9)
	assert.InDelta(t, 3.63, stats.TotalRevenueImpact, 1e-9)
	assert.Equal(t, 2, stats.MethodDistribution[string(MethodAI)])
	assert.Equal(t, 1, stats.MethodDistribution[string(MethodClassic)])
	assert.Equal(t, 2, stats.RiskDistribution[RiskLow])
	assert.Equal(t, 1, stats.RiskDistribution[RiskMedium])
}
