// internal/domain/statistics.go
package domain

import "math"

// ComputeStatistics aggregates batch-level figures over a set of
// recommendations: average promotion depth, total projected revenue impact
// and the method/risk distributions.
func ComputeStatistics(recs []PromotionRecommendation) AnalysisStatistics {
	stats := AnalysisStatistics{
		MethodDistribution: map[string]int{},
		RiskDistribution:   map[RiskLevel]int{},
	}
	if len(recs) == 0 {
		return stats
	}

	var pctSum, revenueImpact float64
	for _, r := range recs {
		pctSum += float64(r.Percentage)
		revenueImpact += r.RevenueChangePct
		stats.MethodDistribution[string(r.Method)]++
		stats.RiskDistribution[r.Risk]++
	}

	stats.TotalPromotions = len(recs)
	stats.AveragePromotion = math.Round(pctSum/float64(len(recs))*100) / 100
	stats.TotalRevenueImpact = math.Round(revenueImpact*100) / 100
	return stats
}
