// Package compile turns raw provider or ledger data into the snapshot DTO.
// Everything here is pure; all I/O happens upstream.
package compile

import (
	"sort"

	"github.com/smallbiznis/revlens/internal/snapshot/domain"
)

// emptySnapshot pre-fills every collection so the serialized document always
// carries arrays and objects, never nulls, regardless of source path.
func emptySnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		RevenueByPlan: []domain.PlanRevenue{},
		MonthlyTrend:  []domain.TrendPoint{},
		TrialMetrics: domain.TrialMetrics{
			TrialsByPlan: map[string]int64{},
		},
		AIRevenue: domain.AIRevenue{
			ByFeature:    []domain.FeatureRevenue{},
			TopConsumers: []domain.Consumer{},
		},
		CreditPackageSales: domain.CreditPackageSales{
			Packages: []domain.PackageSales{},
		},
		CouponAnalytics: domain.CouponAnalytics{
			TopCoupons: []domain.CouponUsage{},
		},
		StripeMetrics: domain.StripeMetrics{
			PaymentMethods: map[string]int64{},
		},
		RecentTransactions: []domain.Transaction{},
	}
}

// trendFromBuckets orders day buckets ascending and keeps only the most
// recent maxDays of them.
func trendFromBuckets[B any](byDay map[string]*B, maxDays int, extract func(*B) (float64, int64)) []domain.TrendPoint {
	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	if maxDays > 0 && len(days) > maxDays {
		days = days[len(days)-maxDays:]
	}

	trend := make([]domain.TrendPoint, 0, len(days))
	for _, day := range days {
		revenue, count := extract(byDay[day])
		trend = append(trend, domain.TrendPoint{
			Date:    day,
			Revenue: round2(revenue),
			Count:   count,
		})
	}
	return trend
}
