package compile

import (
	"time"

	"github.com/smallbiznis/revlens/internal/snapshot/domain"
)

// DemoNotice is attached to every demo snapshot so callers can label the
// figures as illustrative.
const DemoNotice = "Demo data. Figures are illustrative and not connected to a billing account."

// Demo returns the pre-baked illustrative snapshot. The figures are fixed;
// only the trend dates track the request window so charts look current.
func Demo(window domain.Window) *domain.Snapshot {
	snap := emptySnapshot()
	snap.Source = domain.SourceDemo
	snap.Notice = DemoNotice

	snap.Overview = domain.Overview{
		TotalRevenue:          48250.75,
		MonthlyRevenue:        6120.40,
		MRR:                   5890.00,
		ARR:                   70680.00,
		ActiveSubscriptions:   142,
		TrialingSubscriptions: 23,
		ChurnRate:             2.1,
		LTV:                   1975.35,
		ARPU:                  41.48,
		NetRevenue:            46803.23,
		StripeFees:            1447.52,
	}

	snap.RevenueByPlan = []domain.PlanRevenue{
		{PlanID: "pro", PlanName: "Pro", Count: 84, MRR: 3276.00, Percentage: 56},
		{PlanID: "team", PlanName: "Team", Count: 31, MRR: 1859.00, Percentage: 31},
		{PlanID: "starter", PlanName: "Starter", Count: 27, MRR: 755.00, Percentage: 13},
	}

	snap.MonthlyTrend = demoTrend(window.End)

	snap.TrialMetrics = domain.TrialMetrics{
		ActiveTrials:        23,
		TrialConversionRate: 38.5,
		AvgTrialDuration:    11.2,
		TrialsByPlan:        map[string]int64{"Pro": 14, "Team": 6, "Starter": 3},
	}

	snap.AIRevenue = domain.AIRevenue{
		TotalRevenueEur: 2140.80,
		TotalCostEur:    612.45,
		ProfitEur:       1528.35,
		MarginPercent:   250,
		TotalRequests:   18430,
		UniqueUsers:     96,
		ByFeature: []domain.FeatureRevenue{
			{Feature: "chat", Revenue: 1245.30, Cost: 390.20, Requests: 11200, AvgCost: 0.03},
			{Feature: "document_analysis", Revenue: 640.50, Cost: 171.25, Requests: 5230, AvgCost: 0.03},
			{Feature: "transcription", Revenue: 255.00, Cost: 51.00, Requests: 2000, AvgCost: 0.03},
		},
		TopConsumers: []domain.Consumer{
			{UserID: "1001", Spend: 212.40, Requests: 1840},
			{UserID: "1002", Spend: 188.10, Requests: 1620},
			{UserID: "1003", Spend: 141.75, Requests: 1215},
			{UserID: "1004", Spend: 96.30, Requests: 830},
			{UserID: "1005", Spend: 72.90, Requests: 610},
		},
	}

	snap.CreditPackageSales = domain.CreditPackageSales{
		TotalSales:      3180.00,
		TotalPackages:   53,
		AvgPackageValue: 60.00,
		Packages: []domain.PackageSales{
			{PackageCode: "credits_100", Sales: 1980.00, Count: 33},
			{PackageCode: "credits_500", Sales: 1200.00, Count: 20},
		},
	}

	snap.CouponAnalytics = domain.CouponAnalytics{
		TotalRedemptions: 41,
		TotalDiscount:    615.00,
		ActiveCoupons:    3,
		TopCoupons: []domain.CouponUsage{
			{Code: "LAUNCH20", Redemptions: 24, Discount: 432.00},
			{Code: "WELCOME10", Redemptions: 12, Discount: 126.00},
			{Code: "PARTNER15", Redemptions: 5, Discount: 57.00},
		},
	}

	snap.ReferralRevenue = domain.ReferralRevenue{
		TotalReferrals:        37,
		SuccessfulConversions: 14,
		ConversionRate:        37.8,
	}

	snap.StripeMetrics = domain.StripeMetrics{
		Balance:  8320.50,
		Fees:     1447.52,
		Disputes: 1,
		PaymentMethods: map[string]int64{
			"card":       118,
			"sepa_debit": 21,
			"paypal":     3,
		},
	}

	snap.ChurnMetrics = domain.ChurnMetrics{
		CurrentChurnRate: 2.1,
		ChurnedThisMonth: 3,
		ChurnedMRR:       117.00,
	}

	snap.RecentTransactions = demoTransactions(window.End)
	return snap
}

// demoTrend draws a gently rising 14-day revenue curve ending at the window
// end, deterministic for a given day.
func demoTrend(end time.Time) []domain.TrendPoint {
	const days = 14
	trend := make([]domain.TrendPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i).UTC()
		base := 150.0 + float64(days-1-i)*12.5
		wobble := float64(day.Day()%5) * 8.0
		trend = append(trend, domain.TrendPoint{
			Date:    day.Format("2006-01-02"),
			Revenue: round2(base + wobble),
			Count:   int64(3 + day.Day()%4),
		})
	}
	return trend
}

func demoTransactions(end time.Time) []domain.Transaction {
	seed := []struct {
		name   string
		email  string
		amount float64
		plan   string
	}{
		{"Ada Lindqvist", "ada@example.com", 39.00, "Pro"},
		{"Marco Ruiz", "marco@example.com", 59.00, "Team"},
		{"Yuki Tanaka", "yuki@example.com", 19.00, "Starter"},
		{"Lena Novak", "lena@example.com", 39.00, "Pro"},
		{"Sam Ochieng", "sam@example.com", 59.00, "Team"},
	}

	txs := make([]domain.Transaction, 0, len(seed))
	for i, s := range seed {
		fee := round2(s.amount * 0.029)
		day := end.AddDate(0, 0, -i).UTC()
		txs = append(txs, domain.Transaction{
			ID:           "demo_" + day.Format("20060102"),
			CustomerName: s.name,
			Email:        s.email,
			Amount:       s.amount,
			Fee:          fee,
			Net:          round2(s.amount - fee),
			Plan:         s.plan,
			Status:       "succeeded",
			Date:         day.Format("2006-01-02"),
		})
	}
	return txs
}
