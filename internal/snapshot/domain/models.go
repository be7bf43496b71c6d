// Package domain defines the snapshot contract returned to dashboard callers.
package domain

import "time"

// Source tags where a snapshot's figures came from.
type Source string

const (
	SourceDemo   Source = "demo"
	SourceStripe Source = "stripe"
	SourceLocal  Source = "local"
)

// Period selects the aggregation window.
type Period string

const (
	Period7d  Period = "7d"
	Period30d Period = "30d"
	Period90d Period = "90d"
	Period1y  Period = "1y"
)

// ParsePeriod maps raw input to a known period, falling back to 30d on
// unrecognized values rather than rejecting the request.
func ParsePeriod(raw string) Period {
	switch Period(raw) {
	case Period7d, Period30d, Period90d, Period1y:
		return Period(raw)
	default:
		return Period30d
	}
}

// WindowStart resolves the period to the start of the [start, now] range.
func (p Period) WindowStart(now time.Time) time.Time {
	switch p {
	case Period7d:
		return now.AddDate(0, 0, -7)
	case Period90d:
		return now.AddDate(0, 0, -90)
	case Period1y:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

// Request parameterizes one snapshot read.
type Request struct {
	Period Period
}

// Window is the resolved [Start, End] aggregation range.
type Window struct {
	Start time.Time
	End   time.Time
}

// All monetary fields below are decimal currency units rounded to two
// decimals at the serialization boundary.

type Overview struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	MonthlyRevenue        float64 `json:"monthlyRevenue"`
	MRR                   float64 `json:"mrr"`
	ARR                   float64 `json:"arr"`
	ActiveSubscriptions   int64   `json:"activeSubscriptions"`
	TrialingSubscriptions int64   `json:"trialingSubscriptions"`
	ChurnRate             float64 `json:"churnRate"`
	LTV                   float64 `json:"ltv"`
	ARPU                  float64 `json:"arpu"`
	NetRevenue            float64 `json:"netRevenue"`
	StripeFees            float64 `json:"stripeFees"`
}

type PlanRevenue struct {
	PlanID     string  `json:"planId"`
	PlanName   string  `json:"planName"`
	Count      int64   `json:"count"`
	MRR        float64 `json:"mrr"`
	Percentage int     `json:"percentage"`
}

type TrendPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Count   int64   `json:"count"`
}

type TrialMetrics struct {
	ActiveTrials        int64            `json:"activeTrials"`
	TrialConversionRate float64          `json:"trialConversionRate"`
	AvgTrialDuration    float64          `json:"avgTrialDuration"`
	TrialsByPlan        map[string]int64 `json:"trialsByPlan"`
}

type FeatureRevenue struct {
	Feature  string  `json:"feature"`
	Revenue  float64 `json:"revenue"`
	Cost     float64 `json:"cost"`
	Requests int64   `json:"requests"`
	AvgCost  float64 `json:"avgCost"`
}

type Consumer struct {
	UserID   string  `json:"userId"`
	Spend    float64 `json:"spend"`
	Requests int64   `json:"requests"`
}

type AIRevenue struct {
	TotalRevenueEur float64          `json:"totalRevenueEur"`
	TotalCostEur    float64          `json:"totalCostEur"`
	ProfitEur       float64          `json:"profitEur"`
	MarginPercent   int              `json:"marginPercent"`
	TotalRequests   int64            `json:"totalRequests"`
	UniqueUsers     int64            `json:"uniqueUsers"`
	ByFeature       []FeatureRevenue `json:"byFeature"`
	TopConsumers    []Consumer       `json:"topConsumers"`
}

type PackageSales struct {
	PackageCode string  `json:"packageCode"`
	Sales       float64 `json:"sales"`
	Count       int64   `json:"count"`
}

type CreditPackageSales struct {
	TotalSales      float64        `json:"totalSales"`
	TotalPackages   int64          `json:"totalPackages"`
	AvgPackageValue float64        `json:"avgPackageValue"`
	Packages        []PackageSales `json:"packages"`
}

type CouponUsage struct {
	Code        string  `json:"code"`
	Redemptions int64   `json:"redemptions"`
	Discount    float64 `json:"discount"`
}

type CouponAnalytics struct {
	TotalRedemptions int64         `json:"totalRedemptions"`
	TotalDiscount    float64       `json:"totalDiscount"`
	ActiveCoupons    int64         `json:"activeCoupons"`
	TopCoupons       []CouponUsage `json:"topCoupons"`
}

type ReferralRevenue struct {
	TotalReferrals        int64   `json:"totalReferrals"`
	SuccessfulConversions int64   `json:"successfulConversions"`
	ConversionRate        float64 `json:"conversionRate"`
}

type StripeMetrics struct {
	Balance        float64          `json:"balance"`
	Fees           float64          `json:"fees"`
	Disputes       int64            `json:"disputes"`
	PaymentMethods map[string]int64 `json:"paymentMethods"`
}

type ChurnMetrics struct {
	CurrentChurnRate float64 `json:"currentChurnRate"`
	ChurnedThisMonth int64   `json:"churnedThisMonth"`
	ChurnedMRR       float64 `json:"churnedMrr"`
}

type Transaction struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customerName"`
	Email        string  `json:"email"`
	Amount       float64 `json:"amount"`
	Fee          float64 `json:"fee"`
	Net          float64 `json:"net"`
	Plan         string  `json:"plan"`
	Status       string  `json:"status"`
	Date         string  `json:"date"`
}

// Snapshot is the complete point-in-time aggregation result. It is built
// fresh per request and never persisted.
type Snapshot struct {
	Overview           Overview           `json:"overview"`
	RevenueByPlan      []PlanRevenue      `json:"revenueByPlan"`
	MonthlyTrend       []TrendPoint       `json:"monthlyTrend"`
	TrialMetrics       TrialMetrics       `json:"trialMetrics"`
	AIRevenue          AIRevenue          `json:"aiRevenue"`
	CreditPackageSales CreditPackageSales `json:"creditPackageSales"`
	CouponAnalytics    CouponAnalytics    `json:"couponAnalytics"`
	ReferralRevenue    ReferralRevenue    `json:"referralRevenue"`
	StripeMetrics      StripeMetrics      `json:"stripeMetrics"`
	ChurnMetrics       ChurnMetrics       `json:"churnMetrics"`
	RecentTransactions []Transaction      `json:"recentTransactions"`
	Period             Period             `json:"period"`
	Source             Source             `json:"source"`
	Notice             string             `json:"notice,omitempty"`
}
