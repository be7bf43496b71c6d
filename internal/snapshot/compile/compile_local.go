package compile

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/revlens/internal/config"
	ledgerdomain "github.com/smallbiznis/revlens/internal/ledger/domain"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/smallbiznis/revlens/internal/snapshot/local"
)

// topCouponLimit bounds the coupon leaderboard.
const topCouponLimit = 5

// FromLocal compiles a snapshot from the local ledger. Fees are an assumed
// approximation here since no provider-verified figures exist on this path.
func FromLocal(raw *local.Data, window domain.Window, tuning config.Tuning) *domain.Snapshot {
	snap := emptySnapshot()
	snap.Source = domain.SourceLocal

	planNames := make(map[snowflake.ID]string, len(raw.Plans))
	planMonthly := make(map[snowflake.ID]float64, len(raw.Plans))
	for _, plan := range raw.Plans {
		planNames[plan.ID] = plan.Name
		planMonthly[plan.ID] = plan.MonthlyEquivalentCents() / 100
	}

	var mrr float64
	for planID, count := range raw.PlanCounts {
		mrr += float64(count) * planMonthly[planID]
	}
	snap.RevenueByPlan = localRevenueByPlan(raw.Plans, raw.PlanCounts, planMonthly, mrr)

	var totalRevenue, monthlyRevenue float64
	monthStart := window.End.AddDate(0, 0, -30)
	for _, payment := range raw.Payments {
		amount := centsToUnits(payment.AmountCents)
		totalRevenue += amount
		if !payment.PaidAt.Before(monthStart) {
			monthlyRevenue += amount
		}
	}
	fees := totalRevenue * tuning.FeeRate
	netRevenue := totalRevenue - fees

	// LTV derives from the raw churn ratio; only the emitted rate is rounded.
	var churnRatio, arpu, ltv float64
	if raw.ActiveCount > 0 {
		churnRatio = float64(raw.ChurnedCount) / float64(raw.ActiveCount) * 100
		arpu = mrr / float64(raw.ActiveCount)
	}
	if churnRatio > 0 {
		ltv = arpu / churnRatio * 100
	}
	churnRate := round1(churnRatio)

	snap.Overview = domain.Overview{
		TotalRevenue:          round2(totalRevenue),
		MonthlyRevenue:        round2(monthlyRevenue),
		MRR:                   round2(mrr),
		ARR:                   round2(mrr * 12),
		ActiveSubscriptions:   raw.ActiveCount,
		TrialingSubscriptions: raw.TrialingCount,
		ChurnRate:             churnRate,
		LTV:                   round2(ltv),
		ARPU:                  round2(arpu),
		NetRevenue:            round2(netRevenue),
		StripeFees:            round2(fees),
	}

	snap.MonthlyTrend = localTrend(raw.Payments, tuning.TrendDays)
	snap.TrialMetrics = localTrialMetrics(raw, planNames)
	snap.AIRevenue = localAIRevenue(raw.UsageLogs, tuning.TopConsumers)
	snap.CreditPackageSales = localCreditSales(raw.CreditTransactions)
	snap.CouponAnalytics = localCouponAnalytics(raw.CouponRedemptions)
	snap.ReferralRevenue = localReferralRevenue(raw.Referrals)

	var churnedMRR float64
	for planID, count := range raw.ChurnedByPlan {
		churnedMRR += float64(count) * planMonthly[planID]
	}
	snap.ChurnMetrics = domain.ChurnMetrics{
		CurrentChurnRate: churnRate,
		ChurnedThisMonth: raw.ChurnedCount,
		ChurnedMRR:       round2(churnedMRR),
	}

	snap.RecentTransactions = localRecentTransactions(raw.Payments, tuning)
	return snap
}

func localRevenueByPlan(plans []ledgerdomain.Plan, counts map[snowflake.ID]int64, monthly map[snowflake.ID]float64, totalMRR float64) []domain.PlanRevenue {
	out := make([]domain.PlanRevenue, 0, len(plans))
	shares := make([]float64, 0, len(plans))
	for _, plan := range plans {
		count := counts[plan.ID]
		planMRR := float64(count) * monthly[plan.ID]
		out = append(out, domain.PlanRevenue{
			PlanID:   plan.Code,
			PlanName: plan.Name,
			Count:    count,
			MRR:      round2(planMRR),
		})
		shares = append(shares, planMRR)
	}
	for i, pct := range allocatePercentages(shares, totalMRR) {
		out[i].Percentage = pct
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MRR > out[j].MRR })
	return out
}

func localTrend(payments []ledgerdomain.Payment, maxDays int) []domain.TrendPoint {
	type bucket struct {
		revenue float64
		count   int64
	}
	byDay := map[string]*bucket{}
	for _, payment := range payments {
		day := payment.PaidAt.UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
		}
		b.revenue += centsToUnits(payment.AmountCents)
		b.count++
	}
	return trendFromBuckets(byDay, maxDays, func(b *bucket) (float64, int64) {
		return b.revenue, b.count
	})
}

func localTrialMetrics(raw *local.Data, planNames map[snowflake.ID]string) domain.TrialMetrics {
	byPlan := make(map[string]int64, len(raw.TrialingByPlan))
	for planID, count := range raw.TrialingByPlan {
		name, ok := planNames[planID]
		if !ok {
			name = planID.String()
		}
		byPlan[name] = count
	}
	return domain.TrialMetrics{
		ActiveTrials:        raw.TrialingCount,
		TrialConversionRate: ratioPct(float64(raw.TrialsConverted), float64(raw.TrialsEnded)),
		AvgTrialDuration:    round1(raw.AvgTrialDays),
		TrialsByPlan:        byPlan,
	}
}

func localAIRevenue(logs []ledgerdomain.UsageLog, topN int) domain.AIRevenue {
	type featureAcc struct {
		revenue  float64
		cost     float64
		requests int64
	}
	type userAcc struct {
		spend    float64
		requests int64
	}

	var totalRevenue, totalCost float64
	byFeature := map[string]*featureAcc{}
	byUser := map[snowflake.ID]*userAcc{}
	for _, entry := range logs {
		totalRevenue += entry.PriceEur
		totalCost += entry.CostEur

		f, ok := byFeature[entry.Feature]
		if !ok {
			f = &featureAcc{}
			byFeature[entry.Feature] = f
		}
		f.revenue += entry.PriceEur
		f.cost += entry.CostEur
		f.requests++

		u, ok := byUser[entry.UserID]
		if !ok {
			u = &userAcc{}
			byUser[entry.UserID] = u
		}
		u.spend += entry.PriceEur
		u.requests++
	}

	features := make([]domain.FeatureRevenue, 0, len(byFeature))
	for name, acc := range byFeature {
		var avgCost float64
		if acc.requests > 0 {
			avgCost = acc.cost / float64(acc.requests)
		}
		features = append(features, domain.FeatureRevenue{
			Feature:  name,
			Revenue:  round2(acc.revenue),
			Cost:     round2(acc.cost),
			Requests: acc.requests,
			AvgCost:  round2(avgCost),
		})
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Revenue > features[j].Revenue })

	consumers := make([]domain.Consumer, 0, len(byUser))
	for userID, acc := range byUser {
		consumers = append(consumers, domain.Consumer{
			UserID:   userID.String(),
			Spend:    round2(acc.spend),
			Requests: acc.requests,
		})
	}
	sort.Slice(consumers, func(i, j int) bool { return consumers[i].Spend > consumers[j].Spend })
	if len(consumers) > topN {
		consumers = consumers[:topN]
	}

	profit := totalRevenue - totalCost
	var margin int
	if totalCost > 0 {
		margin = roundPct(profit, totalCost)
	}

	return domain.AIRevenue{
		TotalRevenueEur: round2(totalRevenue),
		TotalCostEur:    round2(totalCost),
		ProfitEur:       round2(profit),
		MarginPercent:   margin,
		TotalRequests:   int64(len(logs)),
		UniqueUsers:     int64(len(byUser)),
		ByFeature:       features,
		TopConsumers:    consumers,
	}
}

func localCreditSales(txs []ledgerdomain.CreditTransaction) domain.CreditPackageSales {
	type pkgAcc struct {
		sales float64
		count int64
	}
	byCode := map[string]*pkgAcc{}
	var totalSales float64
	for _, tx := range txs {
		amount := centsToUnits(tx.AmountCents)
		totalSales += amount
		p, ok := byCode[tx.PackageCode]
		if !ok {
			p = &pkgAcc{}
			byCode[tx.PackageCode] = p
		}
		p.sales += amount
		p.count++
	}

	packages := make([]domain.PackageSales, 0, len(byCode))
	for code, acc := range byCode {
		packages = append(packages, domain.PackageSales{
			PackageCode: code,
			Sales:       round2(acc.sales),
			Count:       acc.count,
		})
	}
	sort.Slice(packages, func(i, j int) bool { return packages[i].Sales > packages[j].Sales })

	var avg float64
	if len(txs) > 0 {
		avg = totalSales / float64(len(txs))
	}
	return domain.CreditPackageSales{
		TotalSales:      round2(totalSales),
		TotalPackages:   int64(len(txs)),
		AvgPackageValue: round2(avg),
		Packages:        packages,
	}
}

func localCouponAnalytics(redemptions []ledgerdomain.CouponRedemption) domain.CouponAnalytics {
	type couponAcc struct {
		redemptions int64
		discount    float64
	}
	byCode := map[string]*couponAcc{}
	var totalDiscount float64
	for _, redemption := range redemptions {
		discount := centsToUnits(redemption.DiscountCents)
		totalDiscount += discount
		c, ok := byCode[redemption.CouponCode]
		if !ok {
			c = &couponAcc{}
			byCode[redemption.CouponCode] = c
		}
		c.redemptions++
		c.discount += discount
	}

	coupons := make([]domain.CouponUsage, 0, len(byCode))
	for code, acc := range byCode {
		coupons = append(coupons, domain.CouponUsage{
			Code:        code,
			Redemptions: acc.redemptions,
			Discount:    round2(acc.discount),
		})
	}
	sort.Slice(coupons, func(i, j int) bool {
		if coupons[i].Redemptions != coupons[j].Redemptions {
			return coupons[i].Redemptions > coupons[j].Redemptions
		}
		return coupons[i].Code < coupons[j].Code
	})
	if len(coupons) > topCouponLimit {
		coupons = coupons[:topCouponLimit]
	}

	return domain.CouponAnalytics{
		TotalRedemptions: int64(len(redemptions)),
		TotalDiscount:    round2(totalDiscount),
		ActiveCoupons:    int64(len(byCode)),
		TopCoupons:       coupons,
	}
}

func localReferralRevenue(referrals []ledgerdomain.Referral) domain.ReferralRevenue {
	var converted int64
	for _, referral := range referrals {
		if referral.Converted {
			converted++
		}
	}
	return domain.ReferralRevenue{
		TotalReferrals:        int64(len(referrals)),
		SuccessfulConversions: converted,
		ConversionRate:        ratioPct(float64(converted), float64(len(referrals))),
	}
}

func localRecentTransactions(payments []ledgerdomain.Payment, tuning config.Tuning) []domain.Transaction {
	sorted := make([]ledgerdomain.Payment, len(payments))
	copy(sorted, payments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PaidAt.After(sorted[j].PaidAt) })
	if len(sorted) > tuning.RecentTransactions {
		sorted = sorted[:tuning.RecentTransactions]
	}

	txs := make([]domain.Transaction, 0, len(sorted))
	for _, payment := range sorted {
		amount := centsToUnits(payment.AmountCents)
		fee := amount * tuning.FeeRate
		txs = append(txs, domain.Transaction{
			ID:           payment.ID.String(),
			CustomerName: payment.CustomerName,
			Email:        payment.CustomerEmail,
			Amount:       round2(amount),
			Fee:          round2(fee),
			Net:          round2(amount - fee),
			Plan:         payment.PlanCode,
			Status:       payment.Status,
			Date:         payment.PaidAt.UTC().Format("2006-01-02"),
		})
	}
	return txs
}
