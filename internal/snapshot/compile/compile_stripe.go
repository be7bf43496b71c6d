package compile

import (
	"sort"
	"time"

	"github.com/smallbiznis/revlens/internal/config"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/smallbiznis/revlens/internal/snapshot/provider"
	"github.com/smallbiznis/revlens/internal/stripe"
)

// FromStripe compiles a snapshot from provider data. Pure: the input is
// never mutated, so repeated calls over the same data yield the same
// snapshot.
func FromStripe(raw *provider.Data, window domain.Window, tuning config.Tuning) *domain.Snapshot {
	snap := emptySnapshot()
	snap.Source = domain.SourceStripe

	mrr := stripeMRR(raw.Subscriptions)
	snap.RevenueByPlan = stripeRevenueByPlan(raw.Subscriptions, mrr)

	var totalRevenue, monthlyRevenue, totalFees, netRevenue float64
	monthStart := window.End.AddDate(0, 0, -30)
	for _, tx := range raw.BalanceTransactions {
		totalFees += centsToUnits(tx.Fee)
		netRevenue += centsToUnits(tx.Net)
		if !isRevenueTransaction(tx.Type) {
			continue
		}
		amount := centsToUnits(tx.Amount)
		totalRevenue += amount
		if !time.Unix(tx.Created, 0).UTC().Before(monthStart) {
			monthlyRevenue += amount
		}
	}

	var active, trialing int64
	for _, sub := range raw.Subscriptions {
		switch sub.Status {
		case "active":
			active++
		case "trialing":
			trialing++
		}
	}

	churned, churnedMRR := stripeChurn(raw.Subscriptions, window)

	// LTV derives from the raw churn ratio; only the emitted rate is rounded.
	var churnRatio, arpu, ltv float64
	if active > 0 {
		churnRatio = float64(churned) / float64(active) * 100
		arpu = mrr / float64(active)
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
		ActiveSubscriptions:   active,
		TrialingSubscriptions: trialing,
		ChurnRate:             churnRate,
		LTV:                   round2(ltv),
		ARPU:                  round2(arpu),
		NetRevenue:            round2(netRevenue),
		StripeFees:            round2(totalFees),
	}

	snap.MonthlyTrend = stripeTrend(raw.BalanceTransactions, tuning.TrendDays)
	snap.TrialMetrics = stripeTrialMetrics(raw.Subscriptions, trialing)
	snap.StripeMetrics = stripeAccountMetrics(raw, totalFees)
	snap.ChurnMetrics = domain.ChurnMetrics{
		CurrentChurnRate: churnRate,
		ChurnedThisMonth: churned,
		ChurnedMRR:       round2(churnedMRR),
	}
	snap.RecentTransactions = stripeRecentTransactions(raw.Charges, tuning.RecentTransactions)
	return snap
}

// isRevenueTransaction filters the balance transaction types counted as
// revenue. Payouts, refunds and adjustments still contribute fee and net
// figures but not gross revenue.
func isRevenueTransaction(txType string) bool {
	switch txType {
	case "charge", "payment":
		return true
	default:
		return false
	}
}

func stripeMRR(subs []stripe.Subscription) float64 {
	var mrr float64
	for _, sub := range subs {
		if sub.Status != "active" {
			continue
		}
		mrr += subscriptionMonthly(sub)
	}
	return mrr
}

func subscriptionMonthly(sub stripe.Subscription) float64 {
	var total float64
	for _, item := range sub.Items.Data {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		amount := centsToUnits(item.Price.UnitAmount * qty)
		interval, count := "", int64(0)
		if item.Price.Recurring != nil {
			interval = item.Price.Recurring.Interval
			count = item.Price.Recurring.IntervalCount
		}
		total += MonthlyEquivalent(amount, interval, count)
	}
	return total
}

type planAccumulator struct {
	id    string
	name  string
	count int64
	mrr   float64
}

func stripeRevenueByPlan(subs []stripe.Subscription, totalMRR float64) []domain.PlanRevenue {
	byPlan := map[string]*planAccumulator{}
	for _, sub := range subs {
		if sub.Status != "active" || len(sub.Items.Data) == 0 {
			continue
		}
		price := sub.Items.Data[0].Price
		acc, ok := byPlan[price.Product]
		if !ok {
			name := price.Nickname
			if name == "" {
				name = price.Product
			}
			acc = &planAccumulator{id: price.Product, name: name}
			byPlan[price.Product] = acc
		}
		acc.count++
		acc.mrr += subscriptionMonthly(sub)
	}

	plans := make([]domain.PlanRevenue, 0, len(byPlan))
	shares := make([]float64, 0, len(byPlan))
	for _, acc := range byPlan {
		plans = append(plans, domain.PlanRevenue{
			PlanID:   acc.id,
			PlanName: acc.name,
			Count:    acc.count,
			MRR:      round2(acc.mrr),
		})
		shares = append(shares, acc.mrr)
	}
	for i, pct := range allocatePercentages(shares, totalMRR) {
		plans[i].Percentage = pct
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].MRR > plans[j].MRR })
	return plans
}

func stripeChurn(subs []stripe.Subscription, window domain.Window) (int64, float64) {
	var churned int64
	var churnedMRR float64
	for _, sub := range subs {
		if sub.CanceledAt == 0 {
			continue
		}
		canceledAt := time.Unix(sub.CanceledAt, 0).UTC()
		if canceledAt.Before(window.Start) || canceledAt.After(window.End) {
			continue
		}
		churned++
		churnedMRR += subscriptionMonthly(sub)
	}
	return churned, churnedMRR
}

func stripeTrend(txs []stripe.BalanceTransaction, maxDays int) []domain.TrendPoint {
	type bucket struct {
		revenue float64
		count   int64
	}
	byDay := map[string]*bucket{}
	for _, tx := range txs {
		if !isRevenueTransaction(tx.Type) {
			continue
		}
		day := time.Unix(tx.Created, 0).UTC().Format("2006-01-02")
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
		}
		b.revenue += centsToUnits(tx.Amount)
		b.count++
	}
	return trendFromBuckets(byDay, maxDays, func(b *bucket) (float64, int64) {
		return b.revenue, b.count
	})
}

func stripeTrialMetrics(subs []stripe.Subscription, trialing int64) domain.TrialMetrics {
	byPlan := map[string]int64{}
	for _, sub := range subs {
		if sub.Status != "trialing" || len(sub.Items.Data) == 0 {
			continue
		}
		price := sub.Items.Data[0].Price
		name := price.Nickname
		if name == "" {
			name = price.Product
		}
		byPlan[name]++
	}
	// Trial outcomes are not reconstructable from the subscription list
	// alone, so conversion figures stay zero on this path.
	return domain.TrialMetrics{
		ActiveTrials: trialing,
		TrialsByPlan: byPlan,
	}
}

func stripeAccountMetrics(raw *provider.Data, totalFees float64) domain.StripeMetrics {
	var balance float64
	for _, amount := range raw.Balance.Available {
		balance += centsToUnits(amount.Amount)
	}

	var disputes int64
	methods := map[string]int64{}
	for _, charge := range raw.Charges {
		if charge.Disputed {
			disputes++
		}
		if charge.PaymentMethodDetails.Type != "" {
			methods[charge.PaymentMethodDetails.Type]++
		}
	}

	return domain.StripeMetrics{
		Balance:        round2(balance),
		Fees:           round2(totalFees),
		Disputes:       disputes,
		PaymentMethods: methods,
	}
}

func stripeRecentTransactions(charges []stripe.Charge, limit int) []domain.Transaction {
	sorted := make([]stripe.Charge, len(charges))
	copy(sorted, charges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Created > sorted[j].Created })
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	txs := make([]domain.Transaction, 0, len(sorted))
	for _, charge := range sorted {
		email := charge.BillingDetails.Email
		if email == "" {
			email = charge.ReceiptEmail
		}
		amount := centsToUnits(charge.Amount)
		txs = append(txs, domain.Transaction{
			ID:           charge.ID,
			CustomerName: charge.BillingDetails.Name,
			Email:        email,
			Amount:       round2(amount),
			Net:          round2(amount),
			Plan:         charge.Description,
			Status:       charge.Status,
			Date:         time.Unix(charge.Created, 0).UTC().Format("2006-01-02"),
		})
	}
	return txs
}
