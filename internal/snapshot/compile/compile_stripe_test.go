package compile

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/smallbiznis/revlens/internal/config"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/smallbiznis/revlens/internal/snapshot/provider"
	"github.com/smallbiznis/revlens/internal/stripe"
	"github.com/stretchr/testify/assert"
)

func testWindow() domain.Window {
	end := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return domain.Window{Start: end.AddDate(0, 0, -30), End: end}
}

func activeSub(id, product, nickname string, unitAmountCents int64, interval string, intervalCount int64) stripe.Subscription {
	return stripe.Subscription{
		ID:     id,
		Status: "active",
		Items: stripe.SubscriptionItemList{Data: []stripe.SubscriptionItem{{
			ID:       id + "_item",
			Quantity: 1,
			Price: stripe.Price{
				ID:         id + "_price",
				UnitAmount: unitAmountCents,
				Product:    product,
				Nickname:   nickname,
				Recurring:  &stripe.Recurring{Interval: interval, IntervalCount: intervalCount},
			},
		}}},
	}
}

func TestFromStripeMRRFromAnnualSubscription(t *testing.T) {
	window := testWindow()
	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_pro", "Pro", 84000, "year", 1),
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	assert.Equal(t, 70.0, snap.Overview.MRR)
	assert.Equal(t, 840.0, snap.Overview.ARR)
	assert.Equal(t, int64(1), snap.Overview.ActiveSubscriptions)
	assert.Equal(t, domain.SourceStripe, snap.Source)
}

func TestFromStripeMixedCadencesMRR(t *testing.T) {
	window := testWindow()
	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_a", "A", 1000, "month", 1),
			activeSub("sub_2", "prod_b", "B", 2000, "month", 1),
			activeSub("sub_3", "prod_c", "C", 3000, "month", 1),
			activeSub("sub_4", "prod_d", "D", 12000, "year", 1),
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	assert.Equal(t, 70.0, snap.Overview.MRR)
	assert.Equal(t, 840.0, snap.Overview.ARR)
}

func TestFromStripeARRFromUnroundedMRR(t *testing.T) {
	window := testWindow()
	// 100.00/year is 8.333.. per month. ARR must come from the unrounded
	// monthly figure, not from round2(8.33)*12.
	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_s", "Starter", 10000, "year", 1),
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	assert.Equal(t, 8.33, snap.Overview.MRR)
	assert.Equal(t, 100.0, snap.Overview.ARR)
}

func TestFromStripeRevenueByPlanPercentages(t *testing.T) {
	window := testWindow()
	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_pro", "Pro", 7500, "month", 1),
			activeSub("sub_2", "prod_pro", "Pro", 7500, "month", 1),
			activeSub("sub_3", "prod_starter", "Starter", 5000, "month", 1),
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	if len(snap.RevenueByPlan) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(snap.RevenueByPlan))
	}
	var sum int
	for _, plan := range snap.RevenueByPlan {
		sum += plan.Percentage
	}
	assert.Equal(t, 100, sum)
	assert.Equal(t, "Pro", snap.RevenueByPlan[0].PlanName)
	assert.Equal(t, 150.0, snap.RevenueByPlan[0].MRR)
	assert.Equal(t, 75, snap.RevenueByPlan[0].Percentage)
}

func TestFromStripeHalfwayPlanPercentages(t *testing.T) {
	window := testWindow()
	// 50.50 and 49.50 both round half up on their own, which would sum the
	// percentages to 101. The allocation must keep the total at 100.
	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_a", "A", 5050, "month", 1),
			activeSub("sub_2", "prod_b", "B", 4950, "month", 1),
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	if len(snap.RevenueByPlan) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(snap.RevenueByPlan))
	}
	var sum int
	for _, plan := range snap.RevenueByPlan {
		sum += plan.Percentage
		if plan.Percentage < 49 || plan.Percentage > 51 {
			t.Fatalf("plan %s percentage %d outside expected range", plan.PlanID, plan.Percentage)
		}
	}
	assert.Equal(t, 100, sum)
}

func TestFromStripeLTVFromUnroundedChurn(t *testing.T) {
	window := testWindow()
	canceled := activeSub("sub_gone", "prod_pro", "Pro", 1000, "month", 1)
	canceled.Status = "canceled"
	canceled.CanceledAt = window.End.AddDate(0, 0, -3).Unix()

	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_pro", "Pro", 1000, "month", 1),
			activeSub("sub_2", "prod_pro", "Pro", 1000, "month", 1),
			activeSub("sub_3", "prod_pro", "Pro", 1000, "month", 1),
			canceled,
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	// churn is 1 of 3 actives. LTV uses the raw 33.333.. ratio, so
	// 10 / 33.333.. * 100 is exactly 30.00, not the 30.03 the rounded
	// rate would give.
	assert.Equal(t, 33.3, snap.Overview.ChurnRate)
	assert.Equal(t, 10.0, snap.Overview.ARPU)
	assert.Equal(t, 30.0, snap.Overview.LTV)
}

func TestFromStripeZeroGuards(t *testing.T) {
	window := testWindow()
	snap := FromStripe(&provider.Data{}, window, config.DefaultTuning())

	assert.Equal(t, 0.0, snap.Overview.MRR)
	assert.Equal(t, 0.0, snap.Overview.ChurnRate)
	assert.Equal(t, 0.0, snap.Overview.ARPU)
	assert.Equal(t, 0.0, snap.Overview.LTV)
	assert.NotNil(t, snap.RevenueByPlan)
	assert.NotNil(t, snap.MonthlyTrend)
	assert.NotNil(t, snap.RecentTransactions)
}

func TestFromStripeChurn(t *testing.T) {
	window := testWindow()
	canceledInWindow := activeSub("sub_gone", "prod_pro", "Pro", 3900, "month", 1)
	canceledInWindow.Status = "canceled"
	canceledInWindow.CanceledAt = window.End.AddDate(0, 0, -5).Unix()

	canceledBefore := activeSub("sub_old", "prod_pro", "Pro", 3900, "month", 1)
	canceledBefore.Status = "canceled"
	canceledBefore.CanceledAt = window.Start.AddDate(0, 0, -10).Unix()

	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_pro", "Pro", 3900, "month", 1),
			activeSub("sub_2", "prod_pro", "Pro", 3900, "month", 1),
			canceledInWindow,
			canceledBefore,
		},
	}

	snap := FromStripe(raw, window, config.DefaultTuning())

	assert.Equal(t, int64(1), snap.ChurnMetrics.ChurnedThisMonth)
	assert.Equal(t, 39.0, snap.ChurnMetrics.ChurnedMRR)
	assert.Equal(t, 50.0, snap.Overview.ChurnRate)
}

func TestFromStripeTrendCappedAndAscending(t *testing.T) {
	window := domain.Window{
		Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	var txs []stripe.BalanceTransaction
	for i := 0; i < 45; i++ {
		day := window.Start.AddDate(0, 0, i)
		txs = append(txs, stripe.BalanceTransaction{
			ID:      fmt.Sprintf("txn_%d", i),
			Type:    "charge",
			Amount:  1000,
			Created: day.Unix(),
		})
	}

	snap := FromStripe(&provider.Data{BalanceTransactions: txs}, window, config.DefaultTuning())

	if len(snap.MonthlyTrend) != 30 {
		t.Fatalf("expected trend capped to 30 buckets, got %d", len(snap.MonthlyTrend))
	}
	for i := 1; i < len(snap.MonthlyTrend); i++ {
		if snap.MonthlyTrend[i-1].Date >= snap.MonthlyTrend[i].Date {
			t.Fatalf("trend not ascending at %d: %s >= %s",
				i, snap.MonthlyTrend[i-1].Date, snap.MonthlyTrend[i].Date)
		}
	}
	// The cap keeps the most recent days.
	assert.Equal(t, "2026-02-14", snap.MonthlyTrend[len(snap.MonthlyTrend)-1].Date)
}

func TestFromStripeRecentTransactions(t *testing.T) {
	window := testWindow()
	var charges []stripe.Charge
	for i := 0; i < 15; i++ {
		charges = append(charges, stripe.Charge{
			ID:      fmt.Sprintf("ch_%d", i),
			Amount:  2500,
			Status:  "succeeded",
			Created: window.Start.AddDate(0, 0, i).Unix(),
			BillingDetails: stripe.BillingDetails{
				Name:  "Customer",
				Email: "customer@example.com",
			},
		})
	}

	snap := FromStripe(&provider.Data{Charges: charges}, window, config.DefaultTuning())

	if len(snap.RecentTransactions) != 10 {
		t.Fatalf("expected 10 recent transactions, got %d", len(snap.RecentTransactions))
	}
	assert.Equal(t, "ch_14", snap.RecentTransactions[0].ID)
	assert.Equal(t, 25.0, snap.RecentTransactions[0].Amount)
}

func TestFromStripeIdempotent(t *testing.T) {
	window := testWindow()
	raw := &provider.Data{
		Subscriptions: []stripe.Subscription{
			activeSub("sub_1", "prod_pro", "Pro", 84000, "year", 1),
			activeSub("sub_2", "prod_starter", "Starter", 1900, "month", 1),
		},
		BalanceTransactions: []stripe.BalanceTransaction{
			{ID: "txn_1", Type: "charge", Amount: 8400, Fee: 250, Net: 8150, Created: window.End.AddDate(0, 0, -1).Unix()},
		},
		Charges: []stripe.Charge{
			{ID: "ch_1", Amount: 8400, Status: "succeeded", Created: window.End.AddDate(0, 0, -1).Unix()},
		},
	}

	first := FromStripe(raw, window, config.DefaultTuning())
	second := FromStripe(raw, window, config.DefaultTuning())

	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical snapshots for identical input")
	}
}
