// Package local reads the snapshot inputs from the service's own datastore.
// It is the fallback path when no billing provider is configured, so every
// sub-query degrades to its zero value instead of failing the request.
package local

import (
	"context"
	"sync"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/revlens/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/revlens/internal/observability/metrics"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Data is the raw local-ledger output handed to the compiler.
type Data struct {
	Payments           []ledgerdomain.Payment
	ActiveCount        int64
	TrialingCount      int64
	Plans              []ledgerdomain.Plan
	PlanCounts         map[snowflake.ID]int64
	UsageLogs          []ledgerdomain.UsageLog
	CreditTransactions []ledgerdomain.CreditTransaction
	CouponRedemptions  []ledgerdomain.CouponRedemption
	Referrals          []ledgerdomain.Referral
	ChurnedCount       int64
	ChurnedByPlan      map[snowflake.ID]int64
	TrialsEnded        int64
	TrialsConverted    int64
	AvgTrialDays       float64
	TrialingByPlan     map[snowflake.ID]int64
}

// Reader runs the local sub-queries for a window.
type Reader struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func NewReader(db *gorm.DB, log *zap.Logger, metrics *obsmetrics.Metrics) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{
		db:      db,
		log:     log.Named("snapshot.local"),
		metrics: metrics,
	}
}

// Read fans out the sub-queries and waits for all of them. A failed query
// leaves its slot at the zero value and is logged, never surfaced.
func (r *Reader) Read(ctx context.Context, window domain.Window) *Data {
	data := &Data{
		PlanCounts:     map[snowflake.ID]int64{},
		ChurnedByPlan:  map[snowflake.ID]int64{},
		TrialingByPlan: map[snowflake.ID]int64{},
	}

	var wg sync.WaitGroup
	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				r.metrics.RecordLocalDegradation(ctx, name)
				r.log.Warn("local query degraded",
					zap.String("query", name),
					zap.Error(err),
				)
			}
		}()
	}

	run("payments", func() error {
		return r.db.WithContext(ctx).
			Where("paid_at >= ? AND paid_at <= ?", window.Start, window.End).
			Where("status = ?", "succeeded").
			Order("paid_at DESC").
			Find(&data.Payments).Error
	})

	run("active_count", func() error {
		return r.db.WithContext(ctx).Model(&ledgerdomain.Subscription{}).
			Where("status = ?", ledgerdomain.StatusActive).
			Count(&data.ActiveCount).Error
	})

	run("trialing_count", func() error {
		return r.db.WithContext(ctx).Model(&ledgerdomain.Subscription{}).
			Where("status = ?", ledgerdomain.StatusTrialing).
			Count(&data.TrialingCount).Error
	})

	run("plans", func() error {
		return r.db.WithContext(ctx).Order("code").Find(&data.Plans).Error
	})

	run("plan_counts", func() error {
		counts, err := r.groupSubscriptionsByPlan(ctx, ledgerdomain.StatusActive, nil)
		if err != nil {
			return err
		}
		data.PlanCounts = counts
		return nil
	})

	run("usage_logs", func() error {
		return r.db.WithContext(ctx).
			Where("recorded_at >= ? AND recorded_at <= ?", window.Start, window.End).
			Find(&data.UsageLogs).Error
	})

	run("credit_transactions", func() error {
		return r.db.WithContext(ctx).
			Where("created_at >= ? AND created_at <= ?", window.Start, window.End).
			Find(&data.CreditTransactions).Error
	})

	run("coupon_redemptions", func() error {
		return r.db.WithContext(ctx).
			Where("redeemed_at >= ? AND redeemed_at <= ?", window.Start, window.End).
			Find(&data.CouponRedemptions).Error
	})

	run("referrals", func() error {
		return r.db.WithContext(ctx).
			Where("created_at >= ? AND created_at <= ?", window.Start, window.End).
			Find(&data.Referrals).Error
	})

	run("churned", func() error {
		counts, err := r.groupSubscriptionsByPlan(ctx, ledgerdomain.StatusCanceled, &window)
		if err != nil {
			return err
		}
		data.ChurnedByPlan = counts
		for _, count := range counts {
			data.ChurnedCount += count
		}
		return nil
	})

	run("trialing_by_plan", func() error {
		counts, err := r.groupSubscriptionsByPlan(ctx, ledgerdomain.StatusTrialing, nil)
		if err != nil {
			return err
		}
		data.TrialingByPlan = counts
		return nil
	})

	run("trial_outcomes", func() error {
		return r.readTrialOutcomes(ctx, window, data)
	})

	wg.Wait()
	return data
}

type planCountRow struct {
	PlanID snowflake.ID `gorm:"column:plan_id"`
	Count  int64        `gorm:"column:count"`
}

func (r *Reader) groupSubscriptionsByPlan(ctx context.Context, status string, canceledIn *domain.Window) (map[snowflake.ID]int64, error) {
	query := r.db.WithContext(ctx).Model(&ledgerdomain.Subscription{}).
		Select("plan_id, COUNT(*) AS count").
		Where("status = ?", status).
		Group("plan_id")
	if canceledIn != nil {
		query = query.Where("canceled_at IS NOT NULL AND canceled_at >= ? AND canceled_at <= ?",
			canceledIn.Start, canceledIn.End)
	}

	var rows []planCountRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[snowflake.ID]int64, len(rows))
	for _, row := range rows {
		counts[row.PlanID] = row.Count
	}
	return counts, nil
}

func (r *Reader) readTrialOutcomes(ctx context.Context, window domain.Window, data *Data) error {
	var ended []ledgerdomain.Subscription
	if err := r.db.WithContext(ctx).
		Where("trial_end_at IS NOT NULL AND trial_end_at >= ? AND trial_end_at <= ?", window.Start, window.End).
		Find(&ended).Error; err != nil {
		return err
	}

	var converted int64
	var totalDays float64
	var measured int64
	for _, sub := range ended {
		switch sub.Status {
		case ledgerdomain.StatusActive, ledgerdomain.StatusPastDue:
			converted++
		}
		if sub.TrialStartAt != nil && sub.TrialEndAt != nil {
			totalDays += sub.TrialEndAt.Sub(*sub.TrialStartAt).Hours() / 24
			measured++
		}
	}

	data.TrialsEnded = int64(len(ended))
	data.TrialsConverted = converted
	if measured > 0 {
		data.AvgTrialDays = totalDays / float64(measured)
	}
	return nil
}
