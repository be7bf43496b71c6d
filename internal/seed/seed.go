// Package seed bootstraps the default catalog so a fresh instance serves a
// meaningful snapshot before any real data arrives.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ledgerdomain "github.com/smallbiznis/revlens/internal/ledger/domain"
	"gorm.io/gorm"
)

type defaultPlan struct {
	code         string
	name         string
	kind         string
	monthlyCents int64
	annualCents  int64
}

var defaultPlans = []defaultPlan{
	{code: "starter", name: "Starter", kind: ledgerdomain.PlanKindIndependent, monthlyCents: 1900},
	{code: "pro", name: "Pro", kind: ledgerdomain.PlanKindIndependent, monthlyCents: 3900},
	{code: "team", name: "Team", kind: ledgerdomain.PlanKindOperator, annualCents: 59900},
}

// EnsureDefaultPlans inserts the default plans when their codes are absent.
// Existing rows are never modified.
func EnsureDefaultPlans(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, plan := range defaultPlans {
			if err := ensurePlanTx(ctx, tx, node, plan); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensurePlanTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, plan defaultPlan) error {
	var existing ledgerdomain.Plan
	err := tx.WithContext(ctx).Where("code = ?", plan.code).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return tx.WithContext(ctx).Create(&ledgerdomain.Plan{
		ID:                node.Generate(),
		Code:              plan.code,
		Name:              plan.name,
		Kind:              plan.kind,
		MonthlyPriceCents: plan.monthlyCents,
		AnnualPriceCents:  plan.annualCents,
	}).Error
}
