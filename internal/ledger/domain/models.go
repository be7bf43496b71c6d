// Package domain contains persistence models for the local transactional ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Subscription statuses mirror the provider's lifecycle. The engine is a
// read-only consumer; transitions happen on the billing write path.
const (
	StatusActive            = "active"
	StatusTrialing          = "trialing"
	StatusPastDue           = "past_due"
	StatusCanceled          = "canceled"
	StatusPaused            = "paused"
	StatusIncompleteExpired = "incomplete_expired"
)

// Plan kinds.
const (
	PlanKindOperator    = "operator"
	PlanKindIndependent = "independent"
)

// Plan is a sellable subscription plan. At most one price field is populated
// depending on the plan's billing model; the rest stay zero.
type Plan struct {
	ID                   snowflake.ID `gorm:"primaryKey"`
	Code                 string       `gorm:"type:text;not null;uniqueIndex"`
	Name                 string       `gorm:"type:text;not null"`
	Kind                 string       `gorm:"type:text;not null;default:independent"`
	MonthlyPriceCents    int64        `gorm:"not null;default:0"`
	QuarterlyPriceCents  int64        `gorm:"not null;default:0"`
	SemiAnnualPriceCents int64        `gorm:"not null;default:0"`
	AnnualPriceCents     int64        `gorm:"not null;default:0"`
	CreatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Plan) TableName() string { return "plans" }

// Subscription tracks a user's current plan membership.
type Subscription struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	UserID       snowflake.ID `gorm:"not null;index"`
	PlanID       snowflake.ID `gorm:"not null;index"`
	Status       string       `gorm:"type:text;not null;index"`
	TrialStartAt *time.Time
	TrialEndAt   *time.Time
	CanceledAt   *time.Time `gorm:"index"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Payment is a settled charge recorded by the local write path.
type Payment struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	UserID        snowflake.ID `gorm:"not null;index"`
	AmountCents   int64        `gorm:"not null"`
	Currency      string       `gorm:"type:text;not null;default:EUR"`
	Status        string       `gorm:"type:text;not null;default:succeeded"`
	Description   string       `gorm:"type:text"`
	CustomerName  string       `gorm:"type:text"`
	CustomerEmail string       `gorm:"type:text"`
	PlanCode      string       `gorm:"type:text"`
	PaidAt        time.Time    `gorm:"not null;index"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

// UsageLog stores one metered AI request. Price is what the user was
// charged, cost is the engine-side spend; the difference may be negative.
type UsageLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	UserID     snowflake.ID      `gorm:"not null;index"`
	Feature    string            `gorm:"type:text;not null;index"`
	CostEur    float64           `gorm:"not null"`
	PriceEur   float64           `gorm:"not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	RecordedAt time.Time         `gorm:"not null;index"`
}

func (UsageLog) TableName() string { return "usage_logs" }

// CreditTransaction is an append-only credit package purchase.
type CreditTransaction struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	UserID      snowflake.ID `gorm:"not null;index"`
	PackageCode string       `gorm:"type:text;not null"`
	AmountCents int64        `gorm:"not null"`
	Credits     int64        `gorm:"not null"`
	CreatedAt   time.Time    `gorm:"not null;index"`
}

func (CreditTransaction) TableName() string { return "credit_transactions" }

// CouponRedemption is an append-only coupon usage record.
type CouponRedemption struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	UserID        snowflake.ID `gorm:"not null;index"`
	CouponCode    string       `gorm:"type:text;not null;index"`
	DiscountCents int64        `gorm:"not null"`
	RedeemedAt    time.Time    `gorm:"not null;index"`
}

func (CouponRedemption) TableName() string { return "coupon_redemptions" }

// Referral is an append-only referral record.
type Referral struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	ReferrerID  snowflake.ID `gorm:"not null;index"`
	ReferredID  snowflake.ID `gorm:"not null"`
	Converted   bool         `gorm:"not null;default:false"`
	RewardCents int64        `gorm:"not null;default:0"`
	CreatedAt   time.Time    `gorm:"not null;index"`
}

func (Referral) TableName() string { return "referrals" }

// MonthlyEquivalentCents resolves the plan's price normalized to one month.
// A plan with no populated price yields 0.
func (p Plan) MonthlyEquivalentCents() float64 {
	switch {
	case p.MonthlyPriceCents > 0:
		return float64(p.MonthlyPriceCents)
	case p.QuarterlyPriceCents > 0:
		return float64(p.QuarterlyPriceCents) / 3
	case p.SemiAnnualPriceCents > 0:
		return float64(p.SemiAnnualPriceCents) / 6
	case p.AnnualPriceCents > 0:
		return float64(p.AnnualPriceCents) / 12
	default:
		return 0
	}
}
