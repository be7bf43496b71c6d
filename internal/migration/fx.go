package migration

import (
	"github.com/smallbiznis/revlens/internal/config"
	ledgerdomain "github.com/smallbiznis/revlens/internal/ledger/domain"
	"github.com/smallbiznis/revlens/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// The versioned SQL targets postgres; other drivers get the
			// schema straight from the models.
			if err := conn.AutoMigrate(
				&ledgerdomain.Plan{},
				&ledgerdomain.Subscription{},
				&ledgerdomain.Payment{},
				&ledgerdomain.UsageLog{},
				&ledgerdomain.CreditTransaction{},
				&ledgerdomain.CouponRedemption{},
				&ledgerdomain.Referral{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultPlans(conn)
	}),
)
