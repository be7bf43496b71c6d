package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Tuning carries the business approximations used by the metrics compiler.
// They are deployment-level knobs, not derived data.
type Tuning struct {
	// FeeRate is the assumed processing-fee fraction applied on the
	// local-only path, where no provider-verified fees exist.
	FeeRate float64 `mapstructure:"feeRate"`
	// ProviderPageLimit bounds every provider list call. The snapshot is
	// computed over a single page.
	ProviderPageLimit int `mapstructure:"providerPageLimit"`
	// TrendDays caps the daily revenue trend length.
	TrendDays int `mapstructure:"trendDays"`
	// TopConsumers bounds the AI top-consumer list.
	TopConsumers int `mapstructure:"topConsumers"`
	// RecentTransactions bounds the recent-transaction list.
	RecentTransactions int `mapstructure:"recentTransactions"`
}

func DefaultTuning() Tuning {
	return Tuning{
		FeeRate:            0.03,
		ProviderPageLimit:  100,
		TrendDays:          30,
		TopConsumers:       5,
		RecentTransactions: 10,
	}
}

// TuningHolder serves the current tuning values and hot-reloads them when
// the backing metrics.yml changes.
type TuningHolder struct {
	current atomic.Value // holds Tuning
}

func NewTuningHolder() (*TuningHolder, error) {
	v := viper.New()

	v.SetConfigName("metrics")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/revlens/config")
	v.AddConfigPath("/etc/revlens")
	v.AddConfigPath(".")

	v.SetEnvPrefix("REVLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultTuning()
	v.SetDefault("metrics.feeRate", defaults.FeeRate)
	v.SetDefault("metrics.providerPageLimit", defaults.ProviderPageLimit)
	v.SetDefault("metrics.trendDays", defaults.TrendDays)
	v.SetDefault("metrics.topConsumers", defaults.TopConsumers)
	v.SetDefault("metrics.recentTransactions", defaults.RecentTransactions)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Tuning
	if err := v.UnmarshalKey("metrics", &cfg); err != nil {
		return nil, err
	}
	if err := validateTuning(cfg); err != nil {
		return nil, err
	}

	holder := &TuningHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Tuning
		if err := v.UnmarshalKey("metrics", &updated); err != nil {
			log.Printf("[metrics-config] reload failed: %v", err)
			return
		}
		if err := validateTuning(updated); err != nil {
			log.Printf("[metrics-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[metrics-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *TuningHolder) Get() Tuning {
	return h.current.Load().(Tuning)
}

// NewStaticTuningHolder returns a holder fixed to the given values. Tests
// and the demo path use it to avoid touching the filesystem.
func NewStaticTuningHolder(t Tuning) *TuningHolder {
	holder := &TuningHolder{}
	holder.current.Store(t)
	return holder
}

func validateTuning(cfg Tuning) error {
	if cfg.FeeRate < 0 || cfg.FeeRate >= 1 {
		return errors.New("metrics.feeRate must be in [0, 1)")
	}
	if cfg.ProviderPageLimit <= 0 {
		return errors.New("metrics.providerPageLimit must be positive")
	}
	if cfg.TrendDays <= 0 {
		return errors.New("metrics.trendDays must be positive")
	}
	if cfg.TopConsumers <= 0 {
		return errors.New("metrics.topConsumers must be positive")
	}
	if cfg.RecentTransactions <= 0 {
		return errors.New("metrics.recentTransactions must be positive")
	}
	return nil
}
