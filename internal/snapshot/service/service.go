// Package service orchestrates source selection, data collection and
// compilation for snapshot requests.
package service

import (
	"context"

	"github.com/smallbiznis/revlens/internal/clock"
	"github.com/smallbiznis/revlens/internal/config"
	obsmetrics "github.com/smallbiznis/revlens/internal/observability/metrics"
	"github.com/smallbiznis/revlens/internal/snapshot/compile"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/smallbiznis/revlens/internal/snapshot/local"
	"github.com/smallbiznis/revlens/internal/snapshot/provider"
	"github.com/smallbiznis/revlens/internal/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("snapshot",
	fx.Provide(New),
)

type Params struct {
	fx.In

	Config  config.Config
	Tuning  *config.TuningHolder
	Clock   clock.Clock
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *obsmetrics.Metrics
}

type service struct {
	cfg     config.Config
	tuning  *config.TuningHolder
	clock   clock.Clock
	fetcher *provider.Fetcher
	reader  *local.Reader
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	var fetcher *provider.Fetcher
	if p.Config.StripeConfigured() {
		client := stripe.NewClient(p.Config.StripeAPIBase, p.Config.StripeSecretKey)
		fetcher = provider.NewFetcher(client, log, p.Metrics)
	}

	return &service{
		cfg:     p.Config,
		tuning:  p.Tuning,
		clock:   p.Clock,
		fetcher: fetcher,
		reader:  local.NewReader(p.DB, log, p.Metrics),
		log:     log.Named("snapshot.service"),
		metrics: p.Metrics,
	}
}

// selectSource is total: missing provider configuration routes to the local
// path, it is never an error. Demo mode wins over everything.
func selectSource(cfg config.Config) domain.Source {
	switch {
	case cfg.DemoMode:
		return domain.SourceDemo
	case cfg.StripeConfigured():
		return domain.SourceStripe
	default:
		return domain.SourceLocal
	}
}

func (s *service) GetSnapshot(ctx context.Context, req domain.Request) (*domain.Snapshot, error) {
	now := s.clock.Now()
	window := domain.Window{Start: req.Period.WindowStart(now), End: now}
	source := selectSource(s.cfg)
	tuning := s.tuning.Get()

	s.metrics.RecordSnapshotRequest(ctx, string(source), string(req.Period))

	var snap *domain.Snapshot
	switch source {
	case domain.SourceDemo:
		snap = s.compileTimed(ctx, source, func() *domain.Snapshot {
			return compile.Demo(window)
		})
	case domain.SourceStripe:
		raw, err := s.fetcher.Fetch(ctx, window, tuning.ProviderPageLimit)
		if err != nil {
			s.log.Warn("provider snapshot aborted",
				zap.String("period", string(req.Period)),
				zap.Error(err),
			)
			return nil, err
		}
		snap = s.compileTimed(ctx, source, func() *domain.Snapshot {
			return compile.FromStripe(raw, window, tuning)
		})
	default:
		raw := s.reader.Read(ctx, window)
		snap = s.compileTimed(ctx, source, func() *domain.Snapshot {
			return compile.FromLocal(raw, window, tuning)
		})
	}

	snap.Period = req.Period

	s.log.Info("snapshot compiled",
		zap.String("source", string(source)),
		zap.String("period", string(req.Period)),
		zap.Float64("mrr", snap.Overview.MRR),
		zap.Int64("active_subscriptions", snap.Overview.ActiveSubscriptions),
	)
	return snap, nil
}

// compileTimed measures the compile step alone, excluding data collection.
func (s *service) compileTimed(ctx context.Context, source domain.Source, build func() *domain.Snapshot) *domain.Snapshot {
	started := s.clock.Now()
	snap := build()
	s.metrics.RecordCompileDuration(ctx, string(source), s.clock.Now().Sub(started))
	return snap
}
