package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/revlens/internal/clock"
	"github.com/smallbiznis/revlens/internal/config"
	ledgerdomain "github.com/smallbiznis/revlens/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/revlens/internal/observability/metrics"
	"github.com/smallbiznis/revlens/internal/snapshot/compile"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/stretchr/testify/assert"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBSeq++
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", testDBSeq)
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&ledgerdomain.Plan{},
		&ledgerdomain.Subscription{},
		&ledgerdomain.Payment{},
		&ledgerdomain.UsageLog{},
		&ledgerdomain.CreditTransaction{},
		&ledgerdomain.CouponRedemption{},
		&ledgerdomain.Referral{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return dbConn
}

func newTestService(t *testing.T, cfg config.Config) domain.Service {
	t.Helper()

	return New(Params{
		Config: cfg,
		Tuning: config.NewStaticTuningHolder(config.DefaultTuning()),
		Clock:  clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
		DB:     newTestDB(t),
		Log:    zap.NewNop(),
	})
}

// steppingClock advances by a fixed step on every Now call, which makes the
// number of observed ticks between two reads deterministic.
type steppingClock struct {
	now  time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestSelectSourceDemoWinsOverProvider(t *testing.T) {
	cfg := config.Config{DemoMode: true, StripeSecretKey: "sk_test_123"}
	assert.Equal(t, domain.SourceDemo, selectSource(cfg))
}

func TestSelectSourceProviderWhenConfigured(t *testing.T) {
	cfg := config.Config{StripeSecretKey: "sk_test_123"}
	assert.Equal(t, domain.SourceStripe, selectSource(cfg))
}

func TestSelectSourceFallsBackToLocal(t *testing.T) {
	assert.Equal(t, domain.SourceLocal, selectSource(config.Config{}))
}

func TestGetSnapshotDemoPrecedence(t *testing.T) {
	svc := newTestService(t, config.Config{DemoMode: true, StripeSecretKey: "sk_test_123", StripeAPIBase: "http://127.0.0.1:1"})

	snap, err := svc.GetSnapshot(context.Background(), domain.Request{Period: domain.Period30d})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, domain.SourceDemo, snap.Source)
	assert.Equal(t, compile.DemoNotice, snap.Notice)
	assert.Equal(t, domain.Period30d, snap.Period)
}

func TestGetSnapshotLocalPath(t *testing.T) {
	svc := newTestService(t, config.Config{})

	snap, err := svc.GetSnapshot(context.Background(), domain.Request{Period: domain.Period7d})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, domain.SourceLocal, snap.Source)
	assert.Equal(t, domain.Period7d, snap.Period)
	assert.Empty(t, snap.Notice)
	assert.Equal(t, 0.0, snap.Overview.MRR)
}

func TestGetSnapshotProviderFailureSurfacesError(t *testing.T) {
	// Nothing listens on this address, so every provider query fails.
	svc := newTestService(t, config.Config{
		StripeSecretKey: "sk_test_123",
		StripeAPIBase:   "http://127.0.0.1:1",
	})

	_, err := svc.GetSnapshot(context.Background(), domain.Request{Period: domain.Period30d})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestGetSnapshotCompileDurationExcludesCollection(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := obsmetrics.New(obsmetrics.Config{ServiceName: "revlens_test"}, provider)
	if err != nil {
		t.Fatalf("failed to build metrics: %v", err)
	}

	svc := New(Params{
		Config:  config.Config{},
		Tuning:  config.NewStaticTuningHolder(config.DefaultTuning()),
		Clock:   &steppingClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), step: time.Second},
		DB:      newTestDB(t),
		Log:     zap.NewNop(),
		Metrics: m,
	})

	if _, err := svc.GetSnapshot(context.Background(), domain.Request{Period: domain.Period30d}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	var sum float64
	var found bool
	for _, scope := range rm.ScopeMetrics {
		for _, sm := range scope.Metrics {
			if sm.Name != "revlens_snapshot_compile_seconds" {
				continue
			}
			hist, ok := sm.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatalf("unexpected histogram data type %T", sm.Data)
			}
			for _, dp := range hist.DataPoints {
				sum += dp.Sum
				found = true
			}
		}
	}
	if !found {
		t.Fatal("compile duration histogram was not recorded")
	}
	// The clock ticks once per Now call: window resolution, then compile
	// start and compile end. Only the single tick spanning the compile may
	// be observed; timing the whole request would record two.
	assert.Equal(t, 1.0, sum)
}

func TestParsePeriodFallback(t *testing.T) {
	assert.Equal(t, domain.Period30d, domain.ParsePeriod("banana"))
	assert.Equal(t, domain.Period30d, domain.ParsePeriod(""))
	assert.Equal(t, domain.Period1y, domain.ParsePeriod("1y"))
}
