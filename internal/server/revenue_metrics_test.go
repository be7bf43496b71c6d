package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/revlens/internal/clock"
	"github.com/smallbiznis/revlens/internal/config"
	"github.com/smallbiznis/revlens/internal/providers/pdf"
	snapshotdomain "github.com/smallbiznis/revlens/internal/snapshot/domain"
)

type fakeSnapshotService struct {
	lastRequest snapshotdomain.Request
	err         error
}

func (f *fakeSnapshotService) GetSnapshot(ctx context.Context, req snapshotdomain.Request) (*snapshotdomain.Snapshot, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &snapshotdomain.Snapshot{
		Period: req.Period,
		Source: snapshotdomain.SourceLocal,
	}, nil
}

func newTestServer(t *testing.T, svc snapshotdomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	NewServer(ServerParams{
		Gin:         engine,
		Cfg:         config.Config{Currency: "EUR"},
		SnapshotSvc: svc,
		PDFProvider: pdf.New(),
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)),
	})
	return engine
}

func TestGetRevenueMetrics(t *testing.T) {
	svc := &fakeSnapshotService{}
	engine := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/revenue?period=90d", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastRequest.Period != snapshotdomain.Period90d {
		t.Fatalf("expected period 90d, got %s", svc.lastRequest.Period)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["source"] != "local" {
		t.Fatalf("expected source local, got %v", body["source"])
	}
	if body["period"] != "90d" {
		t.Fatalf("expected period 90d, got %v", body["period"])
	}
}

func TestGetRevenueMetricsPeriodFallback(t *testing.T) {
	svc := &fakeSnapshotService{}
	engine := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/revenue?period=banana", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastRequest.Period != snapshotdomain.Period30d {
		t.Fatalf("expected fallback to 30d, got %s", svc.lastRequest.Period)
	}
}

func TestGetRevenueMetricsProviderUnavailable(t *testing.T) {
	svc := &fakeSnapshotService{err: snapshotdomain.ErrProviderUnavailable}
	engine := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/revenue", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error.Type != "provider_unavailable" {
		t.Fatalf("expected provider_unavailable, got %s", body.Error.Type)
	}
	if !body.Error.Retryable {
		t.Fatal("expected retryable error")
	}
}

func TestGetRevenueMetricsReport(t *testing.T) {
	svc := &fakeSnapshotService{}
	engine := newTestServer(t, svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/metrics/revenue/report?period=7d", nil)
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", got)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected non-empty PDF body")
	}
}
