package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/stretchr/testify/assert"
)

func TestBuildReportData(t *testing.T) {
	snap := &domain.Snapshot{
		Period: domain.Period30d,
		Source: domain.SourceLocal,
		Overview: domain.Overview{
			TotalRevenue: 1234.5,
			MRR:          148,
			ChurnRate:    2.1,
		},
		RevenueByPlan: []domain.PlanRevenue{
			{PlanName: "Pro", Count: 2, MRR: 78, Percentage: 53},
		},
		RecentTransactions: []domain.Transaction{
			{Date: "2026-03-14", CustomerName: "Ada", Plan: "pro", Amount: 39, Status: "succeeded"},
		},
	}

	data := BuildReportData(snap, "EUR", "2026-03-15 12:00 UTC")

	assert.Equal(t, "1234.50 EUR", data.TotalRevenue)
	assert.Equal(t, "148.00 EUR", data.MRR)
	assert.Equal(t, "2.1%", data.ChurnRate)
	assert.Equal(t, "30d", data.Period)
	assert.Equal(t, "local", data.Source)
	assert.Len(t, data.Plans, 1)
	assert.Equal(t, "53%", data.Plans[0].Percentage)
	assert.Len(t, data.Transactions, 1)
}

func TestGenerateSnapshotReport(t *testing.T) {
	provider := New()

	data := BuildReportData(&domain.Snapshot{
		Period: domain.Period7d,
		Source: domain.SourceDemo,
		Notice: "Demo data.",
	}, "EUR", "2026-03-15 12:00 UTC")

	reader, err := provider.GenerateSnapshotReport(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read document: %v", err)
	}
	if len(doc) == 0 {
		t.Fatal("expected non-empty document")
	}
	assert.Equal(t, "%PDF", string(doc[:4]))
}
