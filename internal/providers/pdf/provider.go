package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

// Provider renders a revenue snapshot as a downloadable PDF report.
type Provider interface {
	GenerateSnapshotReport(ctx context.Context, data ReportData) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateSnapshotReport(ctx context.Context, data ReportData) (io.Reader, error) {
	return nil, nil
}
