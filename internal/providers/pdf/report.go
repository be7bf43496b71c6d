package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
)

// ReportData is the flattened, pre-formatted content of the report. All
// money fields arrive as display strings; formatting decisions stay with
// the caller.
type ReportData struct {
	Title       string
	GeneratedAt string
	Period      string
	Source      string
	Notice      string

	TotalRevenue   string
	MonthlyRevenue string
	MRR            string
	ARR            string
	NetRevenue     string
	Fees           string
	ActiveSubs     string
	TrialingSubs   string
	ChurnRate      string
	ARPU           string
	LTV            string

	Plans        []PlanLine
	Transactions []TransactionLine
}

type PlanLine struct {
	Name       string
	Count      string
	MRR        string
	Percentage string
}

type TransactionLine struct {
	Date     string
	Customer string
	Plan     string
	Amount   string
	Status   string
}

// BuildReportData flattens a snapshot into report content.
func BuildReportData(snap *domain.Snapshot, currency, generatedAt string) ReportData {
	money := func(v float64) string { return fmt.Sprintf("%.2f %s", v, currency) }

	data := ReportData{
		Title:          "Revenue Report",
		GeneratedAt:    generatedAt,
		Period:         string(snap.Period),
		Source:         string(snap.Source),
		Notice:         snap.Notice,
		TotalRevenue:   money(snap.Overview.TotalRevenue),
		MonthlyRevenue: money(snap.Overview.MonthlyRevenue),
		MRR:            money(snap.Overview.MRR),
		ARR:            money(snap.Overview.ARR),
		NetRevenue:     money(snap.Overview.NetRevenue),
		Fees:           money(snap.Overview.StripeFees),
		ActiveSubs:     fmt.Sprintf("%d", snap.Overview.ActiveSubscriptions),
		TrialingSubs:   fmt.Sprintf("%d", snap.Overview.TrialingSubscriptions),
		ChurnRate:      fmt.Sprintf("%.1f%%", snap.Overview.ChurnRate),
		ARPU:           money(snap.Overview.ARPU),
		LTV:            money(snap.Overview.LTV),
	}

	for _, plan := range snap.RevenueByPlan {
		data.Plans = append(data.Plans, PlanLine{
			Name:       plan.PlanName,
			Count:      fmt.Sprintf("%d", plan.Count),
			MRR:        money(plan.MRR),
			Percentage: fmt.Sprintf("%d%%", plan.Percentage),
		})
	}
	for _, tx := range snap.RecentTransactions {
		data.Transactions = append(data.Transactions, TransactionLine{
			Date:     tx.Date,
			Customer: tx.CustomerName,
			Plan:     tx.Plan,
			Amount:   money(tx.Amount),
			Status:   tx.Status,
		})
	}
	return data
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateSnapshotReport(ctx context.Context, data ReportData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(12, data.Title, props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(16,
		col.New(6).Add(
			text.New("Generated: "+data.GeneratedAt, props.Text{Top: 0}),
			text.New("Period: "+data.Period, props.Text{Top: 4}),
			text.New("Source: "+data.Source, props.Text{Top: 8}),
		),
		col.New(6),
	)

	if data.Notice != "" {
		m.AddRow(8,
			text.NewCol(12, data.Notice, props.Text{Size: 8, Style: fontstyle.Italic}),
		)
	}

	m.AddRow(10,
		text.NewCol(12, "Overview", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
	)
	overview := []struct{ label, value string }{
		{"Total revenue", data.TotalRevenue},
		{"Monthly revenue", data.MonthlyRevenue},
		{"MRR", data.MRR},
		{"ARR", data.ARR},
		{"Net revenue", data.NetRevenue},
		{"Fees", data.Fees},
		{"Active subscriptions", data.ActiveSubs},
		{"Trialing subscriptions", data.TrialingSubs},
		{"Churn rate", data.ChurnRate},
		{"ARPU", data.ARPU},
		{"LTV", data.LTV},
	}
	for _, line := range overview {
		m.AddRow(7,
			text.NewCol(6, line.label, props.Text{Size: 9}),
			text.NewCol(6, line.value, props.Text{Size: 9, Align: align.Right}),
		)
	}

	if len(data.Plans) > 0 {
		m.AddRow(10,
			text.NewCol(12, "Revenue by plan", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
		)
		m.AddRow(7,
			text.NewCol(6, "Plan", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(2, "Count", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
			text.NewCol(2, "MRR", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
			text.NewCol(2, "Share", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		)
		for _, plan := range data.Plans {
			m.AddRow(7,
				text.NewCol(6, plan.Name, props.Text{Size: 9}),
				text.NewCol(2, plan.Count, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(2, plan.MRR, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(2, plan.Percentage, props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	if len(data.Transactions) > 0 {
		m.AddRow(10,
			text.NewCol(12, "Recent transactions", props.Text{Size: 12, Style: fontstyle.Bold, Top: 2}),
		)
		m.AddRow(7,
			text.NewCol(2, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(4, "Customer", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(2, "Plan", props.Text{Style: fontstyle.Bold, Size: 9}),
			text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
			text.NewCol(2, "Status", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		)
		for _, tx := range data.Transactions {
			m.AddRow(7,
				text.NewCol(2, tx.Date, props.Text{Size: 9}),
				text.NewCol(4, tx.Customer, props.Text{Size: 9}),
				text.NewCol(2, tx.Plan, props.Text{Size: 9}),
				text.NewCol(2, tx.Amount, props.Text{Size: 9, Align: align.Right}),
				text.NewCol(2, tx.Status, props.Text{Size: 9, Align: align.Right}),
			)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
