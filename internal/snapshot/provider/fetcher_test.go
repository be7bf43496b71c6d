package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/smallbiznis/revlens/internal/stripe"
	"go.uber.org/zap"
)

type fakeClient struct {
	balanceTxErr    error
	subscriptionErr error
	chargesErr      error
	balanceErr      error
	invoicesErr     error
}

func (f *fakeClient) ListBalanceTransactions(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]stripe.BalanceTransaction, error) {
	if f.balanceTxErr != nil {
		return nil, f.balanceTxErr
	}
	return []stripe.BalanceTransaction{{ID: "txn_1", Type: "charge", Amount: 1000}}, nil
}

func (f *fakeClient) ListSubscriptions(ctx context.Context, limit int) ([]stripe.Subscription, error) {
	if f.subscriptionErr != nil {
		return nil, f.subscriptionErr
	}
	return []stripe.Subscription{{ID: "sub_1", Status: "active"}}, nil
}

func (f *fakeClient) ListCharges(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]stripe.Charge, error) {
	if f.chargesErr != nil {
		return nil, f.chargesErr
	}
	return []stripe.Charge{{ID: "ch_1", Amount: 1000}}, nil
}

func (f *fakeClient) GetBalance(ctx context.Context) (stripe.Balance, error) {
	if f.balanceErr != nil {
		return stripe.Balance{}, f.balanceErr
	}
	return stripe.Balance{Available: []stripe.BalanceAmount{{Amount: 5000}}}, nil
}

func (f *fakeClient) ListInvoices(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]stripe.Invoice, error) {
	if f.invoicesErr != nil {
		return nil, f.invoicesErr
	}
	return []stripe.Invoice{{ID: "in_1", AmountPaid: 1000}}, nil
}

func testWindow() domain.Window {
	end := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	return domain.Window{Start: end.AddDate(0, 0, -30), End: end}
}

func TestFetchCollectsAllFive(t *testing.T) {
	fetcher := NewFetcher(&fakeClient{}, zap.NewNop(), nil)

	data, err := fetcher.Fetch(context.Background(), testWindow(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(data.BalanceTransactions) != 1 {
		t.Fatalf("expected balance transactions, got %d", len(data.BalanceTransactions))
	}
	if len(data.Subscriptions) != 1 {
		t.Fatalf("expected subscriptions, got %d", len(data.Subscriptions))
	}
	if len(data.Charges) != 1 {
		t.Fatalf("expected charges, got %d", len(data.Charges))
	}
	if len(data.Balance.Available) != 1 {
		t.Fatalf("expected balance, got %d buckets", len(data.Balance.Available))
	}
	if len(data.Invoices) != 1 {
		t.Fatalf("expected invoices, got %d", len(data.Invoices))
	}
}

func TestFetchSingleFailureAbortsAll(t *testing.T) {
	cases := []struct {
		name   string
		client *fakeClient
	}{
		{"balance transactions", &fakeClient{balanceTxErr: errors.New("boom")}},
		{"subscriptions", &fakeClient{subscriptionErr: errors.New("boom")}},
		{"charges", &fakeClient{chargesErr: errors.New("boom")}},
		{"balance", &fakeClient{balanceErr: errors.New("boom")}},
		{"invoices", &fakeClient{invoicesErr: errors.New("boom")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := NewFetcher(tc.client, zap.NewNop(), nil)

			data, err := fetcher.Fetch(context.Background(), testWindow(), 100)
			if data != nil {
				t.Fatal("expected no partial data")
			}
			if !errors.Is(err, domain.ErrProviderUnavailable) {
				t.Fatalf("expected ErrProviderUnavailable, got %v", err)
			}
		})
	}
}
