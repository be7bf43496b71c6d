// Package provider fetches raw billing collections from Stripe for one
// snapshot window.
package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	obsmetrics "github.com/smallbiznis/revlens/internal/observability/metrics"
	"github.com/smallbiznis/revlens/internal/snapshot/domain"
	"github.com/smallbiznis/revlens/internal/stripe"
	"go.uber.org/zap"
)

// Data is the raw provider output handed to the compiler.
type Data struct {
	BalanceTransactions []stripe.BalanceTransaction
	Subscriptions       []stripe.Subscription
	Charges             []stripe.Charge
	Balance             stripe.Balance
	Invoices            []stripe.Invoice
}

// Client is the subset of the Stripe API the fetcher needs.
type Client interface {
	ListBalanceTransactions(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]stripe.BalanceTransaction, error)
	ListSubscriptions(ctx context.Context, limit int) ([]stripe.Subscription, error)
	ListCharges(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]stripe.Charge, error)
	GetBalance(ctx context.Context) (stripe.Balance, error)
	ListInvoices(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]stripe.Invoice, error)
}

// Fetcher fans out the five provider queries for a window.
type Fetcher struct {
	client  Client
	log     *zap.Logger
	metrics *obsmetrics.Metrics
}

func NewFetcher(client Client, log *zap.Logger, metrics *obsmetrics.Metrics) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		client:  client,
		log:     log.Named("snapshot.provider"),
		metrics: metrics,
	}
}

// Fetch runs all five queries concurrently and waits for every result.
// Any single failure aborts the whole fetch with ErrProviderUnavailable;
// a partially sourced provider snapshot would silently misstate MRR.
func (f *Fetcher) Fetch(ctx context.Context, window domain.Window, pageLimit int) (*Data, error) {
	data := &Data{}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	fail := func(call string, err error) {
		f.metrics.RecordProviderFailure(ctx, call)
		f.log.Warn("provider query failed", zap.String("call", call), zap.Error(err))
		mu.Lock()
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", call, err)
		}
		mu.Unlock()
	}

	wg.Add(5)

	go func() {
		defer wg.Done()
		rows, err := f.client.ListBalanceTransactions(ctx, window.Start, window.End, pageLimit)
		if err != nil {
			fail("balance_transactions", err)
			return
		}
		data.BalanceTransactions = rows
	}()

	go func() {
		defer wg.Done()
		rows, err := f.client.ListSubscriptions(ctx, pageLimit)
		if err != nil {
			fail("subscriptions", err)
			return
		}
		data.Subscriptions = rows
	}()

	go func() {
		defer wg.Done()
		rows, err := f.client.ListCharges(ctx, window.Start, window.End, pageLimit)
		if err != nil {
			fail("charges", err)
			return
		}
		data.Charges = rows
	}()

	go func() {
		defer wg.Done()
		balance, err := f.client.GetBalance(ctx)
		if err != nil {
			fail("balance", err)
			return
		}
		data.Balance = balance
	}()

	go func() {
		defer wg.Done()
		rows, err := f.client.ListInvoices(ctx, window.Start, window.End, pageLimit)
		if err != nil {
			fail("invoices", err)
			return
		}
		data.Invoices = rows
	}()

	wg.Wait()

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, firstErr)
	}
	return data, nil
}
