// Package stripe implements a minimal read-only client for the Stripe REST
// API, covering the calls the snapshot engine fans out to.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	obstracing "github.com/smallbiznis/revlens/internal/observability/tracing"
)

const defaultTimeout = 30 * time.Second

// Client issues authenticated requests against the Stripe API.
type Client struct {
	apiBase    string
	secretKey  string
	httpClient *http.Client
}

// NewClient builds a client. The secret key must be non-empty; callers gate
// construction on configuration presence.
func NewClient(apiBase, secretKey string) *Client {
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase == "" {
		apiBase = "https://api.stripe.com/v1"
	}
	return &Client{
		apiBase:   apiBase,
		secretKey: strings.TrimSpace(secretKey),
		httpClient: obstracing.WrapHTTPClient(&http.Client{
			Timeout: defaultTimeout,
		}),
	}
}

// ListBalanceTransactions returns up to limit balance transactions created
// within the window.
func (c *Client) ListBalanceTransactions(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]BalanceTransaction, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("created[gte]", strconv.FormatInt(windowStart.Unix(), 10))
	params.Set("created[lte]", strconv.FormatInt(windowEnd.Unix(), 10))

	var out listEnvelope[BalanceTransaction]
	if err := c.get(ctx, "/balance_transactions", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListSubscriptions returns up to limit subscriptions across all statuses.
// Subscriptions are not windowed: cancellations outside the window still
// shape current MRR.
func (c *Client) ListSubscriptions(ctx context.Context, limit int) ([]Subscription, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("status", "all")

	var out listEnvelope[Subscription]
	if err := c.get(ctx, "/subscriptions", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListCharges returns up to limit charges created within the window.
func (c *Client) ListCharges(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]Charge, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("created[gte]", strconv.FormatInt(windowStart.Unix(), 10))
	params.Set("created[lte]", strconv.FormatInt(windowEnd.Unix(), 10))

	var out listEnvelope[Charge]
	if err := c.get(ctx, "/charges", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetBalance returns the current account balance.
func (c *Client) GetBalance(ctx context.Context) (Balance, error) {
	var out Balance
	if err := c.get(ctx, "/balance", nil, &out); err != nil {
		return Balance{}, err
	}
	return out, nil
}

// ListInvoices returns up to limit invoices created within the window.
func (c *Client) ListInvoices(ctx context.Context, windowStart, windowEnd time.Time, limit int) ([]Invoice, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("created[gte]", strconv.FormatInt(windowStart.Unix(), 10))
	params.Set("created[lte]", strconv.FormatInt(windowEnd.Unix(), 10))

	var out listEnvelope[Invoice]
	if err := c.get(ctx, "/invoices", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := c.apiBase + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Stripe-Version", "2024-06-20")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("stripe %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe %s: %s (%s)", path, apiErr.Error.Message, apiErr.Error.Type)
		}
		return fmt.Errorf("stripe %s: unexpected status %s", path, resp.Status)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("stripe %s: decode response: %w", path, err)
	}
	return nil
}
