package stripe

// Amounts are minor units (cents), as on the wire.

// BalanceTransaction is a settled ledger movement on the Stripe balance.
type BalanceTransaction struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Fee         int64  `json:"fee"`
	Net         int64  `json:"net"`
	Currency    string `json:"currency"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Created     int64  `json:"created"`
}

// Recurring describes a price's billing cadence.
type Recurring struct {
	Interval      string `json:"interval"`
	IntervalCount int64  `json:"interval_count"`
}

// Price is the subscription item price.
type Price struct {
	ID         string     `json:"id"`
	UnitAmount int64      `json:"unit_amount"`
	Currency   string     `json:"currency"`
	Nickname   string     `json:"nickname"`
	Product    string     `json:"product"`
	Recurring  *Recurring `json:"recurring"`
}

// SubscriptionItem links a subscription to a price.
type SubscriptionItem struct {
	ID       string `json:"id"`
	Price    Price  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// SubscriptionItemList mirrors the nested list envelope on a subscription.
type SubscriptionItemList struct {
	Data []SubscriptionItem `json:"data"`
}

// Subscription is a customer subscription with its items expanded.
type Subscription struct {
	ID         string               `json:"id"`
	Status     string               `json:"status"`
	Customer   string               `json:"customer"`
	CanceledAt int64                `json:"canceled_at"`
	Created    int64                `json:"created"`
	Items      SubscriptionItemList `json:"items"`
}

// PaymentMethodDetails carries the instrument used for a charge.
type PaymentMethodDetails struct {
	Type string `json:"type"`
}

// BillingDetails carries customer display fields on a charge.
type BillingDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Charge is a single card charge.
type Charge struct {
	ID                   string               `json:"id"`
	Amount               int64                `json:"amount"`
	Currency             string               `json:"currency"`
	Status               string               `json:"status"`
	Paid                 bool                 `json:"paid"`
	Refunded             bool                 `json:"refunded"`
	Disputed             bool                 `json:"disputed"`
	Description          string               `json:"description"`
	ReceiptEmail         string               `json:"receipt_email"`
	BillingDetails       BillingDetails       `json:"billing_details"`
	PaymentMethodDetails PaymentMethodDetails `json:"payment_method_details"`
	Created              int64                `json:"created"`
}

// BalanceAmount is one currency bucket of the account balance.
type BalanceAmount struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Balance is the current account balance.
type Balance struct {
	Available []BalanceAmount `json:"available"`
	Pending   []BalanceAmount `json:"pending"`
}

// Invoice is a finalized invoice.
type Invoice struct {
	ID            string `json:"id"`
	AmountDue     int64  `json:"amount_due"`
	AmountPaid    int64  `json:"amount_paid"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Created       int64  `json:"created"`
}

type listEnvelope[T any] struct {
	Data    []T  `json:"data"`
	HasMore bool `json:"has_more"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
