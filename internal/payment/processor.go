package payment

import (
	"context"
	"time"
)

// InvoiceRequest is what we send to the payment processor when a client
// tops up.
type InvoiceRequest struct {
	Price           float64
	Currency        string
	ItemDesc        string
	NotificationURL string
	RedirectURL     string
}

// Invoice is the processor's view of an invoice. Status uses the
// processor's vocabulary; the ledger only distinguishes CONFIRMED from
// everything else.
type Invoice struct {
	ID             string
	URL            string
	BTCPrice       float64
	Status         string
	InvoiceTime    time.Time
	ExpirationTime time.Time
}

// Processor is the interface all payment processor drivers must implement.
type Processor interface {
	// CreateInvoice requests a new invoice from the processor.
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)

	// GetInvoice fetches the authoritative invoice state by processor id.
	// Returns (nil, nil) when the processor has no such invoice.
	GetInvoice(ctx context.Context, id string) (*Invoice, error)

	// GetRate returns the current exchange rate for a pair like "BTC_EUR".
	GetRate(ctx context.Context, pair string) (float64, error)
}
