package featured

import "context"

// CheckoutRequest asks the payment provider for a new checkout session.
type CheckoutRequest struct {
	ListingID   uint
	ListingKind string
	SuccessURL  string
	CancelURL   string
	ClientRef   string
}

// CheckoutSession is the provider-neutral view of a checkout session.
type CheckoutSession struct {
	ID       string
	URL      string
	Paid     bool
	Metadata map[string]string
}

// Gateway abstracts the payment provider (Stripe in production).
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// WebhookEventInput captures a raw provider webhook delivery.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
