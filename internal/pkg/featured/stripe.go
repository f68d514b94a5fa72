package featured

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/churchatlas/churchatlas/internal/pkg/env"
)

const (
	// Featured placement is a fixed $5.00/week recurring subscription.
	featuredPriceCents    = 500
	featuredPriceCurrency = "usd"
	featuredPriceInterval = "week"

	metadataPurposeKey   = "purpose"
	metadataPurpose      = "featured"
	metadataListingID    = "listing_id"
	metadataListingKind  = "listing_kind"
	featuredProductLabel = "Featured listing (weekly)"
)

// StripeGateway implements Gateway against the Stripe Checkout API.
type StripeGateway struct {
	client *client.API
}

// NewStripeGateway creates a gateway with the given secret key.
func NewStripeGateway(apiKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(apiKey, nil)
	return &StripeGateway{client: sc}
}

// NewStripeGatewayFromEnv reads STRIPE_SECRET_KEY from the environment.
func NewStripeGatewayFromEnv() *StripeGateway {
	return NewStripeGateway(env.GetEnv("STRIPE_SECRET_KEY", ""))
}

// CreateCheckoutSession opens a subscription-mode checkout session for the
// weekly featured fee, tagged with the listing's identity.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(featuredPriceCurrency),
					UnitAmount: stripe.Int64(featuredPriceCents),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String(featuredPriceInterval),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(featuredProductLabel),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.ClientRef),
	}
	params.Context = ctx
	params.AddMetadata(metadataPurposeKey, metadataPurpose)
	params.AddMetadata(metadataListingID, fmt.Sprintf("%d", req.ListingID))
	params.AddMetadata(metadataListingKind, req.ListingKind)

	sess, err := g.client.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return normalizeSession(sess), nil
}

// GetCheckoutSession retrieves a checkout session by id.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := g.client.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session: %w", err)
	}
	return normalizeSession(sess), nil
}

func normalizeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	return &CheckoutSession{
		ID:       sess.ID,
		URL:      sess.URL,
		Paid:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: sess.Metadata,
	}
}

// VerifyWebhookSignature validates a Stripe-Signature header against the
// shared webhook secret and returns the parsed event on success.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("stripe signature invalid: %w", err)
	}
	return &event, nil
}

// CheckoutSessionIDFromEvent extracts the checkout session id from a
// checkout.session.* webhook event payload.
func CheckoutSessionIDFromEvent(event *stripe.Event) (string, error) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return "", fmt.Errorf("parse checkout session payload: %w", err)
	}
	if sess.ID == "" {
		return "", fmt.Errorf("checkout session payload has no id")
	}
	return sess.ID, nil
}
