package featured

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/app/repository"
	"github.com/churchatlas/churchatlas/internal/pkg/wizard"
)

// FeaturedDuration is how long one confirmed payment keeps a listing featured.
const FeaturedDuration = 7 * 24 * time.Hour

var (
	// ErrNotVerified means the session exists but does not represent a
	// completed featured purchase; nothing was mutated.
	ErrNotVerified = errors.New("payment not verified")
	// ErrCheckoutFailed wraps provider-side session creation failures.
	ErrCheckoutFailed = errors.New("failed to create checkout session")
)

// Service owns the featured-promotion lifecycle: checkout session creation,
// payment confirmation and webhook bookkeeping. Confirmation is intentionally
// not idempotent: re-confirming an already-confirmed session extends the
// featured window from the new confirmation time again (both the redirect
// verify leg and the provider webhook may apply it).
type Service struct {
	churches repository.ChurchRepository
	events   repository.EventRepository
	webhooks repository.WebhookEventRepository
	gateway  Gateway
	now      func() time.Time
}

// NewService creates a featured service from injected collaborators.
func NewService(churches repository.ChurchRepository, events repository.EventRepository, webhooks repository.WebhookEventRepository, gateway Gateway) *Service {
	return &Service{
		churches: churches,
		events:   events,
		webhooks: webhooks,
		gateway:  gateway,
		now:      time.Now,
	}
}

// NewServiceFromDB creates a featured service over the shared repositories
// and the Stripe gateway configured from the environment.
func NewServiceFromDB(db *gorm.DB) *Service {
	repos := repository.NewRepositories(db)
	return NewService(repos.Church, repos.Event, repos.WebhookEvent, NewStripeGatewayFromEnv())
}

// RequestCheckout creates a checkout session for promoting the given listing
// and persists the session handle with a pending payment status. Nothing is
// persisted when session creation itself fails.
func (s *Service) RequestCheckout(ctx context.Context, ownerID uint, kind string, listingID uint, successURL, cancelURL string) (string, error) {
	switch kind {
	case wizard.KindChurch:
		church, err := s.churches.GetByOwnerID(ownerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", wizard.ErrNotFound
			}
			return "", err
		}
		if listingID != 0 && listingID != church.ID {
			return "", wizard.ErrNotFound
		}

		sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
			ListingID:   church.ID,
			ListingKind: wizard.KindChurch,
			SuccessURL:  successURL,
			CancelURL:   cancelURL,
			ClientRef:   fmt.Sprintf("church-%d", church.ID),
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
		}

		church.StripeSessionID = sess.ID
		church.PaymentStatus = models.PaymentStatusPending
		if err := s.churches.Update(church); err != nil {
			return "", err
		}
		return sess.URL, nil

	case wizard.KindEvent:
		event, err := s.ownedEvent(ownerID, listingID)
		if err != nil {
			return "", err
		}

		sess, err := s.gateway.CreateCheckoutSession(ctx, CheckoutRequest{
			ListingID:   event.ID,
			ListingKind: wizard.KindEvent,
			SuccessURL:  successURL,
			CancelURL:   cancelURL,
			ClientRef:   fmt.Sprintf("event-%d", event.ID),
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCheckoutFailed, err)
		}

		event.StripeSessionID = sess.ID
		event.PaymentStatus = models.PaymentStatusPending
		if err := s.events.Update(event); err != nil {
			return "", err
		}
		return sess.URL, nil

	default:
		return "", fmt.Errorf("unknown listing kind %q", kind)
	}
}

func (s *Service) ownedEvent(ownerID, eventID uint) (*models.Event, error) {
	church, err := s.churches.GetByOwnerID(ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wizard.ErrNotFound
		}
		return nil, err
	}
	event, err := s.events.GetByID(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wizard.ErrNotFound
		}
		return nil, err
	}
	if event.ChurchID != church.ID {
		return nil, wizard.ErrNotFound
	}
	return event, nil
}

// ConfirmPayment retrieves a checkout session and, when it represents a paid
// featured purchase, applies the promotion: featured flag on, featuredUntil
// seven days from now, payment completed, and (church only) the wizard step
// forced to the promotion step. Anything short of a verified paid session
// mutates nothing and returns ErrNotVerified.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID string) error {
	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotVerified, err)
	}
	if !sess.Paid {
		return ErrNotVerified
	}
	if sess.Metadata[metadataPurposeKey] != metadataPurpose {
		return ErrNotVerified
	}

	listingID, err := strconv.ParseUint(strings.TrimSpace(sess.Metadata[metadataListingID]), 10, 32)
	if err != nil {
		return ErrNotVerified
	}

	until := s.now().Add(FeaturedDuration)

	switch sess.Metadata[metadataListingKind] {
	case wizard.KindChurch:
		church, err := s.churches.GetByID(uint(listingID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotVerified
			}
			return err
		}
		church.IsFeatured = true
		church.FeaturedUntil = &until
		church.PaymentStatus = models.PaymentStatusCompleted
		church.StripeSessionID = sess.ID
		// Payment confirmation jumps the wizard to the promotion step
		// regardless of where the owner currently is.
		church.Step = models.ChurchFinalStep
		return s.churches.Update(church)

	case wizard.KindEvent:
		event, err := s.events.GetByID(uint(listingID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotVerified
			}
			return err
		}
		event.Featured = true
		event.FeaturedUntil = &until
		event.PaymentStatus = models.PaymentStatusCompleted
		event.StripeSessionID = sess.ID
		return s.events.Update(event)

	default:
		return ErrNotVerified
	}
}

// RecordRejectedWebhook stores a delivery that failed signature verification.
// Forged payloads carry no trustworthy event id, so each one gets a synthetic
// id instead of engaging the (provider, event id) dedup key: every rejected
// payload stays in the audit log and none of them shadows a later delivery.
func (s *Service) RecordRejectedWebhook(provider, payloadJSON string) (*models.PaymentWebhookEvent, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, errors.New("provider is required")
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: "rejected-" + uuid.NewString(),
		PayloadJSON:     payloadJSON,
		SignatureValid:  false,
	}
	if err := s.webhooks.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

// RecordWebhookEvent persists a webhook delivery idempotently. The returned
// bool is false when this provider event id was already stored.
func (s *Service) RecordWebhookEvent(in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: strings.TrimSpace(in.ProviderEventID),
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.webhooks.CreateIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.webhooks.MarkProcessed(webhookEventID, errMsg)
}
