package featured

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/churchatlas/churchatlas/app/models"
	"github.com/churchatlas/churchatlas/internal/pkg/wizard"
)

func newTestService(churches *memChurchRepo, events *memEventRepo, gateway Gateway) *Service {
	return NewService(churches, events, newMemWebhookRepo(), gateway)
}

func seedTestChurch(repo *memChurchRepo, ownerID uint) *models.Church {
	church := &models.Church{
		UserID:        ownerID,
		Name:          "Grace Community Church",
		Slug:          "grace-community-church",
		Step:          4,
		Status:        models.ListingStatusPublished,
		PaymentStatus: models.PaymentStatusNone,
	}
	_ = repo.Create(church)
	return church
}

func seedTestEvent(repo *memEventRepo, churchID uint) *models.Event {
	event := &models.Event{
		ChurchID:      churchID,
		Title:         "Summer Revival",
		Slug:          "summer-revival",
		Step:          2,
		Status:        models.ListingStatusPublished,
		PaymentStatus: models.PaymentStatusNone,
	}
	_ = repo.Create(event)
	return event
}

func TestRequestCheckout_ChurchPersistsPendingSession(t *testing.T) {
	churches := newMemChurchRepo()
	events := newMemEventRepo()
	gateway := newStubGateway()
	church := seedTestChurch(churches, 7)
	svc := newTestService(churches, events, gateway)

	url, err := svc.RequestCheckout(context.Background(), 7, wizard.KindChurch, church.ID,
		"https://example.test/featured/success", "https://example.test/featured/cancel")
	assert.NoError(t, err)
	assert.NotEmpty(t, url)
	assert.Equal(t, wizard.KindChurch, gateway.lastReq.ListingKind)

	stored, err := churches.GetByID(church.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.NotEmpty(t, stored.StripeSessionID)
}

func TestRequestCheckout_GatewayFailurePersistsNothing(t *testing.T) {
	churches := newMemChurchRepo()
	gateway := newStubGateway()
	gateway.createErr = errors.New("stripe down")
	church := seedTestChurch(churches, 7)
	svc := newTestService(churches, newMemEventRepo(), gateway)

	_, err := svc.RequestCheckout(context.Background(), 7, wizard.KindChurch, church.ID, "s", "c")
	assert.ErrorIs(t, err, ErrCheckoutFailed)

	stored, err := churches.GetByID(church.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusNone, stored.PaymentStatus)
	assert.Empty(t, stored.StripeSessionID)
}

func TestRequestCheckout_CrossOwnerEventConcealed(t *testing.T) {
	churches := newMemChurchRepo()
	events := newMemEventRepo()
	seedTestChurch(churches, 7)
	theirs := seedTestChurch(churches, 8)
	foreign := seedTestEvent(events, theirs.ID)
	svc := newTestService(churches, events, newStubGateway())

	_, err := svc.RequestCheckout(context.Background(), 7, wizard.KindEvent, foreign.ID, "s", "c")
	assert.ErrorIs(t, err, wizard.ErrNotFound)
}

func TestRequestCheckout_UnknownKind(t *testing.T) {
	churches := newMemChurchRepo()
	seedTestChurch(churches, 7)
	svc := newTestService(churches, newMemEventRepo(), newStubGateway())

	_, err := svc.RequestCheckout(context.Background(), 7, "banner", 1, "s", "c")
	assert.Error(t, err)
}

func TestConfirmPayment_ChurchAppliesPromotion(t *testing.T) {
	churches := newMemChurchRepo()
	events := newMemEventRepo()
	gateway := newStubGateway()
	church := seedTestChurch(churches, 7)
	church.Step = 2
	_ = churches.Update(church)
	svc := newTestService(churches, events, gateway)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, err := gateway.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ListingID:   church.ID,
		ListingKind: wizard.KindChurch,
	})
	assert.NoError(t, err)
	sess.Paid = true

	assert.NoError(t, svc.ConfirmPayment(context.Background(), sess.ID))

	stored, err := churches.GetByID(church.ID)
	assert.NoError(t, err)
	assert.True(t, stored.IsFeatured)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	assert.Equal(t, models.ChurchFinalStep, stored.Step)
	assert.NotNil(t, stored.FeaturedUntil)
	assert.Equal(t, now.Add(FeaturedDuration), *stored.FeaturedUntil)
}

func TestConfirmPayment_UnpaidSessionMutatesNothing(t *testing.T) {
	churches := newMemChurchRepo()
	gateway := newStubGateway()
	church := seedTestChurch(churches, 7)
	svc := newTestService(churches, newMemEventRepo(), gateway)

	sess, err := gateway.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ListingID:   church.ID,
		ListingKind: wizard.KindChurch,
	})
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ConfirmPayment(context.Background(), sess.ID), ErrNotVerified)

	stored, err := churches.GetByID(church.ID)
	assert.NoError(t, err)
	assert.False(t, stored.IsFeatured)
	assert.Nil(t, stored.FeaturedUntil)
	assert.Equal(t, models.PaymentStatusNone, stored.PaymentStatus)
}

func TestConfirmPayment_WrongPurposeRejected(t *testing.T) {
	churches := newMemChurchRepo()
	gateway := newStubGateway()
	church := seedTestChurch(churches, 7)
	svc := newTestService(churches, newMemEventRepo(), gateway)

	sess, err := gateway.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ListingID:   church.ID,
		ListingKind: wizard.KindChurch,
	})
	assert.NoError(t, err)
	sess.Paid = true
	sess.Metadata[metadataPurposeKey] = "donation"

	assert.ErrorIs(t, svc.ConfirmPayment(context.Background(), sess.ID), ErrNotVerified)
}

func TestConfirmPayment_UnknownSessionRejected(t *testing.T) {
	svc := newTestService(newMemChurchRepo(), newMemEventRepo(), newStubGateway())

	assert.ErrorIs(t, svc.ConfirmPayment(context.Background(), "cs_missing"), ErrNotVerified)
}

func TestConfirmPayment_ReconfirmExtendsWindow(t *testing.T) {
	churches := newMemChurchRepo()
	gateway := newStubGateway()
	church := seedTestChurch(churches, 7)
	svc := newTestService(churches, newMemEventRepo(), gateway)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, err := gateway.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ListingID:   church.ID,
		ListingKind: wizard.KindChurch,
	})
	assert.NoError(t, err)
	sess.Paid = true

	assert.NoError(t, svc.ConfirmPayment(context.Background(), sess.ID))

	// Redirect leg and webhook may both confirm: the window restarts.
	now = now.Add(2 * time.Hour)
	assert.NoError(t, svc.ConfirmPayment(context.Background(), sess.ID))

	stored, err := churches.GetByID(church.ID)
	assert.NoError(t, err)
	assert.Equal(t, now.Add(FeaturedDuration), *stored.FeaturedUntil)
}

func TestConfirmPayment_EventAppliesPromotion(t *testing.T) {
	churches := newMemChurchRepo()
	events := newMemEventRepo()
	gateway := newStubGateway()
	church := seedTestChurch(churches, 7)
	event := seedTestEvent(events, church.ID)
	svc := newTestService(churches, events, gateway)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sess, err := gateway.CreateCheckoutSession(context.Background(), CheckoutRequest{
		ListingID:   event.ID,
		ListingKind: wizard.KindEvent,
	})
	assert.NoError(t, err)
	sess.Paid = true

	assert.NoError(t, svc.ConfirmPayment(context.Background(), sess.ID))

	stored, err := events.GetByID(event.ID)
	assert.NoError(t, err)
	assert.True(t, stored.Featured)
	assert.Equal(t, models.PaymentStatusCompleted, stored.PaymentStatus)
	assert.Equal(t, now.Add(FeaturedDuration), *stored.FeaturedUntil)
	// Events have no sentinel step to force.
	assert.Equal(t, 2, stored.Step)
}

func TestRecordWebhookEvent_Deduplicates(t *testing.T) {
	webhooks := newMemWebhookRepo()
	svc := NewService(newMemChurchRepo(), newMemEventRepo(), webhooks, newStubGateway())

	in := WebhookEventInput{
		Provider:        "Stripe",
		ProviderEventID: "evt_123",
		EventType:       "checkout.session.completed",
		PayloadJSON:     `{"id":"evt_123"}`,
		SignatureValid:  true,
	}

	created, first, err := svc.RecordWebhookEvent(in)
	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "stripe", first.Provider)

	created, second, err := svc.RecordWebhookEvent(in)
	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestRecordRejectedWebhook_RetainsEveryDelivery(t *testing.T) {
	webhooks := newMemWebhookRepo()
	svc := NewService(newMemChurchRepo(), newMemEventRepo(), webhooks, newStubGateway())

	first, err := svc.RecordRejectedWebhook("stripe", `{"forged":1}`)
	assert.NoError(t, err)
	second, err := svc.RecordRejectedWebhook("stripe", `{"forged":2}`)
	assert.NoError(t, err)

	// Forged deliveries never share an id, so none shadows another
	assert.NotEqual(t, first.ProviderEventID, second.ProviderEventID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, first.SignatureValid)
	assert.Len(t, webhooks.events, 2)

	// A later verified delivery still deduplicates independently
	created, _, err := svc.RecordWebhookEvent(WebhookEventInput{
		Provider:        "stripe",
		ProviderEventID: "evt_real",
		EventType:       "checkout.session.completed",
		PayloadJSON:     "{}",
		SignatureValid:  true,
	})
	assert.NoError(t, err)
	assert.True(t, created)
}

func TestRecordRejectedWebhook_RequiresProvider(t *testing.T) {
	svc := NewService(newMemChurchRepo(), newMemEventRepo(), newMemWebhookRepo(), newStubGateway())

	_, err := svc.RecordRejectedWebhook("  ", "{}")
	assert.Error(t, err)
}

func TestRecordWebhookEvent_RequiresProvider(t *testing.T) {
	svc := NewService(newMemChurchRepo(), newMemEventRepo(), newMemWebhookRepo(), newStubGateway())

	_, _, err := svc.RecordWebhookEvent(WebhookEventInput{ProviderEventID: "evt_123"})
	assert.Error(t, err)
}

func TestMarkWebhookProcessed(t *testing.T) {
	webhooks := newMemWebhookRepo()
	svc := NewService(newMemChurchRepo(), newMemEventRepo(), webhooks, newStubGateway())

	_, stored, err := svc.RecordWebhookEvent(WebhookEventInput{
		Provider:        "stripe",
		ProviderEventID: "evt_9",
		EventType:       "checkout.session.completed",
		PayloadJSON:     "{}",
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.MarkWebhookProcessed(stored.ID, errors.New("listing gone")))
	assert.Error(t, svc.MarkWebhookProcessed(0, nil))
}
