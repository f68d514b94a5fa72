package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/churchatlas/churchatlas/internal/pkg/database"
	"github.com/churchatlas/churchatlas/internal/pkg/env"
	"github.com/churchatlas/churchatlas/internal/pkg/featured"
	"github.com/churchatlas/churchatlas/internal/pkg/usercontext"
	"github.com/churchatlas/churchatlas/internal/pkg/wizard"
)

// verifyRetryDelay is how long the success leg waits before re-checking a
// session Stripe has not marked paid yet.
const verifyRetryDelay = 10 * time.Second

func featuredService() *featured.Service {
	return featured.NewServiceFromDB(database.GetDB())
}

func publicBaseURL() string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base
}

// HandleFeaturedCheckout creates a Stripe checkout session for a listing.
func HandleFeaturedCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	kind := c.Params("kind")
	if kind != wizard.KindChurch && kind != wizard.KindEvent {
		return jsonError(c, fiber.StatusBadRequest, "Unknown listing kind")
	}

	listingID, err := c.ParamsInt("id")
	if err != nil || listingID < 0 {
		return jsonError(c, fiber.StatusBadRequest, "Invalid listing id")
	}

	base := publicBaseURL()
	successURL := base + "/featured/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := base + "/featured/cancel"

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	checkoutURL, err := featuredService().RequestCheckout(ctx, userCtx.UserID, kind, uint(listingID), successURL, cancelURL)
	if err != nil {
		if errors.Is(err, featured.ErrCheckoutFailed) {
			fiberlog.Errorf("checkout session creation failed: %v", err)
			return jsonError(c, fiber.StatusInternalServerError, "Failed to create checkout session")
		}
		return wizardError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"checkout_url": checkoutURL,
	})
}

// HandleFeaturedSuccess is the browser return leg after Stripe checkout.
// It verifies the session server-side; the redirect alone proves nothing.
func HandleFeaturedSuccess(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Missing checkout session",
		}).Redirect("/")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := featuredService().ConfirmPayment(ctx, sessionID); err != nil {
		fiberlog.Warnf("featured confirmation not verified for session %s: %v", sessionID, err)

		// Stripe may still be settling; check once more shortly after
		time.AfterFunc(verifyRetryDelay, func() {
			retryCtx, retryCancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer retryCancel()
			if err := featuredService().ConfirmPayment(retryCtx, sessionID); err != nil {
				fiberlog.Warnf("featured confirmation retry failed for session %s: %v", sessionID, err)
			}
		})

		return flash.WithError(c, fiber.Map{
			"type":    "error",
			"message": "Payment not verified yet. Your listing will be featured once the payment settles.",
		}).Redirect("/")
	}

	return flash.WithSuccess(c, fiber.Map{
		"type":    "success",
		"message": "Payment received. Your listing is now featured for a week!",
	}).Redirect("/")
}

// HandleFeaturedCancel is the browser return leg after an aborted checkout.
func HandleFeaturedCancel(c *fiber.Ctx) error {
	return flash.WithInfo(c, fiber.Map{
		"type":    "info",
		"message": "Checkout cancelled. Your listing has not been charged.",
	}).Redirect("/")
}

// HandleStripeWebhook processes Stripe webhook deliveries.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("Stripe-Signature")
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	svc := featuredService()

	event, verifyErr := featured.VerifyWebhookSignature(rawBody, signature, secret)
	if verifyErr != nil {
		// A forged payload carries no trustworthy event id; keep it out of
		// the dedup store so every rejected delivery is retained and rejected
		if stored, err := svc.RecordRejectedWebhook("stripe", string(rawBody)); err != nil {
			fiberlog.Errorf("rejected webhook persist failed: %v", err)
		} else {
			_ = svc.MarkWebhookProcessed(stored.ID, errors.New("invalid webhook signature"))
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	eventType := string(event.Type)

	created, stored, err := svc.RecordWebhookEvent(featured.WebhookEventInput{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		EventType:       eventType,
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		fiberlog.Errorf("webhook persist failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if eventType != "checkout.session.completed" {
		_ = svc.MarkWebhookProcessed(stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	sessionID, err := featured.CheckoutSessionIDFromEvent(event)
	if err != nil {
		_ = svc.MarkWebhookProcessed(stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	confirmErr := svc.ConfirmPayment(ctx, sessionID)
	if confirmErr != nil && errors.Is(confirmErr, featured.ErrNotVerified) {
		// Completed event for an unpaid session; acknowledge, nothing to do
		_ = svc.MarkWebhookProcessed(stored.ID, confirmErr)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}
	_ = svc.MarkWebhookProcessed(stored.ID, confirmErr)
	if confirmErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "confirmation_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}
