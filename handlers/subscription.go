// handlers/subscription.go - billing endpoints
package handlers

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ggg436/lingosses/middleware"
	"github.com/ggg436/lingosses/services"
)

// GetSubscription returns the persisted snapshot plus derived status.
// Billing gates correctness over availability, so this is the strict tier:
// storage failures surface instead of degrading.
// GET /api/subscription
func GetSubscription(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	subscription, err := subscriptionSvc.GetUserSubscription(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch subscription"})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"subscription": subscription,
		"is_active":    subscription.IsActive(),
	})
}

type checkoutRequest struct {
	Email string `json:"email,omitempty"`
}

// CreateBillingSession returns a hosted URL: the billing portal for an
// existing customer, otherwise a fresh checkout session.
// POST /api/billing/checkout
func CreateBillingSession(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": err.Error()})
	}

	var req checkoutRequest
	_ = c.BodyParser(&req)

	subscription, err := subscriptionSvc.GetUserSubscription(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch subscription"})
	}

	if subscription != nil && subscription.StripeCustomerID != "" {
		url, err := billingClient.CreatePortalSession(subscription.StripeCustomerID)
		if err != nil {
			log.Printf("Billing portal session failed: %v", err)
			return c.Status(502).JSON(fiber.Map{"error": "Billing provider unavailable"})
		}
		return c.JSON(fiber.Map{"success": true, "url": url})
	}

	url, err := billingClient.CreateCheckoutSession(userID, req.Email)
	if err != nil {
		log.Printf("Checkout session failed: %v", err)
		return c.Status(502).JSON(fiber.Map{"error": "Billing provider unavailable"})
	}

	return c.JSON(fiber.Map{"success": true, "url": url})
}

type checkoutSessionObject struct {
	Subscription string `json:"subscription"`
	Metadata     struct {
		UserID string `json:"userId"`
	} `json:"metadata"`
}

type invoiceObject struct {
	Subscription string `json:"subscription"`
}

// StripeWebhook ingests provider events and keeps the local subscription
// snapshot current. Unhandled event types are acknowledged and ignored.
// POST /api/billing/webhook
func StripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()

	if !billingClient.VerifyWebhookSignature(payload, c.Get("Stripe-Signature")) {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid signature"})
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid payload"})
	}

	switch event.Type {
	case "checkout.session.completed":
		var object checkoutSessionObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid event object"})
		}
		if object.Metadata.UserID == "" {
			return c.Status(400).JSON(fiber.Map{"error": "Missing userId metadata"})
		}

		provider, err := billingClient.GetSubscription(object.Subscription)
		if err != nil {
			log.Printf("Webhook: subscription lookup failed: %v", err)
			return c.Status(502).JSON(fiber.Map{"error": "Billing provider unavailable"})
		}

		if err := subscriptionSvc.UpsertFromCheckout(object.Metadata.UserID, provider); err != nil {
			log.Printf("Webhook: snapshot upsert failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to record subscription"})
		}

	case "invoice.payment_succeeded":
		var object invoiceObject
		if err := json.Unmarshal(event.Data.Object, &object); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid event object"})
		}

		provider, err := billingClient.GetSubscription(object.Subscription)
		if err != nil {
			log.Printf("Webhook: subscription lookup failed: %v", err)
			return c.Status(502).JSON(fiber.Map{"error": "Billing provider unavailable"})
		}

		if err := subscriptionSvc.RenewFromInvoice(provider.ID, provider.PriceID, provider.CurrentPeriodEnd); err != nil {
			log.Printf("Webhook: snapshot renew failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "Failed to update subscription"})
		}
	}

	return c.JSON(fiber.Map{"received": true})
}
