package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ggg436/lingosses/config"
)

const (
	// ProMonthlyAmountCents is the single price point: $20.00/month.
	ProMonthlyAmountCents = 2000
	proProductName        = "Lingo Pro"
	proProductDescription = "Unlimited Hearts"

	// Webhook timestamps older than this are rejected as replays.
	webhookTolerance = 5 * time.Minute
)

// ProviderSubscription is the slice of the billing provider's subscription
// object this service cares about.
type ProviderSubscription struct {
	ID               string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd time.Time
}

// BillingClient talks to the payment provider's REST API. The hosted
// checkout and billing portal own the whole payment UX; this client only
// creates sessions and reads subscription snapshots.
type BillingClient struct {
	http          *resty.Client
	webhookSecret string
	returnURL     string
}

func NewBillingClient(cfg *config.Config) *BillingClient {
	client := resty.New().
		SetBaseURL(cfg.StripeAPIBase).
		SetBasicAuth(cfg.StripeSecretKey, "").
		SetTimeout(10 * time.Second)

	return &BillingClient{
		http:          client,
		webhookSecret: cfg.StripeWebhookSecret,
		returnURL:     strings.TrimRight(cfg.AppURL, "/") + "/shop",
	}
}

type sessionResponse struct {
	URL   string `json:"url"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a hosted checkout for the fixed monthly
// product. Success and cancel both land back on the shop page.
func (b *BillingClient) CreateCheckoutSession(userID, email string) (string, error) {
	form := map[string]string{
		"mode":                                         "subscription",
		"payment_method_types[0]":                      "card",
		"line_items[0][quantity]":                      "1",
		"line_items[0][price_data][currency]":          "usd",
		"line_items[0][price_data][unit_amount]":       strconv.Itoa(ProMonthlyAmountCents),
		"line_items[0][price_data][recurring][interval]": "month",
		"line_items[0][price_data][product_data][name]": proProductName,
		"line_items[0][price_data][product_data][description]": proProductDescription,
		"metadata[userId]": userID,
		"success_url":      b.returnURL,
		"cancel_url":       b.returnURL,
	}
	if email != "" {
		form["customer_email"] = email
	}

	var out sessionResponse
	resp, err := b.http.R().
		SetFormData(form).
		SetResult(&out).
		SetError(&out).
		Post("/v1/checkout/sessions")
	if err != nil {
		return "", fmt.Errorf("billing: create checkout session: %w", err)
	}
	if resp.IsError() {
		return "", billingAPIError("create checkout session", &out, resp.StatusCode())
	}

	return out.URL, nil
}

// CreatePortalSession opens the billing portal for an existing customer.
func (b *BillingClient) CreatePortalSession(customerID string) (string, error) {
	var out sessionResponse
	resp, err := b.http.R().
		SetFormData(map[string]string{
			"customer":   customerID,
			"return_url": b.returnURL,
		}).
		SetResult(&out).
		SetError(&out).
		Post("/v1/billing_portal/sessions")
	if err != nil {
		return "", fmt.Errorf("billing: create portal session: %w", err)
	}
	if resp.IsError() {
		return "", billingAPIError("create portal session", &out, resp.StatusCode())
	}

	return out.URL, nil
}

type subscriptionResponse struct {
	ID               string `json:"id"`
	Customer         string `json:"customer"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GetSubscription fetches a subscription snapshot by provider id.
func (b *BillingClient) GetSubscription(subscriptionID string) (*ProviderSubscription, error) {
	var out subscriptionResponse
	resp, err := b.http.R().
		SetResult(&out).
		SetError(&out).
		Get("/v1/subscriptions/" + subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("billing: get subscription: %w", err)
	}
	if resp.IsError() {
		if out.Error != nil {
			return nil, fmt.Errorf("billing: get subscription: %s", out.Error.Message)
		}
		return nil, fmt.Errorf("billing: get subscription: status %d", resp.StatusCode())
	}

	sub := &ProviderSubscription{
		ID:               out.ID,
		CustomerID:       out.Customer,
		CurrentPeriodEnd: time.Unix(out.CurrentPeriodEnd, 0),
	}
	if len(out.Items.Data) > 0 {
		sub.PriceID = out.Items.Data[0].Price.ID
	}

	return sub, nil
}

// VerifyWebhookSignature checks the provider's signature header
// ("t=<unix>,v1=<hmac>") against the raw payload.
func (b *BillingClient) VerifyWebhookSignature(payload []byte, header string) bool {
	return verifySignature(payload, header, b.webhookSecret, time.Now())
}

func verifySignature(payload []byte, header, secret string, now time.Time) bool {
	if secret == "" || header == "" {
		return false
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return true
		}
	}
	return false
}

func billingAPIError(op string, out *sessionResponse, status int) error {
	if out != nil && out.Error != nil {
		return fmt.Errorf("billing: %s: %s", op, out.Error.Message)
	}
	return fmt.Errorf("billing: %s: status %d", op, status)
}

// WebhookEvent is the envelope of a provider event; Data.Object is kept
// raw because its shape depends on the event type.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}
