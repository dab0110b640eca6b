package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ggg436/lingosses/models"
)

// SubscriptionService reads and maintains the persisted billing snapshot.
// It never talks to the billing provider itself; webhooks and the
// BillingClient feed it.
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// GetUserSubscription returns the user's snapshot, or nil when they have
// never subscribed. Nil is always inactive.
func (s *SubscriptionService) GetUserSubscription(userID string) (*models.UserSubscription, error) {
	if userID == "" {
		return nil, nil
	}

	var sub models.UserSubscription
	err := s.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dataSourceErr("user subscription", err)
	}

	return &sub, nil
}

// UpsertFromCheckout records a brand-new subscription after the provider
// confirms checkout completion.
func (s *SubscriptionService) UpsertFromCheckout(userID string, provider *ProviderSubscription) error {
	sub := models.UserSubscription{
		UserID:                 userID,
		StripeCustomerID:       provider.CustomerID,
		StripeSubscriptionID:   provider.ID,
		StripePriceID:          provider.PriceID,
		StripeCurrentPeriodEnd: &provider.CurrentPeriodEnd,
	}

	var existing models.UserSubscription
	err := s.db.Where("user_id = ?", userID).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dataSourceErr("subscription upsert", err)
		}
		if err := s.db.Create(&sub).Error; err != nil {
			return dataSourceErr("subscription create", err)
		}
		return nil
	}

	existing.StripeCustomerID = sub.StripeCustomerID
	existing.StripeSubscriptionID = sub.StripeSubscriptionID
	existing.StripePriceID = sub.StripePriceID
	existing.StripeCurrentPeriodEnd = sub.StripeCurrentPeriodEnd
	if err := s.db.Save(&existing).Error; err != nil {
		return dataSourceErr("subscription update", err)
	}
	return nil
}

// RenewFromInvoice pushes the new price and period end after a successful
// recurring payment. Unknown subscription ids are ignored; the webhook may
// arrive for customers created outside this deployment.
func (s *SubscriptionService) RenewFromInvoice(subscriptionID, priceID string, periodEnd time.Time) error {
	result := s.db.Model(&models.UserSubscription{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"stripe_price_id":           priceID,
			"stripe_current_period_end": periodEnd,
		})
	if result.Error != nil {
		return dataSourceErr("subscription renew", result.Error)
	}
	return nil
}
