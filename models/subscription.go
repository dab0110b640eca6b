// models/subscription.go - Billing Snapshot
package models

import (
	"time"
)

// SubscriptionGracePeriod keeps a subscription usable for a day past its
// period end so webhook latency never locks a paying user out.
const SubscriptionGracePeriod = 24 * time.Hour

// UserSubscription is the persisted snapshot of the billing provider's
// state for one user. Active-ness is derived, never stored.
type UserSubscription struct {
	ID                     uint       `json:"id" gorm:"primaryKey"`
	UserID                 string     `json:"user_id" gorm:"uniqueIndex;not null;size:64"`
	StripeCustomerID       string     `json:"stripe_customer_id" gorm:"uniqueIndex;size:64"`
	StripeSubscriptionID   string     `json:"stripe_subscription_id" gorm:"uniqueIndex;size:64"`
	StripePriceID          string     `json:"stripe_price_id" gorm:"size:64"`
	StripeCurrentPeriodEnd *time.Time `json:"stripe_current_period_end"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// IsActiveAt reports whether the subscription is usable at the given
// instant. A nil snapshot, missing price id, or missing period end is
// always inactive.
func (s *UserSubscription) IsActiveAt(now time.Time) bool {
	if s == nil || s.StripePriceID == "" || s.StripeCurrentPeriodEnd == nil {
		return false
	}
	return s.StripeCurrentPeriodEnd.Add(SubscriptionGracePeriod).After(now)
}

// IsActive is IsActiveAt against the wall clock.
func (s *UserSubscription) IsActive() bool {
	return s.IsActiveAt(time.Now())
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}
