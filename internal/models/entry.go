package models

import "time"

// Entry origins. Subscription lines renew monthly and stay editable until
// their draw date; one-time lines are fixed at purchase.
const (
	OriginSubscription = "subscription"
	OriginOneTime      = "one_time"
)

// Entry is one subscriber line registered against a future draw date.
type Entry struct {
	ID             string    `json:"id"`
	SubscriberID   string    `json:"subscriber_id"`
	DrawDate       time.Time `json:"draw_date"`
	Numbers        []int     `json:"numbers"`
	Active         bool      `json:"active"`
	Origin         string    `json:"origin"`
	SubscriptionID string    `json:"subscription_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ValidOrigin reports whether origin is a known entry origin.
func ValidOrigin(origin string) bool {
	return origin == OriginSubscription || origin == OriginOneTime
}
