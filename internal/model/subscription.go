package model

import "time"

// Subscription is a row of the `subscriptions` table: SubscriberID follows
// SellerID. The pair is unique and a user never follows themselves.
type Subscription struct {
	ID           uint64
	SubscriberID uint64
	SellerID     uint64
	CreatedAt    time.Time
}
