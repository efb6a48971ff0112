package models

import "time"

// PasswordResetTicket is a persisted one-shot reset token. The collection
// carries a TTL index on expiresAt, so expired tickets disappear on their
// own even across restarts.
type PasswordResetTicket struct {
	Token      string    `bson:"token" json:"token"`
	Email      string    `bson:"email" json:"email"`
	Collection string    `bson:"collection" json:"collection"` // users or sellers
	ExpiresAt  time.Time `bson:"expiresAt" json:"expiresAt"`
}
