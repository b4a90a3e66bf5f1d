package models

import "time"

// PushTarget is how a recipient can be reached outside the app inbox.
type PushTarget struct {
	RecipientID string    `bson:"recipientId" json:"recipientId"`
	FCMToken    string    `bson:"fcmToken,omitempty" json:"fcmToken,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
