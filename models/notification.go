package models

import "time"

// DeepLink points a client at a screen with prefilled parameters.
type DeepLink struct {
	Screen string            `bson:"screen" json:"screen"`
	Params map[string]string `bson:"params" json:"params"`
	Link   string            `bson:"link,omitempty" json:"link,omitempty"`
}

// Notification is an entry in a recipient's inbox.
type Notification struct {
	ID          string    `bson:"id" json:"id"`
	RecipientID string    `bson:"recipientId" json:"recipientId"`
	Kind        string    `bson:"kind" json:"kind"`
	Title       string    `bson:"title" json:"title"`
	Body        string    `bson:"body" json:"body"`
	Read        bool      `bson:"read" json:"read"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	Data        *DeepLink `bson:"data,omitempty" json:"data,omitempty"`
}
