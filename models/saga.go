package models

import "time"

// SagaCursor records how far a multi-step transition got for one booking.
type SagaCursor struct {
	BookingID  string    `bson:"bookingId" json:"bookingId"`
	Transition string    `bson:"transition" json:"transition"`
	LastStep   int       `bson:"lastStep" json:"lastStep"` // index of the last completed step, -1 if none
	Completed  bool      `bson:"completed" json:"completed"`
	LastError  string    `bson:"lastError,omitempty" json:"lastError,omitempty"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OutboxEntry is a pending mirror write. One entry exists per target
// document; newer fields are merged over older ones.
type OutboxEntry struct {
	ID        string         `bson:"id" json:"id"` // target document path
	BookingID string         `bson:"bookingId" json:"bookingId"`
	Target    DocRef         `bson:"target" json:"target"`
	Fields    map[string]any `bson:"fields" json:"fields"`
	Attempts  int            `bson:"attempts" json:"attempts"`
	LastError string         `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time      `bson:"updatedAt" json:"updatedAt"`
}
