package models

import "time"

// PaymentStatus is the payment progress carried on Appointment and Order.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "Pending"
	PaymentAdvancePaid PaymentStatus = "Advance Paid"
	PaymentFullPaid    PaymentStatus = "Full Paid"
)

type PaymentKind string

const (
	PaymentKindAdvance PaymentKind = "advance"
	PaymentKindFinal   PaymentKind = "final"
)

type PaymentRecordStatus string

const (
	PaymentSubmitted PaymentRecordStatus = "submitted"
	PaymentVerified  PaymentRecordStatus = "verified"
)

// Payment is a customer's payment submission awaiting tailor verification.
// OrderID is the booking id, which is both the appointment and the order id.
type Payment struct {
	ID             string              `bson:"id" json:"id"`
	UserID         string              `bson:"userId" json:"userId"`
	OrderID        string              `bson:"orderId" json:"orderId"`
	Kind           PaymentKind         `bson:"kind" json:"kind"`
	Amount         float64             `bson:"amount" json:"amount"`
	Status         PaymentRecordStatus `bson:"status" json:"status"`
	TransactionRef string              `bson:"transactionRef" json:"transactionRef"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
	VerifiedAt     *time.Time          `bson:"verifiedAt,omitempty" json:"verifiedAt,omitempty"`
}
