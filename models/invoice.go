package models

import "time"

// Invoice is the receipt issued once a booking is paid in full. Its id is
// the booking id, so there is at most one per order.
type Invoice struct {
	ID             string        `bson:"id" json:"id"`
	OrderID        string        `bson:"orderId" json:"orderId"`
	CustomerID     string        `bson:"customerId" json:"customerId"`
	CustomerName   string        `bson:"customerName" json:"customerName"`
	Address        string        `bson:"address,omitempty" json:"address,omitempty"`
	StyleCategory  string        `bson:"styleCategory,omitempty" json:"styleCategory,omitempty"`
	FabricSource   string        `bson:"fabricSource,omitempty" json:"fabricSource,omitempty"`
	TotalCost      float64       `bson:"totalCost" json:"totalCost"`
	AdvancePaid    float64       `bson:"advancePaid" json:"advancePaid"`
	FinalPaid      float64       `bson:"finalPaid" json:"finalPaid"`
	BalanceDue     float64       `bson:"balanceDue" json:"balanceDue"`
	PaymentStatus  PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentID      string        `bson:"paymentId" json:"paymentId"`
	TransactionRef string        `bson:"transactionRef,omitempty" json:"transactionRef,omitempty"`
	IssuedAt       time.Time     `bson:"issuedAt" json:"issuedAt"`
}
