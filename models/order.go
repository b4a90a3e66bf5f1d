package models

import "time"

// OrderStatus tracks production of a confirmed appointment.
type OrderStatus string

const (
	OrderConfirmed        OrderStatus = "Confirmed"
	OrderInProgress       OrderStatus = "In Progress"
	OrderReadyForDelivery OrderStatus = "Ready for Delivery"
	OrderCompleted        OrderStatus = "Completed"
)

// Order is derived 1:1 from a confirmed Appointment and shares its id.
// It is readable from orders/{id} and users/{customerId}/orders/{id}.
type Order struct {
	ID             string        `bson:"id" json:"id"`
	AppointmentID  string        `bson:"appointmentId" json:"appointmentId"`
	CustomerID     string        `bson:"customerId" json:"customerId"`
	CustomerName   string        `bson:"customerName" json:"customerName"`
	StyleCategory  string        `bson:"styleCategory" json:"styleCategory"`
	StyleReference string        `bson:"styleReference,omitempty" json:"styleReference,omitempty"`
	FabricSource   string        `bson:"fabricSource" json:"fabricSource"`
	Address        string        `bson:"address" json:"address"`
	DeliveryDate   string        `bson:"deliveryDate" json:"deliveryDate"` // "YYYY-MM-DD", the appointment's scheduled date
	DeliveryTime   string        `bson:"deliveryTime,omitempty" json:"deliveryTime,omitempty"`
	TotalCost      float64       `bson:"totalCost" json:"totalCost"`
	AdvancePaid    float64       `bson:"advancePaid" json:"advancePaid"`
	BalanceDue     float64       `bson:"balanceDue" json:"balanceDue"`
	PaymentStatus  PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	Status         OrderStatus   `bson:"status" json:"status"`
	ReminderSent   bool          `bson:"reminderSent" json:"reminderSent"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}
