package models

import "time"

// AppointmentStatus is the tailor's decision on a booking request.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "Pending"
	AppointmentConfirmed AppointmentStatus = "Confirmed"
	AppointmentRejected  AppointmentStatus = "Rejected"
)

// Appointment is a customer's request for a visit/style. The same document
// (same id) lives in the tailor-global view and in the customer's own view.
type Appointment struct {
	ID             string            `bson:"id" json:"id"`
	CustomerID     string            `bson:"customerId" json:"customerId"`
	CustomerName   string            `bson:"customerName" json:"customerName"`
	Phone          string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Email          string            `bson:"email,omitempty" json:"email,omitempty"`
	ScheduledDate  string            `bson:"scheduledDate" json:"scheduledDate"` // "YYYY-MM-DD"
	ScheduledTime  string            `bson:"scheduledTime" json:"scheduledTime"` // e.g. "4:30 PM"
	VisitType      string            `bson:"visitType,omitempty" json:"visitType,omitempty"`
	StyleCategory  string            `bson:"styleCategory" json:"styleCategory"`
	StyleReference string            `bson:"styleReference,omitempty" json:"styleReference,omitempty"`
	FabricSource   string            `bson:"fabricSource" json:"fabricSource"`
	Address        string            `bson:"address" json:"address"`
	Note           string            `bson:"note,omitempty" json:"note,omitempty"`
	TotalCost      float64           `bson:"totalCost" json:"totalCost"`
	AdvancePaid    float64           `bson:"advancePaid" json:"advancePaid"`
	BalanceDue     float64           `bson:"balanceDue" json:"balanceDue"`
	PaymentStatus  PaymentStatus     `bson:"paymentStatus" json:"paymentStatus"`
	Status         AppointmentStatus `bson:"status" json:"status"`
	OrderStatus    OrderStatus       `bson:"orderStatus,omitempty" json:"orderStatus,omitempty"` // progress of the derived order, display only
	ReminderSent   bool              `bson:"reminderSent" json:"reminderSent"`
	CreatedAt      time.Time         `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time         `bson:"updatedAt" json:"updatedAt"`
}

// AppointmentDraft is what a customer submits when booking.
type AppointmentDraft struct {
	CustomerName   string  `json:"customerName" binding:"required"`
	Phone          string  `json:"phone" binding:"required"`
	Email          string  `json:"email"`
	ScheduledDate  string  `json:"scheduledDate" binding:"required"`
	ScheduledTime  string  `json:"scheduledTime" binding:"required"`
	VisitType      string  `json:"visitType"`
	StyleCategory  string  `json:"styleCategory" binding:"required"`
	StyleReference string  `json:"styleReference"`
	FabricSource   string  `json:"fabricSource"`
	Address        string  `json:"address" binding:"required"`
	Note           string  `json:"note"`
	TotalCost      float64 `json:"totalCost"`
}
