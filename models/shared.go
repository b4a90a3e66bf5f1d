package models

// ReminderPayload is the body of a scheduled final-payment reminder task.
type ReminderPayload struct {
	OrderID      string `json:"orderId"`
	CustomerID   string `json:"customerId"`
	DeliveryDate string `json:"deliveryDate"`
	FireDate     string `json:"fireDate"`
}
