package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Collection names a logical collection of the booking ledger.
type Collection string

const (
	CollAppointments         Collection = "appointments"          // tailor-global view
	CollCustomerAppointments Collection = "customer_appointments" // appointments/{customerId}/items
	CollOrders               Collection = "orders"                // tailor-global view
	CollCustomerOrders       Collection = "customer_orders"       // users/{customerId}/orders
	CollTaskStages           Collection = "task_stages"
	CollPayments             Collection = "payments"
	CollNotifications        Collection = "notifications" // notifications/{recipientId}/items
	CollSagas                Collection = "sagas"
	CollOutbox               Collection = "outbox"
	CollInvoices             Collection = "invoices"
	CollMeasurements         Collection = "measurements" // keyed by customer id
)

// Scoped reports whether documents of the collection live under an owner.
func (c Collection) Scoped() bool {
	switch c {
	case CollCustomerAppointments, CollCustomerOrders, CollNotifications:
		return true
	}
	return false
}

// DocRef addresses one document.
type DocRef struct {
	Collection Collection `bson:"collection" json:"collection"`
	OwnerID    string     `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	ID         string     `bson:"id" json:"id"`
}

// Path renders the composite path clients know the document by.
func (r DocRef) Path() string {
	switch r.Collection {
	case CollCustomerAppointments:
		return fmt.Sprintf("appointments/%s/items/%s", r.OwnerID, r.ID)
	case CollCustomerOrders:
		return fmt.Sprintf("users/%s/orders/%s", r.OwnerID, r.ID)
	case CollNotifications:
		return fmt.Sprintf("notifications/%s/items/%s", r.OwnerID, r.ID)
	}
	return fmt.Sprintf("%s/%s", r.Collection, r.ID)
}

func (r DocRef) String() string { return r.Path() }

func AppointmentRef(id string) DocRef { return DocRef{Collection: CollAppointments, ID: id} }

func CustomerAppointmentRef(customerID, id string) DocRef {
	return DocRef{Collection: CollCustomerAppointments, OwnerID: customerID, ID: id}
}

func OrderRef(id string) DocRef { return DocRef{Collection: CollOrders, ID: id} }

func CustomerOrderRef(customerID, id string) DocRef {
	return DocRef{Collection: CollCustomerOrders, OwnerID: customerID, ID: id}
}

func TaskStageRef(id string) DocRef { return DocRef{Collection: CollTaskStages, ID: id} }

func PaymentRef(id string) DocRef { return DocRef{Collection: CollPayments, ID: id} }

func NotificationRef(recipientID, id string) DocRef {
	return DocRef{Collection: CollNotifications, OwnerID: recipientID, ID: id}
}

// SagaRef addresses the cursor of one transition of a booking.
func SagaRef(bookingID, transition string) DocRef {
	return DocRef{Collection: CollSagas, ID: bookingID + ":" + transition}
}

func InvoiceRef(orderID string) DocRef { return DocRef{Collection: CollInvoices, ID: orderID} }

func MeasurementRef(customerID string) DocRef {
	return DocRef{Collection: CollMeasurements, ID: customerID}
}

func OutboxRef(target DocRef) DocRef { return DocRef{Collection: CollOutbox, ID: target.Path()} }

// Snapshot is the state of one document at a point in time, as delivered
// to subscribers.
type Snapshot struct {
	Ref    DocRef    `json:"ref"`
	Exists bool      `json:"exists"`
	Data   bson.M    `json:"data,omitempty"`
	At     time.Time `json:"at"`
}

// Decode copies the snapshot data into out.
func (s Snapshot) Decode(out any) error {
	if !s.Exists {
		return fmt.Errorf("snapshot of %s: document does not exist", s.Ref.Path())
	}
	raw, err := bson.Marshal(s.Data)
	if err != nil {
		return fmt.Errorf("snapshot of %s: %w", s.Ref.Path(), err)
	}
	return bson.Unmarshal(raw, out)
}
