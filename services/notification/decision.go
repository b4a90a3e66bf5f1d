package notification

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"vastramitra/models"
)

// Event is a lifecycle transition that may inform someone.
type Event string

const (
	EventAppointmentConfirmed Event = "appointment.confirmed"
	EventAppointmentRejected  Event = "appointment.rejected"
	EventOrderInProgress      Event = "order.in_progress"
	EventOrderReady           Event = "order.ready_for_delivery"
	EventOrderCompleted       Event = "order.completed"
	EventFinalPaymentReminder Event = "reminder.final_payment"
	EventAdvanceSubmitted     Event = "payment.advance.submitted"
	EventFinalSubmitted       Event = "payment.final.submitted"
	EventAdvanceVerified      Event = "payment.advance.verified"
	EventFinalVerified        Event = "payment.final.verified"
)

// ScreenFinalPayment is the client screen that collects the balance.
const ScreenFinalPayment = "FinalPayment"

// Facts are the booking values templates may refer to.
type Facts struct {
	BookingID     string
	CustomerID    string
	CustomerName  string
	ScheduledDate string
	ScheduledTime string
	TotalCost     float64
	AdvancePaid   float64
	BalanceDue    float64
	Amount        float64
}

// Message is a rendered notification for one recipient.
type Message struct {
	Event       Event
	RecipientID string
	Title       string
	Body        string
	Data        *models.DeepLink
}

type ruleKey struct {
	event Event
	role  models.Role
}

type rule struct {
	title    func(Facts) string
	body     func(Facts) string
	deepLink bool
}

func fixed(s string) func(Facts) string { return func(Facts) string { return s } }

// money renders an amount the way customers see it in the app.
func money(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

var rules = map[ruleKey]rule{
	{EventAppointmentConfirmed, models.RoleCustomer}: {
		title: fixed("Appointment Confirmed ✅"),
		body: func(f Facts) string {
			return fmt.Sprintf("Your appointment on %s at %s has been confirmed.", f.ScheduledDate, f.ScheduledTime)
		},
	},
	{EventAppointmentRejected, models.RoleCustomer}: {
		title: fixed("Appointment Rejected ❌"),
		body: func(f Facts) string {
			return fmt.Sprintf("Sorry, your appointment on %s at %s was rejected.", f.ScheduledDate, f.ScheduledTime)
		},
	},
	{EventOrderInProgress, models.RoleCustomer}: {
		title: fixed("Order " + string(models.OrderInProgress)),
		body: func(f Facts) string {
			return fmt.Sprintf("Your order %s status has been updated to: %s", f.BookingID, models.OrderInProgress)
		},
	},
	{EventOrderReady, models.RoleCustomer}: {
		title: fixed("Your Order is Ready 🎉"),
		body: func(f Facts) string {
			return fmt.Sprintf("Your outfit is ready! Please pay the remaining ₹%s to confirm delivery.", money(f.BalanceDue))
		},
		deepLink: true,
	},
	{EventOrderCompleted, models.RoleCustomer}: {
		title: fixed("Order Completed ✅"),
		body:  fixed("Your order has been successfully delivered. Thank you for choosing VastraMitra!"),
	},
	{EventFinalPaymentReminder, models.RoleCustomer}: {
		title: fixed("Final Payment Reminder ⏰"),
		body: func(f Facts) string {
			return fmt.Sprintf("Your delivery is on %s. Please pay the remaining ₹%s to confirm delivery.", f.ScheduledDate, money(f.BalanceDue))
		},
		deepLink: true,
	},
	{EventAdvanceSubmitted, models.RoleTailor}: {
		title: fixed("Advance Payment Received 💰"),
		body: func(f Facts) string {
			return fmt.Sprintf("%s paid ₹%s advance. Awaiting confirmation.", f.CustomerName, money(f.Amount))
		},
	},
	{EventFinalSubmitted, models.RoleTailor}: {
		title: fixed("Final Payment Submitted 💳"),
		body: func(f Facts) string {
			return fmt.Sprintf("Customer submitted final payment for order %s. Please verify and mark as Full Paid.", f.BookingID)
		},
	},
	{EventAdvanceVerified, models.RoleCustomer}: {
		title: fixed("Advance Payment Verified ✅"),
		body: func(f Facts) string {
			return fmt.Sprintf("Hi %s, your advance of ₹%s has been verified. Remaining balance: ₹%s.", nameOrCustomer(f), money(f.Amount), money(f.BalanceDue))
		},
	},
	{EventFinalVerified, models.RoleCustomer}: {
		title: fixed("Final Payment Verified ✅"),
		body: func(f Facts) string {
			return fmt.Sprintf("Hi %s, your final payment has been verified. You can now download your invoice.", nameOrCustomer(f))
		},
	},
}

func nameOrCustomer(f Facts) string {
	if f.CustomerName == "" {
		return "Customer"
	}
	return f.CustomerName
}

// Decider renders the decision table. Tailor-addressed messages go to
// TailorID; customer-addressed ones to the booking's customer.
type Decider struct {
	Scheme   string
	TailorID string
}

// Decide returns the messages event produces, ordered by role. An event with
// no table entry produces none.
func (d Decider) Decide(event Event, f Facts) []Message {
	var keys []ruleKey
	for k := range rules {
		if k.event == event {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].role < keys[j].role })

	out := make([]Message, 0, len(keys))
	for _, k := range keys {
		r := rules[k]
		msg := Message{
			Event:       event,
			RecipientID: d.recipient(k.role, f),
			Title:       r.title(f),
			Body:        r.body(f),
		}
		if r.deepLink {
			msg.Data = d.FinalPaymentLink(f)
		}
		out = append(out, msg)
	}
	return out
}

func (d Decider) recipient(role models.Role, f Facts) string {
	if role == models.RoleTailor {
		return d.TailorID
	}
	return f.CustomerID
}

// FinalPaymentLink builds the payload that opens the final-payment screen
// with the booking totals prefilled.
func (d Decider) FinalPaymentLink(f Facts) *models.DeepLink {
	scheme := d.Scheme
	if scheme == "" {
		scheme = "vastramitra"
	}
	q := url.Values{}
	q.Set("appointmentId", f.BookingID)
	q.Set("userId", f.CustomerID)
	link := url.URL{Scheme: scheme, Host: "finalpayment", RawQuery: q.Encode()}

	return &models.DeepLink{
		Screen: ScreenFinalPayment,
		Params: map[string]string{
			"appointmentId": f.BookingID,
			"userId":        f.CustomerID,
			"totalCost":     money(f.TotalCost),
			"advancePaid":   money(f.AdvancePaid),
		},
		Link: link.String(),
	}
}
