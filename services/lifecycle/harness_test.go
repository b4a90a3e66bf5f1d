package lifecycle

import (
	"context"
	"testing"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/orders"
	"vastramitra/services/reminder"
	"vastramitra/services/stages"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const tailorID = "tailor-1"

var (
	tailor   = models.Tailor(tailorID)
	asha     = models.Customer("c1")
	stranger = models.Customer("c2")
	testNow  = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
)

type harness struct {
	ledger  *ledgerRepo.MemoryLedger
	gateway *notification.RecordingGateway
	views   *orders.Materializer
	c       *Coordinator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	l := ledgerRepo.NewMemoryLedger()
	gw := &notification.RecordingGateway{}
	views := orders.NewMaterializer(l, orders.NewOutbox(l, logger), logger)
	dispatcher := notification.NewDispatcher(notification.Decider{Scheme: "vastramitra", TailorID: tailorID}, l, gw, logger)

	c, err := NewCoordinator(Deps{
		Ledger:     l,
		Views:      views,
		Stages:     stages.NewService(l, logger),
		Reminders:  reminder.NewScheduler(l, views, dispatcher, nil, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	require.NoError(t, err)
	c.now = func() time.Time { return testNow }
	return &harness{ledger: l, gateway: gw, views: views, c: c}
}

func draft(total float64, date string) models.AppointmentDraft {
	return models.AppointmentDraft{
		CustomerName:  "Asha",
		Phone:         "+919800000000",
		ScheduledDate: date,
		ScheduledTime: "4:30 PM",
		StyleCategory: "Lehenga",
		FabricSource:  "Customer",
		Address:       "12 MG Road",
		TotalCost:     total,
	}
}

// book creates an appointment far from its delivery date.
func (h *harness) book(t *testing.T, total float64) string {
	t.Helper()
	return h.bookOn(t, total, "2026-03-20")
}

func (h *harness) bookOn(t *testing.T, total float64, date string) string {
	t.Helper()
	res, err := h.c.CreateAppointment(context.Background(), asha, draft(total, date))
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	return res.BookingID
}

func (h *harness) confirm(t *testing.T, id string) {
	t.Helper()
	_, err := h.c.TransitionAppointment(context.Background(), tailor, id, models.AppointmentConfirmed)
	require.NoError(t, err)
}

func (h *harness) pay(t *testing.T, id string, kind models.PaymentKind) models.Payment {
	t.Helper()
	ctx := context.Background()
	res, err := h.c.SubmitPayment(ctx, asha, id, kind, "UPI-"+string(kind))
	require.NoError(t, err)
	_, err = h.c.VerifyPayment(ctx, tailor, res.Payment.ID)
	require.NoError(t, err)
	return *res.Payment
}

func (h *harness) advanceOrder(t *testing.T, id string, steps ...models.OrderStatus) {
	t.Helper()
	for _, s := range steps {
		_, err := h.c.TransitionOrder(context.Background(), tailor, id, s)
		require.NoError(t, err)
	}
}

func (h *harness) appointments(t *testing.T, id string) (models.Appointment, models.Appointment) {
	t.Helper()
	var global, mine models.Appointment
	require.NoError(t, h.ledger.Get(context.Background(), models.AppointmentRef(id), &global))
	require.NoError(t, h.ledger.Get(context.Background(), models.CustomerAppointmentRef(asha.ID, id), &mine))
	return global, mine
}

func (h *harness) orders(t *testing.T, id string) (models.Order, models.Order) {
	t.Helper()
	var global, mine models.Order
	require.NoError(t, h.ledger.Get(context.Background(), models.OrderRef(id), &global))
	require.NoError(t, h.ledger.Get(context.Background(), models.CustomerOrderRef(asha.ID, id), &mine))
	return global, mine
}

func (h *harness) inbox(t *testing.T, recipient string) []models.Notification {
	t.Helper()
	items, err := h.c.dispatcher.Inbox(context.Background(), recipient)
	require.NoError(t, err)
	return items
}

func kinds(items []models.Notification) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Kind)
	}
	return out
}

func failOn(match func(op string, ref models.DocRef) bool) ledgerRepo.FaultFunc {
	return func(op string, ref models.DocRef) error {
		if match(op, ref) {
			return errFault
		}
		return nil
	}
}
