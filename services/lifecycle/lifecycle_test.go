package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFault = errors.New("ledger unavailable")

func TestConfirmMaterializesOrderStagesAndNotifies(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	res, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	require.NotNil(t, res.Order)

	global, mine := h.orders(t, id)
	assert.Equal(t, global, mine)
	assert.Equal(t, id, global.ID)
	assert.Equal(t, 0.0, global.AdvancePaid)
	assert.Equal(t, 1000.0, global.BalanceDue)
	assert.Equal(t, models.OrderConfirmed, global.Status)

	tasks, err := h.c.ListTasks(ctx, tailor, id)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	for i, name := range []string{models.StageCutting, models.StageStitching, models.StageHandwork, models.StagePackaging} {
		assert.Equal(t, name, tasks[i].StageName)
		assert.Equal(t, models.TaskPending, tasks[i].Status)
	}

	appt, myAppt := h.appointments(t, id)
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	assert.Equal(t, models.AppointmentConfirmed, myAppt.Status)

	assert.Equal(t, []string{string(notification.EventAppointmentConfirmed)}, kinds(h.inbox(t, asha.ID)))

	cur, err := h.c.Cursor(ctx, id, transitionConfirm)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.True(t, cur.Completed)
	assert.Equal(t, 5, cur.LastStep)
}

func TestAdvancePaymentVerified(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	submitted, err := h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, "UPI-1")
	require.NoError(t, err)
	assert.Equal(t, 300.0, submitted.Payment.Amount)
	assert.Equal(t, []string{string(notification.EventAdvanceSubmitted)}, kinds(h.inbox(t, tailorID)))

	res, err := h.c.VerifyPayment(ctx, tailor, submitted.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentAdvancePaid), res.Status)

	global, mine := h.appointments(t, id)
	for _, a := range []models.Appointment{global, mine} {
		assert.Equal(t, models.PaymentAdvancePaid, a.PaymentStatus)
		assert.Equal(t, 300.0, a.AdvancePaid)
		assert.Equal(t, 700.0, a.BalanceDue)
	}
}

func TestReadyForDeliveryCarriesFinalPaymentLink(t *testing.T) {
	h := newHarness(t)
	id := h.book(t, 1000)
	h.pay(t, id, models.PaymentKindAdvance)
	h.confirm(t, id)

	h.advanceOrder(t, id, models.OrderInProgress, models.OrderReadyForDelivery)

	inbox := h.inbox(t, asha.ID)
	require.NotEmpty(t, inbox)
	ready := inbox[0]
	assert.Equal(t, string(notification.EventOrderReady), ready.Kind)
	require.NotNil(t, ready.Data)
	assert.Equal(t, notification.ScreenFinalPayment, ready.Data.Screen)
	assert.Equal(t, id, ready.Data.Params["appointmentId"])
	assert.Equal(t, "1000", ready.Data.Params["totalCost"])
	assert.Equal(t, "300", ready.Data.Params["advancePaid"])

	order, myOrder := h.orders(t, id)
	appt, myAppt := h.appointments(t, id)
	assert.Equal(t, 700.0, order.BalanceDue)
	assert.Equal(t, 700.0, myOrder.BalanceDue)
	assert.Equal(t, 700.0, appt.BalanceDue)
	assert.Equal(t, 700.0, myAppt.BalanceDue)
	assert.Equal(t, models.OrderReadyForDelivery, order.Status)
	assert.Equal(t, models.OrderReadyForDelivery, myAppt.OrderStatus)
	assert.Equal(t, models.AppointmentConfirmed, myAppt.Status)
}

func TestFinalPaymentVerifiedEverywhere(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	h.pay(t, id, models.PaymentKindAdvance)
	h.confirm(t, id)
	h.advanceOrder(t, id, models.OrderInProgress, models.OrderReadyForDelivery)

	final, err := h.c.SubmitPayment(ctx, asha, id, models.PaymentKindFinal, "UPI-2")
	require.NoError(t, err)
	assert.Equal(t, 700.0, final.Payment.Amount)

	_, err = h.c.VerifyPayment(ctx, tailor, final.Payment.ID)
	require.NoError(t, err)

	order, myOrder := h.orders(t, id)
	appt, myAppt := h.appointments(t, id)
	for _, o := range []models.Order{order, myOrder} {
		assert.Equal(t, models.PaymentFullPaid, o.PaymentStatus)
		assert.Equal(t, 0.0, o.BalanceDue)
	}
	for _, a := range []models.Appointment{appt, myAppt} {
		assert.Equal(t, models.PaymentFullPaid, a.PaymentStatus)
		assert.Equal(t, 0.0, a.BalanceDue)
	}
	assert.Equal(t, string(notification.EventFinalVerified), h.inbox(t, asha.ID)[0].Kind)
}

func TestOutOfSequenceOrderTransitions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	h.confirm(t, id)

	invalid := []struct {
		from []models.OrderStatus
		to   models.OrderStatus
	}{
		{nil, models.OrderCompleted},
		{nil, models.OrderReadyForDelivery},
		{nil, models.OrderConfirmed},
		{[]models.OrderStatus{models.OrderInProgress}, models.OrderInProgress},
		{[]models.OrderStatus{models.OrderReadyForDelivery}, models.OrderInProgress},
		{[]models.OrderStatus{models.OrderCompleted}, models.OrderCompleted},
		{nil, models.OrderStatus("Shipped")},
	}
	for _, tt := range invalid {
		h.advanceOrder(t, id, tt.from...)
		before, _ := h.orders(t, id)

		_, err := h.c.TransitionOrder(ctx, tailor, id, tt.to)
		assert.ErrorIs(t, err, models.ErrInvalidTransition, "%s -> %s", before.Status, tt.to)

		after, _ := h.orders(t, id)
		assert.Equal(t, before.Status, after.Status)
	}
}

func TestTransitionOrderUnknownOrder(t *testing.T) {
	h := newHarness(t)
	_, err := h.c.TransitionOrder(context.Background(), tailor, "missing", models.OrderInProgress)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPermissionsCheckedBeforeAnyWrite(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	writes := h.ledger.Writes()

	_, err := h.c.TransitionAppointment(ctx, asha, id, models.AppointmentConfirmed)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.CreateAppointment(ctx, tailor, draft(500, "2026-03-20"))
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.SubmitPayment(ctx, stranger, id, models.PaymentKindAdvance, "UPI-x")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.SubmitPayment(ctx, tailor, id, models.PaymentKindAdvance, "UPI-x")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.TransitionOrder(ctx, asha, id, models.OrderInProgress)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.ListPayments(ctx, asha, "")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.TransitionAppointment(ctx, models.Actor{Role: models.RoleTailor}, id, models.AppointmentConfirmed)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	assert.Equal(t, writes, h.ledger.Writes())
}

func TestRejectedAppointmentIsTerminal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	_, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentRejected)
	require.NoError(t, err)

	global, mine := h.appointments(t, id)
	assert.Equal(t, models.AppointmentRejected, global.Status)
	assert.Equal(t, models.AppointmentRejected, mine.Status)
	assert.Equal(t, []string{string(notification.EventAppointmentRejected)}, kinds(h.inbox(t, asha.ID)))

	for _, next := range []models.AppointmentStatus{models.AppointmentConfirmed, models.AppointmentRejected, models.AppointmentPending} {
		_, err = h.c.TransitionAppointment(ctx, tailor, id, next)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	}
	ok, err := ledgerRepo.Exists(ctx, h.ledger, models.OrderRef(id))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, "UPI-1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestReconfirmIsRejected(t *testing.T) {
	h := newHarness(t)
	id := h.book(t, 1000)
	h.confirm(t, id)

	_, err := h.c.TransitionAppointment(context.Background(), tailor, id, models.AppointmentConfirmed)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Len(t, h.inbox(t, asha.ID), 1)
}

func TestConfirmResumesAfterStageFailure(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	h.ledger.SetFault(failOn(func(op string, ref models.DocRef) bool {
		return ref.Collection == models.CollTaskStages
	}))
	_, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
	require.ErrorIs(t, err, errFault)

	cur, err := h.c.Cursor(ctx, id, transitionConfirm)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.False(t, cur.Completed)
	assert.Equal(t, 0, cur.LastStep)
	assert.Contains(t, cur.LastError, "generate_stages")

	ok, err := ledgerRepo.Exists(ctx, h.ledger, models.OrderRef(id))
	require.NoError(t, err)
	assert.True(t, ok)
	appt, _ := h.appointments(t, id)
	assert.Equal(t, models.AppointmentPending, appt.Status)
	assert.Empty(t, h.inbox(t, asha.ID))

	h.ledger.SetFault(nil)
	h.confirm(t, id)

	tasks, err := h.c.ListTasks(ctx, tailor, id)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
	appt, mine := h.appointments(t, id)
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	assert.Equal(t, models.AppointmentConfirmed, mine.Status)
	assert.Len(t, h.inbox(t, asha.ID), 1)

	all, err := ledgerRepo.QueryAs[models.Order](ctx, h.ledger, models.CollOrders, "", nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUnfinishedConfirmBlocksRejectAndOrderProgress(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	h.ledger.SetFault(failOn(func(op string, ref models.DocRef) bool {
		return ref.Collection == models.CollTaskStages
	}))
	_, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
	require.ErrorIs(t, err, errFault)
	h.ledger.SetFault(nil)

	_, err = h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentRejected)
	require.ErrorIs(t, err, models.ErrInvalidTransition)
	_, err = h.c.TransitionOrder(ctx, tailor, id, models.OrderInProgress)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	appt, mine := h.appointments(t, id)
	assert.Equal(t, models.AppointmentPending, appt.Status)
	assert.Equal(t, models.AppointmentPending, mine.Status)
	order, _ := h.orders(t, id)
	assert.Equal(t, models.OrderConfirmed, order.Status)

	h.confirm(t, id)
	h.advanceOrder(t, id, models.OrderInProgress)
	appt, _ = h.appointments(t, id)
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	assert.Equal(t, models.OrderInProgress, appt.OrderStatus)
}

func TestVerifyRefusedAfterRejection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	sub, err := h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, "UPI-123")
	require.NoError(t, err)
	_, err = h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentRejected)
	require.NoError(t, err)

	_, err = h.c.VerifyPayment(ctx, tailor, sub.Payment.ID)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	appt, mine := h.appointments(t, id)
	for _, a := range []models.Appointment{appt, mine} {
		assert.Equal(t, models.AppointmentRejected, a.Status)
		assert.Equal(t, models.PaymentPending, a.PaymentStatus)
		assert.Equal(t, 1000.0, a.BalanceDue)
	}
	var p models.Payment
	require.NoError(t, h.ledger.Get(ctx, models.PaymentRef(sub.Payment.ID), &p))
	assert.Equal(t, models.PaymentSubmitted, p.Status)
}

// A confirmation that already flipped the appointment status is still
// resumable by repeating the same command.
func TestConfirmResumesAfterStatusWasMirrored(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.bookOn(t, 1000, "2026-03-02")

	h.ledger.SetFault(failOn(func(op string, ref models.DocRef) bool {
		return op == "cas" && ref.Collection == models.CollOrders
	}))
	_, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
	require.Error(t, err)

	appt, _ := h.appointments(t, id)
	assert.Equal(t, models.AppointmentConfirmed, appt.Status)
	cur, err := h.c.Cursor(ctx, id, transitionConfirm)
	require.NoError(t, err)
	assert.Equal(t, 3, cur.LastStep)

	h.ledger.SetFault(nil)
	h.confirm(t, id)

	assert.Equal(t, []string{
		string(notification.EventAppointmentConfirmed),
		string(notification.EventFinalPaymentReminder),
	}, kinds(h.inbox(t, asha.ID)))

	_, err = h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestEagerReminderOnConfirmNearDelivery(t *testing.T) {
	h := newHarness(t)
	id := h.bookOn(t, 1000, "2026-03-03")
	h.confirm(t, id)

	order, myOrder := h.orders(t, id)
	assert.True(t, order.ReminderSent)
	assert.True(t, myOrder.ReminderSent)
	appt, _ := h.appointments(t, id)
	assert.True(t, appt.ReminderSent)

	inbox := h.inbox(t, asha.ID)
	require.Len(t, inbox, 2)
	assert.Equal(t, string(notification.EventFinalPaymentReminder), inbox[1].Kind)
	require.NotNil(t, inbox[1].Data)
	assert.Equal(t, "vastramitra://finalpayment?appointmentId="+id+"&userId=c1", inbox[1].Data.Link)

	far := h.book(t, 1000)
	h.confirm(t, far)
	order, _ = h.orders(t, far)
	assert.False(t, order.ReminderSent)
}

func TestVerifyPaymentOnlyOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	p := h.pay(t, id, models.PaymentKindAdvance)

	_, err := h.c.VerifyPayment(ctx, tailor, p.ID)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	var stored models.Payment
	require.NoError(t, h.ledger.Get(ctx, models.PaymentRef(p.ID), &stored))
	assert.Equal(t, models.PaymentVerified, stored.Status)
	assert.NotNil(t, stored.VerifiedAt)
	assert.Len(t, h.inbox(t, asha.ID), 1)

	_, err = h.c.VerifyPayment(ctx, tailor, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestVerifyResumesWhenTotalsWereNotApplied(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	submitted, err := h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, "UPI-1")
	require.NoError(t, err)

	h.ledger.SetFault(failOn(func(op string, ref models.DocRef) bool {
		return op == "merge" && ref.Collection == models.CollAppointments
	}))
	_, err = h.c.VerifyPayment(ctx, tailor, submitted.Payment.ID)
	require.ErrorIs(t, err, errFault)

	h.ledger.SetFault(nil)
	_, err = h.c.VerifyPayment(ctx, tailor, submitted.Payment.ID)
	require.NoError(t, err)

	global, mine := h.appointments(t, id)
	assert.Equal(t, models.PaymentAdvancePaid, global.PaymentStatus)
	assert.Equal(t, models.PaymentAdvancePaid, mine.PaymentStatus)
	assert.Equal(t, 700.0, mine.BalanceDue)
}

func TestPaymentsOutOfOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	_, err := h.c.SubmitPayment(ctx, asha, id, models.PaymentKindFinal, "UPI-1")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, "UPI-1")
	require.NoError(t, err)
	_, err = h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, "UPI-2")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = h.c.SubmitPayment(ctx, asha, id, models.PaymentKind("tip"), "UPI-3")
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = h.c.SubmitPayment(ctx, asha, id, models.PaymentKindAdvance, " ")
	assert.ErrorIs(t, err, models.ErrValidation)

	pending, err := h.c.ListPayments(ctx, tailor, models.PaymentSubmitted)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestCreateAppointmentValidation(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name   string
		modify func(d *models.AppointmentDraft)
	}{
		{"no phone", func(d *models.AppointmentDraft) { d.Phone = " " }},
		{"no address", func(d *models.AppointmentDraft) { d.Address = "" }},
		{"free-text date", func(d *models.AppointmentDraft) { d.ScheduledDate = "20th March" }},
		{"negative cost", func(d *models.AppointmentDraft) { d.TotalCost = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft(1000, "2026-03-20")
			tt.modify(&d)
			_, err := h.c.CreateAppointment(context.Background(), asha, d)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
	assert.Equal(t, 0, h.ledger.Writes())
}

func TestMirrorFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	h.ledger.SetFault(failOn(func(op string, ref models.DocRef) bool {
		return ref.Collection == models.CollCustomerAppointments
	}))
	res, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, []string{WarnViewsLag}, res.Warnings)

	var mine models.Appointment
	require.NoError(t, h.ledger.Get(ctx, models.CustomerAppointmentRef(asha.ID, id), &mine))
	assert.Equal(t, models.AppointmentPending, mine.Status)

	h.ledger.SetFault(nil)
	_, err = h.views.Outbox().Reconcile(ctx)
	require.NoError(t, err)

	global, mine := h.appointments(t, id)
	assert.Equal(t, models.AppointmentConfirmed, mine.Status)
	assert.Equal(t, global.Status, mine.Status)
	assert.Equal(t, global.BalanceDue, mine.BalanceDue)
}

func TestConcurrentConfirmationsOnOneBooking(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	other := h.book(t, 2000)

	var wg sync.WaitGroup
	errs := make(chan error, 11)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.c.TransitionAppointment(ctx, tailor, id, models.AppointmentConfirmed)
			errs <- err
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := h.c.TransitionAppointment(ctx, tailor, other, models.AppointmentConfirmed)
		errs <- err
	}()
	wg.Wait()
	close(errs)

	ok, invalid := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, models.ErrInvalidTransition):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 9, invalid)

	tasks, err := h.c.ListTasks(ctx, tailor, id)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
	assert.Len(t, h.inbox(t, asha.ID), 2)
}

func TestTasks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)

	_, err := h.c.AddTask(ctx, tailor, id, "Embroidery")
	assert.ErrorIs(t, err, models.ErrNotFound)

	h.confirm(t, id)
	res, err := h.c.AddTask(ctx, tailor, id, "Embroidery")
	require.NoError(t, err)
	require.NotNil(t, res.Task)
	assert.True(t, res.Task.Custom)

	_, err = h.c.AddTask(ctx, asha, id, "Embroidery")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)

	_, err = h.c.UpdateTaskStatus(ctx, tailor, res.Task.ID, models.TaskInProgress)
	require.NoError(t, err)
	_, err = h.c.UpdateTaskStatus(ctx, tailor, res.Task.ID, models.TaskStatus("Lost"))
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = h.c.UpdateTaskStatus(ctx, tailor, "missing", models.TaskDone)
	assert.ErrorIs(t, err, models.ErrNotFound)

	tasks, err := h.c.ListTasks(ctx, asha, id)
	require.NoError(t, err)
	require.Len(t, tasks, 5)
	assert.Equal(t, "Embroidery", tasks[4].StageName)
	assert.Equal(t, models.TaskInProgress, tasks[4].Status)

	_, err = h.c.ListTasks(ctx, stranger, id)
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
	_, err = h.c.ListTasks(ctx, asha, "")
	assert.ErrorIs(t, err, models.ErrPermissionDenied)
}

func TestReadsAreScopedToTheActor(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	h.confirm(t, id)

	mine, err := h.c.ListAppointments(ctx, asha)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := h.c.ListAppointments(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = h.c.GetOrder(ctx, stranger, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	order, err := h.c.GetOrder(ctx, asha, id)
	require.NoError(t, err)
	assert.Equal(t, id, order.ID)

	all, err := h.c.ListOrders(ctx, tailor)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestInboxAndMarkRead(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.book(t, 1000)
	h.confirm(t, id)

	items, err := h.c.Inbox(ctx, asha)
	require.NoError(t, err)
	require.Len(t, items, 1)

	err = h.c.MarkNotificationRead(ctx, stranger, items[0].ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	require.NoError(t, h.c.MarkNotificationRead(ctx, asha, items[0].ID))

	items, err = h.c.Inbox(ctx, asha)
	require.NoError(t, err)
	assert.True(t, items[0].Read)
}

func TestNotificationFailureNeverBlocksTransition(t *testing.T) {
	h := newHarness(t)
	h.gateway.Err = errors.New("push provider down")
	id := h.book(t, 1000)

	_, err := h.c.TransitionAppointment(context.Background(), tailor, id, models.AppointmentConfirmed)
	require.NoError(t, err)
	assert.Len(t, h.gateway.Pushes(), 1)
}
