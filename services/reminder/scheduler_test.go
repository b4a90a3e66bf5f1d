package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/orders"
	"vastramitra/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var today = time.Date(2026, 3, 8, 15, 30, 0, 0, time.UTC)

func orderDue(date string) models.Order {
	return models.Order{
		ID:            "a1",
		AppointmentID: "a1",
		CustomerID:    "c1",
		CustomerName:  "Asha",
		DeliveryDate:  date,
		TotalCost:     1000,
		AdvancePaid:   300,
		BalanceDue:    700,
		PaymentStatus: models.PaymentAdvancePaid,
		Status:        models.OrderInProgress,
	}
}

func TestShouldRemind(t *testing.T) {
	tests := []struct {
		name  string
		order func() models.Order
		want  bool
	}{
		{"two days out", func() models.Order { return orderDue("2026-03-10") }, true},
		{"tomorrow", func() models.Order { return orderDue("2026-03-09") }, true},
		{"overdue", func() models.Order { return orderDue("2026-03-01") }, true},
		{"three days out", func() models.Order { return orderDue("2026-03-11") }, false},
		{"already sent", func() models.Order { o := orderDue("2026-03-09"); o.ReminderSent = true; return o }, false},
		{"fully paid", func() models.Order {
			o := orderDue("2026-03-09")
			o.PaymentStatus = models.PaymentFullPaid
			return o
		}, false},
		{"bad date", func() models.Order { return orderDue("10/03/2026") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldRemind(tt.order(), today))
		})
	}
}

type countingNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *countingNotifier) Notify(_ context.Context, e notification.Event, _ notification.Facts) []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, q.err
}

func setup(t *testing.T, order models.Order) (*Scheduler, *ledgerRepo.MemoryLedger, *countingNotifier) {
	t.Helper()
	l := ledgerRepo.NewMemoryLedger()
	views := orders.NewMaterializer(l, orders.NewOutbox(l, zap.NewNop()), zap.NewNop())
	fields, err := ledgerRepo.ToFields(order)
	require.NoError(t, err)
	require.NoError(t, views.WriteOrder(context.Background(), order.ID, order.CustomerID, fields))

	n := &countingNotifier{}
	s := NewScheduler(l, views, n, nil, zap.NewNop())
	s.now = func() time.Time { return today }
	return s, l, n
}

func TestRemindsExactlyOnceAcrossEvaluations(t *testing.T) {
	ctx := context.Background()
	s, _, n := setup(t, orderDue("2026-03-10"))

	results := make([]bool, 0, 5)
	for i := 0; i < 5; i++ {
		fired, err := s.FireIfDue(ctx, "a1")
		require.NoError(t, err)
		results = append(results, fired)
	}
	assert.Equal(t, []bool{true, false, false, false, false}, results)
	assert.Equal(t, 1, n.count())
}

func TestConcurrentFireSendsOneReminder(t *testing.T) {
	ctx := context.Background()
	s, _, n := setup(t, orderDue("2026-03-10"))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Fire(ctx, orderDue("2026-03-10"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, n.count())
}

func TestFireMirrorsReminderSent(t *testing.T) {
	ctx := context.Background()
	s, l, _ := setup(t, orderDue("2026-03-10"))

	fired, err := s.Fire(ctx, orderDue("2026-03-10"))
	require.NoError(t, err)
	require.True(t, fired)

	var mine models.Order
	require.NoError(t, l.Get(ctx, models.CustomerOrderRef("c1", "a1"), &mine))
	assert.True(t, mine.ReminderSent)

	var appt, myAppt models.Appointment
	require.NoError(t, l.Get(ctx, models.AppointmentRef("a1"), &appt))
	require.NoError(t, l.Get(ctx, models.CustomerAppointmentRef("c1", "a1"), &myAppt))
	assert.True(t, appt.ReminderSent)
	assert.True(t, myAppt.ReminderSent)
}

func TestSweepSkipsNotDueAndCompleted(t *testing.T) {
	ctx := context.Background()
	s, l, n := setup(t, orderDue("2026-03-20"))

	done := orderDue("2026-03-09")
	done.ID, done.AppointmentID = "a2", "a2"
	done.Status = models.OrderCompleted
	due := orderDue("2026-03-09")
	due.ID, due.AppointmentID = "a3", "a3"
	for _, o := range []models.Order{done, due} {
		require.NoError(t, l.Set(ctx, models.OrderRef(o.ID), o))
	}

	sent, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, n.count())

	sent, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestScheduleOnlyForFutureWindow(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setup(t, orderDue("2026-03-20"))
	q := &fakeQueue{}
	s.queue = q

	require.NoError(t, s.Schedule(ctx, orderDue("2026-03-20")))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypeFinalPaymentReminder, q.tasks[0].Type())
	p, err := tasks.ParseReminderTask(q.tasks[0])
	require.NoError(t, err)
	assert.Equal(t, "2026-03-18", p.FireDate)

	require.NoError(t, s.Schedule(ctx, orderDue("2026-03-09")))
	assert.Len(t, q.tasks, 1)

	q.err = asynq.ErrTaskIDConflict
	assert.NoError(t, s.Schedule(ctx, orderDue("2026-03-20")))
}

func TestFireAt(t *testing.T) {
	at, err := FireAt(orderDue("2026-03-10"), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 8, 9, 0, 0, 0, time.UTC), at)
}
