package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	studentsRegistered  metric.Int64Counter
	studentsListViewed  metric.Int64Counter
	schedulesReconciled metric.Int64Counter
	duesToggled         metric.Int64Counter
	remindersSent       metric.Int64Counter
}

// New registers the service counters on the global meter provider. Without
// a configured provider the counters are no-ops, so wiring is always safe.
func New() (*Metrics, error) {
	meter := otel.Meter("academy-service")
	m := &Metrics{}

	var err error

	m.studentsRegistered, err = meter.Int64Counter(
		"academy_service.students.registered",
		metric.WithDescription("Total number of students registered"),
		metric.WithUnit("{student}"),
	)
	if err != nil {
		return nil, err
	}

	m.studentsListViewed, err = meter.Int64Counter(
		"academy_service.students.list_viewed",
		metric.WithDescription("Total number of student list views"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	m.schedulesReconciled, err = meter.Int64Counter(
		"academy_service.schedules.reconciled",
		metric.WithDescription("Total number of due-schedule reconciliations"),
		metric.WithUnit("{reconciliation}"),
	)
	if err != nil {
		return nil, err
	}

	m.duesToggled, err = meter.Int64Counter(
		"academy_service.dues.toggled",
		metric.WithDescription("Total number of due payment toggles"),
		metric.WithUnit("{toggle}"),
	)
	if err != nil {
		return nil, err
	}

	m.remindersSent, err = meter.Int64Counter(
		"academy_service.reminders.sent",
		metric.WithDescription("Total number of fee reminders generated"),
		metric.WithUnit("{reminder}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordStudentRegistered(ctx context.Context) {
	m.studentsRegistered.Add(ctx, 1)
}

func (m *Metrics) RecordStudentsListViewed(ctx context.Context) {
	m.studentsListViewed.Add(ctx, 1)
}

func (m *Metrics) RecordScheduleReconciled(ctx context.Context) {
	m.schedulesReconciled.Add(ctx, 1)
}

func (m *Metrics) RecordDueToggled(ctx context.Context) {
	m.duesToggled.Add(ctx, 1)
}

func (m *Metrics) RecordReminderSent(ctx context.Context) {
	m.remindersSent.Add(ctx, 1)
}
