// Package notification turns request lifecycle events into in-app
// notifications and queued emails.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	customersrepo "fleetops_backend/internal/customers/repository"
	"fleetops_backend/internal/email"
	"fleetops_backend/internal/events"
	apphttp "fleetops_backend/internal/http"
	"fleetops_backend/internal/notification/handler"
	"fleetops_backend/internal/notification/inapp"
	"fleetops_backend/internal/notification/outbox"
	requestsrepo "fleetops_backend/internal/requests/repository"
	"fleetops_backend/platform/config"
	"fleetops_backend/platform/logger"
)

// TaskScheduler enqueues background work. Implemented by the worker client;
// nil when Redis is not configured, in which case outbox rows wait for a
// worker sweep and reminders are skipped.
type TaskScheduler interface {
	ScheduleVisitReminder(ctx context.Context, requestID uuid.UUID, runAt time.Time) error
	EnqueueOutboxDispatch(ctx context.Context, outboxID uuid.UUID, runAt time.Time) error
}

// Module is the notification bounded context. It subscribes to lifecycle
// events and owns the in-app notification feed and the email outbox.
type Module struct {
	handler      *handler.Handler
	inapp        *inapp.Repository
	outbox       *outbox.Repository
	customers    customersrepo.Repository
	requests     requestsrepo.Repository
	tasks        TaskScheduler
	reminderLead time.Duration
	log          *logger.Logger
}

// NewModule creates a new notification module.
func NewModule(pool *pgxpool.Pool, cfg config.SchedulerConfig, log *logger.Logger) *Module {
	inappRepo := inapp.NewRepository(pool)

	return &Module{
		handler:      handler.New(inappRepo),
		inapp:        inappRepo,
		outbox:       outbox.New(pool),
		customers:    customersrepo.New(pool),
		requests:     requestsrepo.New(pool),
		reminderLead: cfg.GetVisitReminderLead(),
		log:          log,
	}
}

// SetTaskScheduler wires the background task client from the composition root.
func (m *Module) SetTaskScheduler(tasks TaskScheduler) {
	m.tasks = tasks
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes mounts the notification feed under /api/v1/notifications.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// RegisterHandlers subscribes the module to domain events.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.UserSignedUp{}.EventName(), m)
	bus.Subscribe(events.RequestScheduled{}.EventName(), m)
	bus.Subscribe(events.RequestSentBack{}.EventName(), m)
	bus.Subscribe(events.RequestCompleted{}.EventName(), m)
	bus.Subscribe(events.RequestCanceled{}.EventName(), m)
}

// Handle routes one domain event to its notification side effects.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.UserSignedUp:
		m.queueEmail(ctx, e.Email, "welcome", nil, time.Now().UTC())
	case events.RequestScheduled:
		m.onScheduled(ctx, e)
	case events.RequestSentBack:
		m.onSentBack(ctx, e)
	case events.RequestCompleted:
		m.onCompleted(ctx, e)
	case events.RequestCanceled:
		m.onCanceled(ctx, e)
	}
	return nil
}

func (m *Module) onScheduled(ctx context.Context, e events.RequestScheduled) {
	serviceType := m.serviceType(ctx, e.RequestID)

	m.notify(ctx, e.CustomerID, "Service visit scheduled",
		"A technician has been booked for your "+serviceType+" request.", e.RequestID, "schedule")
	m.notify(ctx, e.TechnicianID, "New visit assigned",
		"You have been booked for a "+serviceType+" visit.", e.RequestID, "schedule")

	if customer, err := m.customers.GetByID(ctx, e.CustomerID); err == nil {
		m.queueEmail(ctx, customer.Email, "visit_scheduled", email.VisitEmailData{
			ServiceType: serviceType,
			ScheduledAt: e.StartsAt.Format("Mon, 02 Jan 2006 15:04 MST"),
		}, time.Now().UTC())
	}

	if m.tasks != nil && m.reminderLead > 0 {
		runAt := e.StartsAt.Add(-m.reminderLead)
		if runAt.After(time.Now()) {
			if err := m.tasks.ScheduleVisitReminder(ctx, e.RequestID, runAt); err != nil {
				m.log.Error("failed to schedule visit reminder", "requestId", e.RequestID, "error", err)
			}
		}
	}
}

func (m *Module) onSentBack(ctx context.Context, e events.RequestSentBack) {
	if e.TechnicianID != nil {
		m.notify(ctx, *e.TechnicianID, "Visit returned to scheduling",
			"A visit was sent back to the scheduling queue: "+e.Reason, e.RequestID, "lifecycle")
	}
}

func (m *Module) onCompleted(ctx context.Context, e events.RequestCompleted) {
	serviceType := m.serviceType(ctx, e.RequestID)

	m.notify(ctx, e.CustomerID, "Service visit complete",
		"Work on your "+serviceType+" request has finished.", e.RequestID, "lifecycle")

	if customer, err := m.customers.GetByID(ctx, e.CustomerID); err == nil {
		m.queueEmail(ctx, customer.Email, "visit_completed", email.VisitEmailData{
			ServiceType: serviceType,
		}, time.Now().UTC())
	}
}

func (m *Module) onCanceled(ctx context.Context, e events.RequestCanceled) {
	m.notify(ctx, e.CustomerID, "Service request canceled",
		"Your service request was canceled: "+e.Reason, e.RequestID, "lifecycle")
	if e.TechnicianID != nil {
		m.notify(ctx, *e.TechnicianID, "Visit canceled",
			"An assigned visit was canceled.", e.RequestID, "lifecycle")
	}
}

func (m *Module) notify(ctx context.Context, userID uuid.UUID, title, content string, resourceID uuid.UUID, category string) {
	_, err := m.inapp.Create(ctx, inapp.CreateParams{
		UserID:     userID,
		Title:      title,
		Content:    content,
		ResourceID: &resourceID,
		Category:   category,
	})
	if err != nil {
		m.log.Error("failed to create notification", "userId", userID, "error", err)
	}
}

func (m *Module) queueEmail(ctx context.Context, recipient, template string, payload any, runAt time.Time) {
	outboxID, err := m.outbox.Insert(ctx, outbox.InsertParams{
		Recipient: recipient,
		Template:  template,
		Payload:   payload,
		RunAt:     runAt,
	})
	if err != nil {
		m.log.Error("failed to queue outbox email", "template", template, "error", err)
		return
	}

	if m.tasks != nil {
		if err := m.tasks.EnqueueOutboxDispatch(ctx, outboxID, runAt); err != nil {
			m.log.Error("failed to enqueue outbox dispatch", "outboxId", outboxID, "error", err)
		}
	}
}

func (m *Module) serviceType(ctx context.Context, requestID uuid.UUID) string {
	request, err := m.requests.GetByID(ctx, requestID)
	if err != nil {
		return "service"
	}
	return request.ServiceType
}

var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
