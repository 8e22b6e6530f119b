package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetops_backend/internal/customers/repository"
	"fleetops_backend/internal/email"
	"fleetops_backend/internal/notification/inapp"
	"fleetops_backend/internal/notification/outbox"
	"fleetops_backend/internal/requests/domain"
	requestsrepo "fleetops_backend/internal/requests/repository"
	"fleetops_backend/platform/config"
	"fleetops_backend/platform/logger"
)

// Worker processes background tasks: visit reminders and outbox delivery.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	requests  requestsrepo.Repository
	customers repository.Repository
	inapp     *inapp.Repository
	outbox    *outbox.Repository
	sender    email.Sender
	log       *logger.Logger
}

// NewWorker builds the asynq server and registers task handlers.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender email.Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		requests:  requestsrepo.New(pool),
		customers: repository.New(pool),
		inapp:     inapp.NewRepository(pool),
		outbox:    outbox.New(pool),
		sender:    sender,
		log:       log,
	}

	mux.HandleFunc(TaskVisitReminder, w.handleVisitReminder)
	mux.HandleFunc(TaskOutboxDispatch, w.handleOutboxDispatch)

	return w, nil
}

// Run starts the worker and blocks until shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker gracefully.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// handleVisitReminder sends the customer a reminder if the visit is still on
// the calendar when the task fires.
func (w *Worker) handleVisitReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseVisitReminderPayload(task)
	if err != nil {
		return err
	}

	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		return fmt.Errorf("invalid request id in reminder payload: %w", err)
	}

	request, err := w.requests.GetByID(ctx, requestID)
	if err != nil {
		// Deleted or unknown; nothing to remind about.
		w.log.Warn("reminder for unknown request", "requestId", payload.RequestID)
		return nil
	}

	// Send-back or cancellation after scheduling makes the reminder stale.
	if request.Status != domain.StatusScheduled || request.ScheduledAt == nil {
		return nil
	}

	customer, err := w.customers.GetByID(ctx, request.CustomerID)
	if err != nil {
		w.log.Warn("reminder for request without customer profile",
			"requestId", payload.RequestID, "error", err)
		return nil
	}

	data := email.VisitEmailData{
		ServiceType: request.ServiceType,
		ScheduledAt: request.ScheduledAt.Format("Mon, 02 Jan 2006 15:04 MST"),
	}
	if err := w.sender.SendVisitReminderEmail(ctx, customer.Email, data); err != nil {
		return fmt.Errorf("send visit reminder: %w", err)
	}

	_, err = w.inapp.Create(ctx, inapp.CreateParams{
		UserID:     request.CustomerID,
		Title:      "Upcoming service visit",
		Content:    "Your " + request.ServiceType + " visit is coming up.",
		ResourceID: &request.ID,
		Category:   "reminder",
	})
	if err != nil {
		w.log.Error("failed to create reminder notification", "requestId", payload.RequestID, "error", err)
	}
	return nil
}

// handleOutboxDispatch delivers one queued email and records the outcome.
func (w *Worker) handleOutboxDispatch(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseOutboxDispatchPayload(task)
	if err != nil {
		return err
	}

	outboxID, err := uuid.Parse(payload.OutboxID)
	if err != nil {
		return fmt.Errorf("invalid outbox id in payload: %w", err)
	}

	record, err := w.outbox.Get(ctx, outboxID)
	if err != nil {
		w.log.Warn("dispatch for unknown outbox record", "outboxId", payload.OutboxID)
		return nil
	}
	if record.Status != outbox.StatusPending {
		return nil
	}

	if err := w.deliver(ctx, record); err != nil {
		if markErr := w.outbox.MarkAttemptFailed(ctx, record.ID, err); markErr != nil {
			w.log.Error("failed to record outbox failure", "outboxId", record.ID, "error", markErr)
		}
		// Returning the error lets asynq retry with backoff.
		return err
	}

	return w.outbox.MarkSucceeded(ctx, record.ID)
}

func (w *Worker) deliver(ctx context.Context, record outbox.Record) error {
	switch record.Template {
	case "welcome":
		return w.sender.SendWelcomeEmail(ctx, record.Recipient)
	case "visit_scheduled":
		data, err := decodeVisitData(record.Payload)
		if err != nil {
			return err
		}
		return w.sender.SendVisitScheduledEmail(ctx, record.Recipient, data)
	case "visit_reminder":
		data, err := decodeVisitData(record.Payload)
		if err != nil {
			return err
		}
		return w.sender.SendVisitReminderEmail(ctx, record.Recipient, data)
	case "visit_completed":
		data, err := decodeVisitData(record.Payload)
		if err != nil {
			return err
		}
		return w.sender.SendVisitCompletedEmail(ctx, record.Recipient, data)
	default:
		return fmt.Errorf("unknown outbox template %q", record.Template)
	}
}

func decodeVisitData(raw json.RawMessage) (email.VisitEmailData, error) {
	var data email.VisitEmailData
	if err := json.Unmarshal(raw, &data); err != nil {
		return email.VisitEmailData{}, fmt.Errorf("decode visit email payload: %w", err)
	}
	return data, nil
}
