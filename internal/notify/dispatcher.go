// Package notify fans a mutation event out to the real-time broadcast
// channel and the assignee email channel. Channels fail independently;
// neither failure reaches the caller or unwinds the committed mutation.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/yourorg/taskboard/internal/dates"
	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/observability/metrics"
)

// Dispatcher delivers one event per committed mutation
type Dispatcher struct {
	broadcaster domain.Broadcaster
	emailSender domain.EmailSender
	userRepo    domain.UserRepository
	logger      *slog.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(
	broadcaster domain.Broadcaster,
	emailSender domain.EmailSender,
	userRepo domain.UserRepository,
	logger *slog.Logger,
) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		broadcaster: broadcaster,
		emailSender: emailSender,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Dispatch pushes the event to every connected subscriber and emails the
// task's current assignee. Exactly one best-effort attempt per channel.
// Persistence has already committed when this runs.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) {
	metrics.ObserveMutation(string(event.Type))

	d.broadcaster.Broadcast(event)
	metrics.ObserveNotification("broadcast", "success")

	d.emailAssignee(ctx, event)
}

// emailAssignee emails the post-mutation assignee for events that leave
// the task with one. Unassign and delete end without an assignee to reach.
func (d *Dispatcher) emailAssignee(ctx context.Context, event domain.Event) {
	if d.emailSender == nil || event.Task == nil || !event.Task.Assigned() {
		return
	}

	var subject string
	switch event.Type {
	case domain.EventTaskCreated, domain.EventTaskAssigned:
		subject = "New Task Assigned"
	case domain.EventTaskUpdated:
		subject = "Task Updated"
	default:
		return
	}

	assignee, err := d.userRepo.GetByID(ctx, event.Task.AssignedTo)
	if err != nil {
		d.logger.Warn("failed to look up assignee for email",
			slog.String("task_id", event.Task.ID),
			slog.String("assignee_id", event.Task.AssignedTo),
			slog.String("error", err.Error()),
		)
		metrics.ObserveNotification("email", "error")
		return
	}
	if assignee.Email == "" {
		return
	}

	body := emailBody(event)
	if err := d.emailSender.Send(ctx, assignee.Email, subject, body); err != nil {
		d.logger.Error("failed to send email",
			slog.String("task_id", event.Task.ID),
			slog.String("to", assignee.Email),
			slog.String("error", err.Error()),
		)
		metrics.ObserveNotification("email", "error")
		return
	}
	metrics.ObserveNotification("email", "success")
}

func emailBody(event domain.Event) string {
	task := event.Task
	due := dates.FormatInput(task.DueDate)

	if event.Type == domain.EventTaskUpdated {
		return fmt.Sprintf(
			"<p>Your task has been updated. Task details: <br> Title: %s <br> Description: %s <br> Status: %s <br> Due Date: %s</p>",
			task.Title, task.Description, task.Status, due,
		)
	}
	return fmt.Sprintf(
		"<p>You have been assigned a new task. Task details: <br> Title: %s <br> Description: %s <br> Due Date: %s</p>",
		task.Title, task.Description, due,
	)
}
