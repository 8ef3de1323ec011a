package domain

import "context"

// EventType identifies the mutation that produced an event
type EventType string

const (
	EventTaskCreated    EventType = "task_created"
	EventTaskAssigned   EventType = "task_assigned"
	EventTaskUpdated    EventType = "task_updated"
	EventTaskUnassigned EventType = "task_unassigned"
	EventTaskDeleted    EventType = "task_deleted"
	EventTaskAnalytics  EventType = "task_analytics"
)

// Event is the structured payload pushed to real-time subscribers
type Event struct {
	Type      EventType  `json:"type"`
	Task      *Task      `json:"task,omitempty"`
	Analytics *Analytics `json:"analytics,omitempty"`
}

// Analytics is the derived read-only view over the task set
type Analytics struct {
	Total      int `json:"totalTasks"`
	Pending    int `json:"pendingTasks"`
	InProgress int `json:"inProgressTasks"`
	Completed  int `json:"completedTasks"`
	Overdue    int `json:"overdueTasks"`
}

// Broadcaster delivers an event to every currently connected subscriber.
// No acknowledgment, no per-user addressing.
type Broadcaster interface {
	Broadcast(event Event)
}

// EmailSender delivers a single email. Callers treat failures as
// best-effort: log and move on.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
