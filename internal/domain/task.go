package domain

import (
	"context"
	"time"
)

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether the priority is a known value
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Status of a task
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether the status is a known value
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Task is a unit of tracked work. AssignedTo empty means unassigned.
// ManagerID identifies the team the task belongs to, independently of who
// works on it; visibility and mutation rules consult both relations.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"` // UTC midnight, day granularity
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	AssignedTo  string    `json:"assignedTo,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	ManagerID   string    `json:"managerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Assigned reports whether the task currently has an assignee
func (t *Task) Assigned() bool {
	return t.AssignedTo != ""
}

// TaskFilter is the resolved predicate for task queries. The role scope
// (AssignedTo / ManagerScope) is part of the filter, so differently
// privileged actors produce different filters for the same request.
type TaskFilter struct {
	AssignedTo   string // exact assignee match
	ManagerScope string // manager team scope: manager_id matches OR unassigned
	Unassigned   bool   // only tasks without an assignee
	Statuses     []Status
	Priority     Priority
	DueFrom      *time.Time // inclusive
	DueTo        *time.Time // exclusive
	NotStatus    Status     // exclude one status (analytics overdue)
	DueBefore    *time.Time // strictly before (analytics overdue)
}

// TaskSort is the resolved sort specification for task listings
type TaskSort struct {
	Field string // only "dueDate" is supported
	Desc  bool
}

// TaskRepository defines data access for tasks
type TaskRepository interface {
	Insert(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	Find(ctx context.Context, filter TaskFilter, sort TaskSort) ([]*Task, error)
	Save(ctx context.Context, task *Task) error
	DeleteByID(ctx context.Context, id string) error
	Count(ctx context.Context, filter TaskFilter) (int, error)
}
