package security

import (
	"fmt"
	"log/slog"

	"github.com/yourorg/taskboard/internal/domain"
	"github.com/yourorg/taskboard/internal/observability/metrics"
)

// Operation identifies a task-ledger action
type Operation string

const (
	OpCreateTask    Operation = "create_task"
	OpReadTask      Operation = "read_task"
	OpListTasks     Operation = "list_tasks"
	OpUpdateTask    Operation = "update_task"
	OpAssignTask    Operation = "assign_task"
	OpUnassignTask  Operation = "unassign_task"
	OpDeleteTask    Operation = "delete_task"
	OpTaskAnalytics Operation = "task_analytics"
)

// roleOperations maps roles to the operations they may attempt at all.
// Ownership and team scoping are applied on top of this table.
var roleOperations = map[domain.Role][]Operation{
	domain.RoleAdmin: {
		OpCreateTask,
		OpReadTask,
		OpListTasks,
		OpUpdateTask,
		OpAssignTask,
		OpUnassignTask,
		OpDeleteTask,
		OpTaskAnalytics,
	},
	domain.RoleManager: {
		OpReadTask,
		OpListTasks,
		OpUpdateTask,
		OpAssignTask,
		OpUnassignTask,
		OpTaskAnalytics,
	},
	domain.RoleUser: {
		OpReadTask,
		OpListTasks,
		OpUpdateTask,
		OpTaskAnalytics,
	},
}

// FieldPolicy describes which fields a role may change on update.
// Strict roles are rejected outright when the request carries a field
// outside the allowed set; lenient roles have those fields dropped.
type FieldPolicy struct {
	Fields map[string]bool // nil means every field is allowed
	Strict bool
}

var updatePolicies = map[domain.Role]FieldPolicy{
	domain.RoleAdmin:   {Fields: nil, Strict: false},
	domain.RoleManager: {Fields: map[string]bool{"priority": true, "status": true, "dueDate": true}, Strict: false},
	domain.RoleUser:    {Fields: map[string]bool{"status": true}, Strict: true},
}

// Engine is the pure authorization decision logic. It touches no storage;
// callers hand it the actor, the task state, and the requested change.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an authorization engine
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// HasOperation checks whether a role may attempt an operation at all
func (e *Engine) HasOperation(role domain.Role, op Operation) bool {
	ops, exists := roleOperations[role]
	if !exists {
		return false
	}
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

// CanView evaluates the visibility matrix for a single task:
// admin sees everything, a manager sees their team's tasks plus every
// unassigned task, a user sees only tasks assigned to them.
func (e *Engine) CanView(actor domain.Actor, task *domain.Task) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleManager:
		return task.ManagerID == actor.ID || !task.Assigned()
	case domain.RoleUser:
		return task.Assigned() && task.AssignedTo == actor.ID
	default:
		return false
	}
}

// CanViewProfile evaluates profile visibility: admin, the owning manager,
// or the user themselves.
func (e *Engine) CanViewProfile(actor domain.Actor, user *domain.User) bool {
	switch {
	case actor.Role == domain.RoleAdmin:
		return true
	case actor.Role == domain.RoleManager && user.ManagerID == actor.ID:
		return true
	default:
		return actor.ID == user.ID
	}
}

// ListScope resolves the role-scoped filter predicate for listing. The
// scope becomes part of the cache key, so differently privileged actors
// never share a list entry.
func (e *Engine) ListScope(actor domain.Actor) (domain.TaskFilter, error) {
	switch actor.Role {
	case domain.RoleAdmin:
		return domain.TaskFilter{}, nil
	case domain.RoleManager:
		return domain.TaskFilter{ManagerScope: actor.ID}, nil
	case domain.RoleUser:
		return domain.TaskFilter{AssignedTo: actor.ID}, nil
	default:
		return domain.TaskFilter{}, e.deny(actor, OpListTasks, "unauthorized operation")
	}
}

// DecideCreate gates task creation to admins
func (e *Engine) DecideCreate(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return e.deny(actor, OpCreateTask, "only admins can create tasks")
	}
	return nil
}

// DecideDelete gates task deletion to admins
func (e *Engine) DecideDelete(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return e.deny(actor, OpDeleteTask, "only admins can delete tasks")
	}
	return nil
}

// DecideAssign checks that the actor may assign the task to the assignee.
// Assignment is one-shot: an assigned task must be unassigned first.
func (e *Engine) DecideAssign(actor domain.Actor, task *domain.Task, assignee *domain.User) error {
	if actor.Role != domain.RoleAdmin && actor.Role != domain.RoleManager {
		return e.deny(actor, OpAssignTask, "only admins or managers can assign tasks")
	}
	if task.Assigned() {
		return fmt.Errorf("%w", domain.ErrAlreadyAssigned)
	}
	if actor.Role == domain.RoleManager && assignee.ManagerID != actor.ID {
		e.logger.Warn("assignment outside team denied",
			slog.String("actor_id", actor.ID),
			slog.String("assignee_id", assignee.ID),
		)
		return fmt.Errorf("you can only assign tasks to users in your team: %w", domain.ErrNotOnTeam)
	}
	return nil
}

// DecideUnassign checks that the actor may clear the task's assignee
func (e *Engine) DecideUnassign(actor domain.Actor, task *domain.Task) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleManager:
		if task.ManagerID != actor.ID {
			return fmt.Errorf("you can only unassign tasks within your team: %w", domain.ErrNotOnTeam)
		}
		return nil
	default:
		return e.deny(actor, OpUnassignTask, "only admins or managers can unassign tasks")
	}
}

// DecideUpdate returns the subset of requested fields the actor may apply.
// Managers are scoped to their team and have disallowed fields silently
// dropped; users may only touch status and are rejected for anything else.
func (e *Engine) DecideUpdate(actor domain.Actor, task *domain.Task, requested []string) ([]string, error) {
	policy, exists := updatePolicies[actor.Role]
	if !exists {
		return nil, e.deny(actor, OpUpdateTask, "unauthorized operation")
	}

	switch actor.Role {
	case domain.RoleManager:
		if task.ManagerID != actor.ID {
			return nil, e.deny(actor, OpUpdateTask, "managers can only update tasks within their team")
		}
	case domain.RoleUser:
		if !task.Assigned() || task.AssignedTo != actor.ID {
			return nil, e.deny(actor, OpUpdateTask, "users can only update their own tasks")
		}
	}

	if policy.Fields == nil {
		return requested, nil
	}

	allowed := make([]string, 0, len(requested))
	for _, f := range requested {
		if policy.Fields[f] {
			allowed = append(allowed, f)
			continue
		}
		if policy.Strict {
			return nil, e.deny(actor, OpUpdateTask, "users can only update the status of their tasks")
		}
	}

	if policy.Strict && len(allowed) == 0 {
		return nil, e.deny(actor, OpUpdateTask, "users can only update the status of their tasks")
	}
	return allowed, nil
}

func (e *Engine) deny(actor domain.Actor, op Operation, reason string) error {
	metrics.ObserveDenial(string(op))
	e.logger.Warn("permission denied",
		slog.String("actor_id", actor.ID),
		slog.String("role", string(actor.Role)),
		slog.String("operation", string(op)),
		slog.String("reason", reason),
	)
	return fmt.Errorf("%s: %w", reason, domain.ErrForbidden)
}
